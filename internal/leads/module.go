// Package leads provides the lead pipeline bounded context: companies,
// contacts, leads, the execution engine, and the pure gates around it.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"leadgen_backend/internal/events"
	apphttp "leadgen_backend/internal/http"
	"leadgen_backend/internal/leads/engine"
	"leadgen_backend/internal/leads/handler"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/leads/scoring"
	"leadgen_backend/internal/leads/service"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"
	"leadgen_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates and initializes the leads module with all its
// dependencies. The scoring profile is loaded once at startup; a missing
// path falls back to the built-in defaults.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, cfg config.ScoringConfig, log *logger.Logger) (*Module, error) {
	profile, err := scoring.LoadProfile(cfg.GetScoringProfilePath())
	if err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	eng := engine.New(repo, log)
	svc := service.New(repo, eng, bus, profile, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repo {
	return m.repo
}

// RegisterRoutes mounts lead pipeline routes on the provided router context.
// Intake endpoints (company registration, lead creation, executions) run
// behind the Redis intake limiter when one is configured, otherwise behind
// the in-process per-IP limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	companies := ctx.Protected.Group("/companies")
	leadsGroup := ctx.Protected.Group("/leads")
	contacts := ctx.Protected.Group("/contacts")

	limit := ctx.WriteRateLimiter.RateLimit()
	if ctx.IntakeLimiter != nil {
		limit = ctx.IntakeLimiter.RateLimit()
	}
	companies.POST("", limit, m.handler.CreateCompany)
	leadsGroup.POST("", limit, m.handler.CreateLead)
	leadsGroup.POST("/:id/execute", limit, m.handler.Execute)
	contacts.POST("", limit, m.handler.CreateContact)

	companies.GET("", m.handler.ListCompanies)
	companies.GET("/:id", m.handler.GetCompany)

	leadsGroup.GET("", m.handler.ListLeads)
	leadsGroup.GET("/transitions", m.handler.GetTransitions)
	leadsGroup.GET("/:id", m.handler.GetLead)
	leadsGroup.GET("/:id/timeline", m.handler.GetTimeline)
	leadsGroup.POST("/:id/eligibility", m.handler.RunEligibility)
	leadsGroup.GET("/:id/eligibility", m.handler.GetEligibility)
	leadsGroup.GET("/:id/score", m.handler.GetScore)
	leadsGroup.GET("/:id/health", m.handler.GetHealth)
	leadsGroup.PUT("/:id/notes", m.handler.UpdateNotes)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
