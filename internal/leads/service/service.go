// Package service provides the business logic for the leads module. All
// status and qualification mutations go through the execution engine; the
// service wraps it with lookups, the pure gates, and event publication.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadgen_backend/internal/events"
	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/leads/eligibility"
	"leadgen_backend/internal/leads/engine"
	"leadgen_backend/internal/leads/health"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/leads/scoring"
	"leadgen_backend/internal/leads/transport"
	"leadgen_backend/platform/apperr"
	"leadgen_backend/platform/logger"
	"leadgen_backend/platform/phone"
)

// Service provides business logic for leads.
type Service struct {
	repo    *repository.Repo
	engine  *engine.Engine
	bus     events.Bus
	profile scoring.Profile
	log     *logger.Logger
}

// New creates a new leads service.
func New(repo *repository.Repo, eng *engine.Engine, bus events.Bus, profile scoring.Profile, log *logger.Logger) *Service {
	return &Service{repo: repo, engine: eng, bus: bus, profile: profile, log: log}
}

// CreateCompany registers a prospect facility.
func (s *Service) CreateCompany(ctx context.Context, req transport.CreateCompanyRequest) (transport.CompanyResponse, error) {
	tenantStructure := domain.TenantStructure(req.TenantStructure)
	if tenantStructure == "" {
		tenantStructure = domain.TenantUnknown
	}

	company, err := s.repo.CreateCompany(ctx, repository.CreateCompanyParams{
		Name:            req.Name,
		Sector:          req.Sector,
		Zone:            req.Zone,
		MaxDemandKW:     req.MaxDemandKW,
		TenantStructure: tenantStructure,
		OperatingHours:  domain.OperatingHours(req.OperatingHours),
		RoofSizeSqft:    req.RoofSizeSqft,
		MonthlyBillRM:   req.MonthlyBillRM,
		OwnerOccupied:   req.OwnerOccupied,
	})
	if err != nil {
		return transport.CompanyResponse{}, err
	}
	return toCompanyResponse(company), nil
}

// GetCompany retrieves a facility by ID.
func (s *Service) GetCompany(ctx context.Context, id uuid.UUID) (transport.CompanyResponse, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return transport.CompanyResponse{}, err
	}
	return toCompanyResponse(company), nil
}

// ListCompanies lists registered facilities.
func (s *Service) ListCompanies(ctx context.Context, limit, offset int) ([]transport.CompanyResponse, error) {
	companies, err := s.repo.ListCompanies(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]transport.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		items = append(items, toCompanyResponse(c))
	}
	return items, nil
}

// CreateContact adds a contact person to a facility. The phone number is
// normalized to E.164 before storage.
func (s *Service) CreateContact(ctx context.Context, req transport.CreateContactRequest) (transport.ContactResponse, error) {
	if _, err := s.repo.GetCompany(ctx, req.CompanyID); err != nil {
		return transport.ContactResponse{}, err
	}

	normalizedPhone := req.Phone
	if req.Phone != nil && *req.Phone != "" {
		e164 := phone.NormalizeE164(*req.Phone)
		normalizedPhone = &e164
	}

	contact, err := s.repo.CreateContact(ctx, repository.CreateContactParams{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Phone:     normalizedPhone,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		return transport.ContactResponse{}, err
	}
	return transport.ContactResponse{
		ID:        contact.ID,
		CompanyID: contact.CompanyID,
		Name:      contact.Name,
		Phone:     contact.Phone,
		Email:     contact.Email,
		Role:      contact.Role,
	}, nil
}

// CreateLead opens a lead in the identified status and publishes the
// created event. The row and its creation audit entry commit as one engine
// unit.
func (s *Service) CreateLead(ctx context.Context, req transport.CreateLeadRequest, actorID *uuid.UUID) (transport.LeadResponse, error) {
	if _, err := s.repo.GetCompany(ctx, req.CompanyID); err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.engine.Create(ctx, engine.CreateParams{
		CompanyID:       req.CompanyID,
		ContactID:       req.ContactID,
		OpportunityType: req.OpportunityType,
		Source:          req.Source,
		Notes:           req.Notes,
		ActorID:         actorID,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		CompanyID:       lead.CompanyID,
		OpportunityType: lead.OpportunityType,
	})

	return toLeadResponse(lead), nil
}

// GetLead retrieves a lead by ID.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetLead(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

// ListLeads lists leads with optional status and company filters.
func (s *Service) ListLeads(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	params := repository.ListLeadsParams{Limit: req.Limit, Offset: req.Offset}

	if req.Status != "" {
		status := domain.Status(req.Status)
		if !domain.IsKnownStatus(req.Status) {
			return transport.LeadListResponse{}, apperr.Validation("unknown status filter").WithDetails(map[string]any{"status": req.Status})
		}
		params.Status = &status
	}
	if req.CompanyID != "" {
		companyID, err := uuid.Parse(req.CompanyID)
		if err != nil {
			return transport.LeadListResponse{}, apperr.Validation("invalid company id filter")
		}
		params.CompanyID = &companyID
	}

	leads, total, err := s.repo.ListLeads(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, l := range leads {
		items = append(items, toLeadResponse(l))
	}
	return transport.LeadListResponse{Items: items, Total: total}, nil
}

// Execute runs one engine execution against a lead and publishes the
// status-changed event when the transition commits.
func (s *Service) Execute(ctx context.Context, leadID uuid.UUID, req transport.ExecuteLeadRequest, actorID *uuid.UUID) (transport.SnapshotResponse, error) {
	params := engine.ExecuteParams{
		LeadID: leadID,
		Activity: domain.LoggedMeta{
			Channel: req.Activity.Channel,
			Summary: req.Activity.Summary,
			Outcome: req.Activity.Outcome,
		},
		Qualification: req.Qualification,
		ActorID:       actorID,
	}
	if req.NewStatus != nil {
		status := domain.Status(*req.NewStatus)
		if !domain.IsKnownStatus(*req.NewStatus) {
			return transport.SnapshotResponse{}, apperr.Validation("unknown status").
				WithCode(engine.CodeInvalidTransition).
				WithDetails(map[string]any{"status": *req.NewStatus})
		}
		params.NewStatus = &status
	}

	snapshot, err := s.engine.Execute(ctx, params)
	if err != nil {
		return transport.SnapshotResponse{}, err
	}

	if snapshot.Status != snapshot.PreviousStatus {
		s.bus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    snapshot.ID,
			From:      string(snapshot.PreviousStatus),
			To:        string(snapshot.Status),
		})
	}

	return transport.SnapshotResponse{
		ID:             snapshot.ID,
		Status:         string(snapshot.Status),
		PreviousStatus: string(snapshot.PreviousStatus),
		Qualification:  snapshot.Qualification,
		UpdatedAt:      snapshot.UpdatedAt.Format(time.RFC3339),
	}, nil
}

// GetTimeline returns a lead's full audit trail, oldest first.
func (s *Service) GetTimeline(ctx context.Context, leadID uuid.UUID) (transport.TimelineResponse, error) {
	if _, err := s.repo.GetLead(ctx, leadID); err != nil {
		return transport.TimelineResponse{}, err
	}
	activities, err := s.repo.ListActivities(ctx, leadID)
	if err != nil {
		return transport.TimelineResponse{}, err
	}

	items := make([]transport.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		items = append(items, transport.ActivityResponse{
			ID:        a.ID,
			Kind:      string(a.Kind),
			Metadata:  a.Metadata,
			ActorID:   a.ActorID,
			CreatedAt: a.CreatedAt.Format(time.RFC3339),
		})
	}
	return transport.TimelineResponse{LeadID: leadID, Items: items}, nil
}

// RunEligibility evaluates the facility behind a lead against the program
// criteria and persists the determination. Recording happens even for
// ineligible facilities; screening later requires the record to exist.
func (s *Service) RunEligibility(ctx context.Context, leadID uuid.UUID) (transport.EligibilityResponse, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return transport.EligibilityResponse{}, err
	}
	company, err := s.repo.GetCompany(ctx, lead.CompanyID)
	if err != nil {
		return transport.EligibilityResponse{}, err
	}

	result := eligibility.Check(company)
	det, err := s.repo.RecordEligibility(ctx, leadID, result)
	if err != nil {
		return transport.EligibilityResponse{}, err
	}

	return transport.EligibilityResponse{
		LeadID:     leadID,
		Result:     result,
		RecordedAt: det.CreatedAt.Format(time.RFC3339),
	}, nil
}

// GetEligibility returns the latest recorded determination for a lead.
func (s *Service) GetEligibility(ctx context.Context, leadID uuid.UUID) (transport.EligibilityResponse, error) {
	det, err := s.repo.LatestEligibility(ctx, leadID)
	if err != nil {
		return transport.EligibilityResponse{}, err
	}
	return transport.EligibilityResponse{
		LeadID: leadID,
		Result: eligibility.Result{
			Eligible:          det.Eligible,
			DisqualifyReasons: det.DisqualifyReasons,
			Warnings:          det.Warnings,
		},
		RecordedAt: det.CreatedAt.Format(time.RFC3339),
	}, nil
}

// GetScore computes the fit and urgency scores for a lead's facility.
func (s *Service) GetScore(ctx context.Context, leadID uuid.UUID) (transport.ScoreResponse, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return transport.ScoreResponse{}, err
	}
	company, err := s.repo.GetCompany(ctx, lead.CompanyID)
	if err != nil {
		return transport.ScoreResponse{}, err
	}
	return transport.ScoreResponse{
		LeadID: leadID,
		Score:  scoring.Score(company, lead.OpportunityType, s.profile),
	}, nil
}

// GetHealth evaluates a lead with the health advisor, feeding it the
// historical average dwell for its current stage.
func (s *Service) GetHealth(ctx context.Context, leadID uuid.UUID) (transport.HealthResponse, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return transport.HealthResponse{}, err
	}
	activities, err := s.repo.ListActivities(ctx, leadID)
	if err != nil {
		return transport.HealthResponse{}, err
	}
	avg, err := s.repo.AvgStageDuration(ctx, lead.Status)
	if err != nil {
		return transport.HealthResponse{}, err
	}

	report := health.Evaluate(health.Input{
		Lead:             lead,
		Activities:       activities,
		AvgStageDuration: avg,
		Now:              time.Now().UTC(),
	})
	return transport.HealthResponse{LeadID: leadID, Report: report}, nil
}

// TransitionTable returns the full status graph for pre-flight checks, in
// canonical pipeline order.
func (s *Service) TransitionTable() transport.TransitionTableResponse {
	statuses := domain.AllStatuses()
	rules := make([]transport.TransitionRule, 0, len(statuses))
	for _, st := range statuses {
		targets := make([]string, 0)
		for _, t := range domain.ValidTargets(st) {
			targets = append(targets, string(t))
		}
		rules = append(rules, transport.TransitionRule{
			Status:       string(st),
			Rank:         domain.Rank(st),
			Terminal:     domain.IsTerminal(st),
			ValidTargets: targets,
		})
	}
	return transport.TransitionTableResponse{Statuses: rules}
}

// UpdateNotes replaces a lead's free-form notes without an audit entry.
func (s *Service) UpdateNotes(ctx context.Context, leadID uuid.UUID, req transport.UpdateNotesRequest) error {
	return s.repo.UpdateLeadNotes(ctx, leadID, req.Notes)
}

func toCompanyResponse(c domain.Company) transport.CompanyResponse {
	return transport.CompanyResponse{
		ID:              c.ID,
		Name:            c.Name,
		Sector:          c.Sector,
		Zone:            c.Zone,
		MaxDemandKW:     c.MaxDemandKW,
		TenantStructure: string(c.TenantStructure),
		OperatingHours:  string(c.OperatingHours),
		RoofSizeSqft:    c.RoofSizeSqft,
		MonthlyBillRM:   c.MonthlyBillRM,
		OwnerOccupied:   c.OwnerOccupied,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
}

func toLeadResponse(l domain.Lead) transport.LeadResponse {
	targets := make([]string, 0)
	for _, t := range domain.ValidTargets(l.Status) {
		targets = append(targets, string(t))
	}
	return transport.LeadResponse{
		ID:              l.ID,
		CompanyID:       l.CompanyID,
		ContactID:       l.ContactID,
		OpportunityType: l.OpportunityType,
		Status:          string(l.Status),
		ValidTargets:    targets,
		Qualification:   l.Qualification,
		Notes:           l.Notes,
		CreatedAt:       l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       l.UpdatedAt.Format(time.RFC3339),
	}
}
