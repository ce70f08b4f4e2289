package dossier

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apphttp "leadgen_backend/internal/http"
	"leadgen_backend/platform/httpkit"
)

// Module is the dossier export module implementing http.Module. It is only
// mounted when object storage is configured.
type Module struct {
	svc *Service
}

// NewModule creates the dossier module.
func NewModule(svc *Service) *Module {
	return &Module{svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dossier"
}

// RegisterRoutes mounts the dossier export route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/leads/:id/dossier", m.export)
}

func (m *Module) export(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead ID", nil)
		return
	}

	result, err := m.svc.Export(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
