// Package handler exposes the leads module over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leadgen_backend/internal/leads/service"
	"leadgen_backend/internal/leads/transport"
	"leadgen_backend/platform/httpkit"
	"leadgen_backend/platform/validator"
)

// Handler handles HTTP requests for leads and companies.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead ID"
	msgInvalidCompanyID = "invalid company ID"
)

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// CreateCompany registers a prospect facility.
// POST /api/v1/companies
func (h *Handler) CreateCompany(c *gin.Context) {
	var req transport.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateCompany(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// GetCompany retrieves a facility.
// GET /api/v1/companies/:id
func (h *Handler) GetCompany(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCompanyID, nil)
		return
	}

	result, err := h.svc.GetCompany(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListCompanies lists registered facilities.
// GET /api/v1/companies
func (h *Handler) ListCompanies(c *gin.Context) {
	var query struct {
		Limit  int `form:"limit"`
		Offset int `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.ListCompanies(c.Request.Context(), query.Limit, query.Offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateContact adds a contact person to a facility.
// POST /api/v1/contacts
func (h *Handler) CreateContact(c *gin.Context) {
	var req transport.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateContact(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// CreateLead opens a lead against a registered facility.
// POST /api/v1/leads
func (h *Handler) CreateLead(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateLead(c.Request.Context(), req, actorID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// GetLead retrieves a lead.
// GET /api/v1/leads/:id
func (h *Handler) GetLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListLeads lists leads with optional filters.
// GET /api/v1/leads
func (h *Handler) ListLeads(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.ListLeads(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Execute runs one engine execution: an activity, optionally a checklist
// replacement, optionally a status transition.
// POST /api/v1/leads/:id/execute
func (h *Handler) Execute(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	var req transport.ExecuteLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Execute(c.Request.Context(), id, req, actorID(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetTimeline returns a lead's audit trail.
// GET /api/v1/leads/:id/timeline
func (h *Handler) GetTimeline(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetTimeline(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RunEligibility evaluates and records the facility's program eligibility.
// POST /api/v1/leads/:id/eligibility
func (h *Handler) RunEligibility(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	result, err := h.svc.RunEligibility(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// GetEligibility returns the latest recorded determination.
// GET /api/v1/leads/:id/eligibility
func (h *Handler) GetEligibility(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetEligibility(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetScore computes the fit and urgency scores for a lead.
// GET /api/v1/leads/:id/score
func (h *Handler) GetScore(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetScore(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetHealth evaluates a lead with the health advisor.
// GET /api/v1/leads/:id/health
func (h *Handler) GetHealth(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetHealth(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetTransitions returns the status graph so clients can pre-flight moves.
// GET /api/v1/leads/transitions
func (h *Handler) GetTransitions(c *gin.Context) {
	httpkit.OK(c, h.svc.TransitionTable())
}

// UpdateNotes replaces a lead's free-form notes.
// PUT /api/v1/leads/:id/notes
func (h *Handler) UpdateNotes(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	var req transport.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if httpkit.HandleError(c, h.svc.UpdateNotes(c.Request.Context(), id, req)) {
		return
	}
	httpkit.OK(c, gin.H{"status": "updated"})
}

func leadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func actorID(c *gin.Context) *uuid.UUID {
	identity := httpkit.GetIdentity(c)
	if identity == nil || !identity.IsAuthenticated() {
		return nil
	}
	id := identity.UserID()
	return &id
}
