// Package transport defines the request and response shapes for the leads
// HTTP API.
package transport

import (
	"github.com/google/uuid"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/leads/eligibility"
	"leadgen_backend/internal/leads/health"
	"leadgen_backend/internal/leads/scoring"
)

// CreateCompanyRequest registers a prospect facility.
type CreateCompanyRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=200"`
	Sector          string   `json:"sector" validate:"required,max=100"`
	Zone            string   `json:"zone" validate:"required,max=100"`
	MaxDemandKW     *float64 `json:"maxDemandKw" validate:"omitempty,gt=0"`
	TenantStructure string   `json:"tenantStructure" validate:"omitempty,oneof=single multi unknown"`
	OperatingHours  string   `json:"operatingHours" validate:"omitempty,oneof=office extended shift continuous"`
	RoofSizeSqft    *float64 `json:"roofSizeSqft" validate:"omitempty,gt=0"`
	MonthlyBillRM   *float64 `json:"monthlyBillRm" validate:"omitempty,gt=0"`
	OwnerOccupied   *bool    `json:"ownerOccupied"`
}

// CreateContactRequest adds a contact person to a facility.
type CreateContactRequest struct {
	CompanyID uuid.UUID `json:"companyId" validate:"required"`
	Name      string    `json:"name" validate:"required,min=2,max=200"`
	Phone     *string   `json:"phone" validate:"omitempty,max=32"`
	Email     *string   `json:"email" validate:"omitempty,email"`
	Role      *string   `json:"role" validate:"omitempty,max=100"`
}

// CreateLeadRequest opens a lead against a registered facility.
type CreateLeadRequest struct {
	CompanyID       uuid.UUID  `json:"companyId" validate:"required"`
	ContactID       *uuid.UUID `json:"contactId"`
	OpportunityType string     `json:"opportunityType" validate:"required,max=50"`
	Source          string     `json:"source" validate:"omitempty,max=100"`
	Notes           *string    `json:"notes" validate:"omitempty,max=4000"`
}

// ActivityPayload is the caller-supplied record of the event that triggered
// an execution.
type ActivityPayload struct {
	Channel string `json:"channel" validate:"omitempty,max=50"`
	Summary string `json:"summary" validate:"required,min=2,max=500"`
	Outcome string `json:"outcome" validate:"omitempty,max=200"`
}

// ExecuteLeadRequest drives one engine execution. NewStatus and
// Qualification are each optional; the activity is mandatory.
type ExecuteLeadRequest struct {
	NewStatus     *string               `json:"newStatus" validate:"omitempty,max=50"`
	Qualification *domain.Qualification `json:"qualification"`
	Activity      ActivityPayload       `json:"activity" validate:"required"`
}

// UpdateNotesRequest replaces a lead's free-form notes.
type UpdateNotesRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=4000"`
}

// ListLeadsRequest filters the lead listing.
type ListLeadsRequest struct {
	Status    string `form:"status"`
	CompanyID string `form:"companyId"`
	Limit     int    `form:"limit"`
	Offset    int    `form:"offset"`
}

// CompanyResponse is the API shape of a facility.
type CompanyResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Sector          string    `json:"sector"`
	Zone            string    `json:"zone"`
	MaxDemandKW     *float64  `json:"maxDemandKw"`
	TenantStructure string    `json:"tenantStructure"`
	OperatingHours  string    `json:"operatingHours"`
	RoofSizeSqft    *float64  `json:"roofSizeSqft"`
	MonthlyBillRM   *float64  `json:"monthlyBillRm"`
	OwnerOccupied   *bool     `json:"ownerOccupied"`
	CreatedAt       string    `json:"createdAt"`
}

// ContactResponse is the API shape of a contact.
type ContactResponse struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"companyId"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	Role      *string   `json:"role"`
}

// LeadResponse is the API shape of a lead.
type LeadResponse struct {
	ID              uuid.UUID            `json:"id"`
	CompanyID       uuid.UUID            `json:"companyId"`
	ContactID       *uuid.UUID           `json:"contactId"`
	OpportunityType string               `json:"opportunityType"`
	Status          string               `json:"status"`
	ValidTargets    []string             `json:"validTargets"`
	Qualification   domain.Qualification `json:"qualification"`
	Notes           *string              `json:"notes"`
	CreatedAt       string               `json:"createdAt"`
	UpdatedAt       string               `json:"updatedAt"`
}

// LeadListResponse wraps a lead listing.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

// SnapshotResponse is the lead state after a successful execution.
type SnapshotResponse struct {
	ID             uuid.UUID            `json:"id"`
	Status         string               `json:"status"`
	PreviousStatus string               `json:"previousStatus"`
	Qualification  domain.Qualification `json:"qualification"`
	UpdatedAt      string               `json:"updatedAt"`
}

// ActivityResponse is one audit trail entry.
type ActivityResponse struct {
	ID        uuid.UUID   `json:"id"`
	Kind      string      `json:"kind"`
	Metadata  interface{} `json:"metadata"`
	ActorID   *uuid.UUID  `json:"actorId"`
	CreatedAt string      `json:"createdAt"`
}

// TimelineResponse wraps a lead's audit trail.
type TimelineResponse struct {
	LeadID uuid.UUID          `json:"leadId"`
	Items  []ActivityResponse `json:"items"`
}

// EligibilityResponse is a recorded gate outcome.
type EligibilityResponse struct {
	LeadID     uuid.UUID          `json:"leadId"`
	Result     eligibility.Result `json:"result"`
	RecordedAt string             `json:"recordedAt"`
}

// ScoreResponse wraps the scorer output.
type ScoreResponse struct {
	LeadID uuid.UUID      `json:"leadId"`
	Score  scoring.Result `json:"score"`
}

// HealthResponse wraps the advisor report.
type HealthResponse struct {
	LeadID uuid.UUID     `json:"leadId"`
	Report health.Report `json:"report"`
}

// TransitionRule describes one status in the pipeline graph.
type TransitionRule struct {
	Status       string   `json:"status"`
	Rank         int      `json:"rank"`
	Terminal     bool     `json:"terminal"`
	ValidTargets []string `json:"validTargets"`
}

// TransitionTableResponse is the pre-flight view of the full status graph.
type TransitionTableResponse struct {
	Statuses []TransitionRule `json:"statuses"`
}

// DossierResponse points at an exported dossier object.
type DossierResponse struct {
	LeadID    uuid.UUID `json:"leadId"`
	ObjectKey string    `json:"objectKey"`
	URL       string    `json:"url"`
	ExpiresAt string    `json:"expiresAt"`
}
