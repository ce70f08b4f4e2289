// Package events provides domain event definitions for decoupled
// communication between modules. Infrastructure (Bus, Handler) is in
// platform/events.
package events

import (
	"leadgen_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// LeadCreated is published when a new lead enters the pipeline.
type LeadCreated struct {
	BaseEvent
	LeadID          uuid.UUID `json:"leadId"`
	CompanyID       uuid.UUID `json:"companyId"`
	OpportunityType string    `json:"opportunityType"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published after a status transition commits.
type LeadStatusChanged struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	From   string    `json:"from"`
	To     string    `json:"to"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadStalled is published by the health sweep for each lead it flags.
type LeadStalled struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	Status   string    `json:"status"`
	Risk     string    `json:"risk"`
	Priority string    `json:"priority"`
}

func (e LeadStalled) EventName() string { return "leads.lead.stalled" }
