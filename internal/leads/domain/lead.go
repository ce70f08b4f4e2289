package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lead is the unit of work in the pipeline. The execution engine exclusively
// owns Status and Qualification; Notes is mutable by the surrounding API
// layer without an audit entry.
type Lead struct {
	ID              uuid.UUID
	CompanyID       uuid.UUID
	ContactID       *uuid.UUID
	OpportunityType string
	Status          Status
	Qualification   Qualification
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TenantStructure describes how a facility's occupancy is split.
type TenantStructure string

const (
	TenantSingle  TenantStructure = "single"
	TenantMulti   TenantStructure = "multi"
	TenantUnknown TenantStructure = "unknown"
)

// OperatingHours buckets a facility's operating-hours profile.
type OperatingHours string

const (
	HoursOffice     OperatingHours = "office"
	HoursExtended   OperatingHours = "extended"
	HoursShift      OperatingHours = "shift"
	HoursContinuous OperatingHours = "continuous"
)

// Company is the prospect facility a lead points at. Read-only to the core:
// the eligibility gate and scorer consume it but never mutate it.
type Company struct {
	ID              uuid.UUID
	Name            string
	Sector          string
	Zone            string
	MaxDemandKW     *float64
	TenantStructure TenantStructure
	OperatingHours  OperatingHours
	RoofSizeSqft    *float64
	MonthlyBillRM   *float64
	OwnerOccupied   *bool
	CreatedAt       time.Time
}
