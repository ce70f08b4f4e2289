package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityKind tags an activity record and selects its metadata shape.
type ActivityKind string

const (
	ActivityLeadCreated          ActivityKind = "lead_created"
	ActivityStatusChanged        ActivityKind = "status_changed"
	ActivityLogged               ActivityKind = "activity_logged"
	ActivityQualificationUpdated ActivityKind = "qualification_updated"
)

// Activity is an immutable, append-only audit record. Activities are never
// updated or deleted; a lead's full history is reconstructable from its
// activity sequence alone.
type Activity struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Kind      ActivityKind
	Metadata  ActivityMetadata
	ActorID   *uuid.UUID
	CreatedAt time.Time
}

// ActivityMetadata is the tagged union of per-kind payload shapes. Each kind
// carries its own concrete field set so consumers can handle kinds
// exhaustively instead of digging through an untyped bag.
type ActivityMetadata interface {
	ActivityKind() ActivityKind
}

// LeadCreatedMeta records the initial state of a new lead.
type LeadCreatedMeta struct {
	CompanyID       uuid.UUID `json:"companyId"`
	OpportunityType string    `json:"opportunityType"`
	Source          string    `json:"source,omitempty"`
}

func (LeadCreatedMeta) ActivityKind() ActivityKind { return ActivityLeadCreated }

// StatusChangedMeta records a committed status transition.
type StatusChangedMeta struct {
	From Status `json:"from"`
	To   Status `json:"to"`
}

func (StatusChangedMeta) ActivityKind() ActivityKind { return ActivityStatusChanged }

// LoggedMeta records the caller-supplied event that triggered an execution.
type LoggedMeta struct {
	Channel string `json:"channel,omitempty"`
	Summary string `json:"summary"`
	Outcome string `json:"outcome,omitempty"`
}

func (LoggedMeta) ActivityKind() ActivityKind { return ActivityLogged }

// QualificationUpdatedMeta records the full replacement checklist.
type QualificationUpdatedMeta struct {
	Qualification Qualification `json:"qualification"`
}

func (QualificationUpdatedMeta) ActivityKind() ActivityKind { return ActivityQualificationUpdated }

// MarshalActivityMetadata serializes a metadata variant for storage.
func MarshalActivityMetadata(meta ActivityMetadata) ([]byte, error) {
	if meta == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(meta)
}

// UnmarshalActivityMetadata decodes stored metadata into the variant matching
// the activity kind.
func UnmarshalActivityMetadata(kind ActivityKind, raw []byte) (ActivityMetadata, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch kind {
	case ActivityLeadCreated:
		var meta LeadCreatedMeta
		err := json.Unmarshal(raw, &meta)
		return meta, err
	case ActivityStatusChanged:
		var meta StatusChangedMeta
		err := json.Unmarshal(raw, &meta)
		return meta, err
	case ActivityLogged:
		var meta LoggedMeta
		err := json.Unmarshal(raw, &meta)
		return meta, err
	case ActivityQualificationUpdated:
		var meta QualificationUpdatedMeta
		err := json.Unmarshal(raw, &meta)
		return meta, err
	default:
		return nil, fmt.Errorf("unknown activity kind %q", kind)
	}
}
