// Package engine implements the lead execution engine: the sole mutation
// entry point for a lead's status and qualification. Every execution is one
// atomic unit; a failure at any step leaves no partial mutation visible.
package engine

import (
	"context"
	"errors"
	"time"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/platform/apperr"
	"leadgen_backend/platform/logger"

	"github.com/google/uuid"
)

// ErrLeadNotFound is returned by TxStore implementations when the lead row
// does not exist. The engine maps it to a typed NotFound error.
var ErrLeadNotFound = errors.New("lead not found")

// Stable machine-readable error codes surfaced to callers.
const (
	CodeSameStatus              = "same_status"
	CodeInvalidTransition       = "invalid_transition"
	CodeQualificationIncomplete = "qualification_incomplete"
	CodeUpstreamStateMissing    = "upstream_state_missing"
)

// Store opens atomic units of work against the lead store. Implementations
// must guarantee that the closure's writes commit together or not at all,
// and that GetLeadForUpdate serializes concurrent executions for the same
// lead.
type Store interface {
	ExecuteTx(ctx context.Context, fn func(tx TxStore) error) error
}

// TxStore is the narrow mutation surface available inside one unit of work.
// The update methods return the row's new updated_at so snapshots reflect
// persisted state rather than the application clock.
type TxStore interface {
	InsertLead(ctx context.Context, params CreateParams) (domain.Lead, error)
	GetLeadForUpdate(ctx context.Context, leadID uuid.UUID) (domain.Lead, error)
	UpdateLeadStatus(ctx context.Context, leadID uuid.UUID, status domain.Status) (time.Time, error)
	UpdateLeadQualification(ctx context.Context, leadID uuid.UUID, q domain.Qualification) (time.Time, error)
	AppendActivity(ctx context.Context, leadID uuid.UUID, meta domain.ActivityMetadata, actorID *uuid.UUID) error
	HasEligibilityRecord(ctx context.Context, leadID uuid.UUID) (bool, error)
}

// CreateParams describes a lead creation request.
type CreateParams struct {
	CompanyID       uuid.UUID
	ContactID       *uuid.UUID
	OpportunityType string
	Source          string
	Notes           *string
	// ActorID attributes the creation entry; nil for system actors.
	ActorID *uuid.UUID
}

// ExecuteParams describes one execution request.
type ExecuteParams struct {
	LeadID uuid.UUID
	// Activity is the caller-supplied record of the triggering event. It is
	// appended on every successful execution, status change or not.
	Activity domain.LoggedMeta
	// NewStatus, when set, requests a status transition.
	NewStatus *domain.Status
	// Qualification, when set, replaces the checklist wholesale.
	Qualification *domain.Qualification
	// ActorID attributes the audit entries; nil for system actors.
	ActorID *uuid.UUID
}

// Snapshot is the lead state after a successful execution.
type Snapshot struct {
	ID             uuid.UUID            `json:"id"`
	Status         domain.Status        `json:"status"`
	PreviousStatus domain.Status        `json:"previousStatus"`
	Qualification  domain.Qualification `json:"qualification"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// Engine validates and applies lead mutations.
type Engine struct {
	store Store
	log   *logger.Logger
}

// New creates an execution engine over the given store.
func New(store Store, log *logger.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// Create opens a lead in the identified status together with its creation
// audit entry. Both rows commit in one unit; a failed audit write leaves no
// lead behind.
func (e *Engine) Create(ctx context.Context, params CreateParams) (domain.Lead, error) {
	var lead domain.Lead

	err := e.store.ExecuteTx(ctx, func(tx TxStore) error {
		l, err := tx.InsertLead(ctx, params)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "insert lead", err).WithOp("engine.Create")
		}

		meta := domain.LeadCreatedMeta{
			CompanyID:       l.CompanyID,
			OpportunityType: l.OpportunityType,
			Source:          params.Source,
		}
		if err := tx.AppendActivity(ctx, l.ID, meta, params.ActorID); err != nil {
			return apperr.Wrap(apperr.KindInternal, "append creation activity", err).WithOp("engine.Create")
		}

		lead = l
		return nil
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// Execute runs one atomic unit of work: lock and read the lead, apply the
// optional qualification replacement, validate and apply the optional
// status transition, and append the audit trail. Any failure aborts the
// whole unit; no activity is logged and no field is persisted.
func (e *Engine) Execute(ctx context.Context, params ExecuteParams) (Snapshot, error) {
	var snapshot Snapshot

	err := e.store.ExecuteTx(ctx, func(tx TxStore) error {
		lead, err := tx.GetLeadForUpdate(ctx, params.LeadID)
		if err != nil {
			if errors.Is(err, ErrLeadNotFound) {
				return apperr.NotFound("lead not found").WithOp("engine.Execute")
			}
			return apperr.Wrap(apperr.KindInternal, "lock lead", err).WithOp("engine.Execute")
		}

		currentStatus := lead.Status
		effectiveQualification := lead.Qualification
		updatedAt := lead.UpdatedAt

		if params.Qualification != nil {
			effectiveQualification = *params.Qualification
			ts, err := tx.UpdateLeadQualification(ctx, lead.ID, effectiveQualification)
			if err != nil {
				return apperr.Wrap(apperr.KindInternal, "update qualification", err).WithOp("engine.Execute")
			}
			updatedAt = ts
			meta := domain.QualificationUpdatedMeta{Qualification: effectiveQualification}
			if err := tx.AppendActivity(ctx, lead.ID, meta, params.ActorID); err != nil {
				return apperr.Wrap(apperr.KindInternal, "append qualification activity", err).WithOp("engine.Execute")
			}
		}

		if params.NewStatus != nil {
			if err := e.validateTransition(ctx, tx, lead, *params.NewStatus, effectiveQualification); err != nil {
				return err
			}
		}

		// Every execution is audit-visible, even without a status change.
		if err := tx.AppendActivity(ctx, lead.ID, params.Activity, params.ActorID); err != nil {
			return apperr.Wrap(apperr.KindInternal, "append activity", err).WithOp("engine.Execute")
		}

		newStatus := currentStatus
		if params.NewStatus != nil {
			newStatus = *params.NewStatus
			ts, err := tx.UpdateLeadStatus(ctx, lead.ID, newStatus)
			if err != nil {
				return apperr.Wrap(apperr.KindInternal, "update status", err).WithOp("engine.Execute")
			}
			updatedAt = ts
			meta := domain.StatusChangedMeta{From: currentStatus, To: newStatus}
			if err := tx.AppendActivity(ctx, lead.ID, meta, params.ActorID); err != nil {
				return apperr.Wrap(apperr.KindInternal, "append status activity", err).WithOp("engine.Execute")
			}
		}

		snapshot = Snapshot{
			ID:             lead.ID,
			Status:         newStatus,
			PreviousStatus: currentStatus,
			Qualification:  effectiveQualification,
			CreatedAt:      lead.CreatedAt,
			UpdatedAt:      updatedAt,
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	if e.log != nil && snapshot.Status != snapshot.PreviousStatus {
		e.log.LeadTransition(snapshot.ID.String(), string(snapshot.PreviousStatus), string(snapshot.Status))
	}

	return snapshot, nil
}

// validateTransition enforces the status graph and both gates against the
// effective qualification (post-replacement when the same execution carries
// a checklist update).
func (e *Engine) validateTransition(ctx context.Context, tx TxStore, lead domain.Lead, newStatus domain.Status, qualification domain.Qualification) error {
	if newStatus == lead.Status {
		return apperr.Conflict("lead already has the requested status").
			WithCode(CodeSameStatus).
			WithDetails(map[string]any{"status": lead.Status})
	}

	if !domain.CanTransition(lead.Status, newStatus) {
		return apperr.Validation("status transition not permitted").
			WithCode(CodeInvalidTransition).
			WithDetails(map[string]any{"from": lead.Status, "to": newStatus})
	}

	if newStatus == domain.StatusQualified && !qualification.Complete() {
		return apperr.Validation("qualification checklist incomplete").
			WithCode(CodeQualificationIncomplete).
			WithDetails(map[string]any{"missing": qualification.Missing()})
	}

	// The screening stage depends on upstream computed state: a facility
	// must carry a recorded eligibility determination before it can be
	// screened. Enforced here, centrally, for every entry point.
	if newStatus == domain.StatusAtapScreened {
		recorded, err := tx.HasEligibilityRecord(ctx, lead.ID)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "check eligibility record", err).WithOp("engine.Execute")
		}
		if !recorded {
			return apperr.Conflict("no eligibility determination recorded for this lead").
				WithCode(CodeUpstreamStateMissing).
				WithDetails(map[string]any{"required": "eligibility determination"})
		}
	}

	return nil
}
