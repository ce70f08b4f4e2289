package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/internal/leads/engine"
)

// txStore is the engine.TxStore implementation bound to one open
// transaction.
type txStore struct {
	tx pgx.Tx
}

func (t *txStore) InsertLead(ctx context.Context, params engine.CreateParams) (domain.Lead, error) {
	query := `
        INSERT INTO leads (company_id, contact_id, opportunity_type, status, qualification, notes)
        VALUES ($1, $2, $3, $4, '{}', $5)
        RETURNING id, company_id, contact_id, opportunity_type, status, qualification, notes, created_at, updated_at`

	var lead domain.Lead
	var status string
	if err := t.tx.QueryRow(ctx, query,
		params.CompanyID,
		params.ContactID,
		params.OpportunityType,
		string(domain.StatusIdentified),
		params.Notes,
	).Scan(
		&lead.ID,
		&lead.CompanyID,
		&lead.ContactID,
		&lead.OpportunityType,
		&status,
		&lead.Qualification,
		&lead.Notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		return domain.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	lead.Status = domain.Status(status)
	return lead, nil
}

func (t *txStore) GetLeadForUpdate(ctx context.Context, leadID uuid.UUID) (domain.Lead, error) {
	query := `
        SELECT id, company_id, contact_id, opportunity_type, status, qualification, notes, created_at, updated_at
        FROM leads
        WHERE id = $1
        FOR UPDATE`

	var lead domain.Lead
	var status string
	if err := t.tx.QueryRow(ctx, query, leadID).Scan(
		&lead.ID,
		&lead.CompanyID,
		&lead.ContactID,
		&lead.OpportunityType,
		&status,
		&lead.Qualification,
		&lead.Notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, engine.ErrLeadNotFound
		}
		return domain.Lead{}, fmt.Errorf("get lead for update: %w", err)
	}
	lead.Status = domain.Status(status)
	return lead, nil
}

func (t *txStore) UpdateLeadStatus(ctx context.Context, leadID uuid.UUID, status domain.Status) (time.Time, error) {
	var updatedAt time.Time
	err := t.tx.QueryRow(ctx, `
        UPDATE leads SET status = $2, updated_at = now()
        WHERE id = $1
        RETURNING updated_at`, leadID, string(status)).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, engine.ErrLeadNotFound
		}
		return time.Time{}, fmt.Errorf("update lead status: %w", err)
	}
	return updatedAt, nil
}

func (t *txStore) UpdateLeadQualification(ctx context.Context, leadID uuid.UUID, q domain.Qualification) (time.Time, error) {
	var updatedAt time.Time
	err := t.tx.QueryRow(ctx, `
        UPDATE leads SET qualification = $2, updated_at = now()
        WHERE id = $1
        RETURNING updated_at`, leadID, q).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, engine.ErrLeadNotFound
		}
		return time.Time{}, fmt.Errorf("update lead qualification: %w", err)
	}
	return updatedAt, nil
}

func (t *txStore) AppendActivity(ctx context.Context, leadID uuid.UUID, meta domain.ActivityMetadata, actorID *uuid.UUID) error {
	raw, err := domain.MarshalActivityMetadata(meta)
	if err != nil {
		return fmt.Errorf("marshal activity metadata: %w", err)
	}
	if _, err := t.tx.Exec(ctx, `
        INSERT INTO lead_activities (lead_id, kind, metadata, actor_id)
        VALUES ($1, $2, $3, $4)`,
		leadID, string(meta.ActivityKind()), raw, actorID,
	); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (t *txStore) HasEligibilityRecord(ctx context.Context, leadID uuid.UUID) (bool, error) {
	var exists bool
	if err := t.tx.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM eligibility_determinations WHERE lead_id = $1)`,
		leadID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check eligibility record: %w", err)
	}
	return exists, nil
}

var _ engine.TxStore = (*txStore)(nil)
