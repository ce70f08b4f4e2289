package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"leadgen_backend/internal/leads/eligibility"
	"leadgen_backend/platform/apperr"
)

// EligibilityDetermination is a persisted gate outcome for a lead. A lead
// may accumulate several determinations as facility data is corrected; the
// latest one is authoritative.
type EligibilityDetermination struct {
	ID                uuid.UUID
	LeadID            uuid.UUID
	Eligible          bool
	DisqualifyReasons []string
	Warnings          []string
	CreatedAt         time.Time
}

// RecordEligibility persists a gate outcome for a lead.
func (r *Repo) RecordEligibility(ctx context.Context, leadID uuid.UUID, result eligibility.Result) (EligibilityDetermination, error) {
	query := `
        INSERT INTO eligibility_determinations (lead_id, eligible, disqualify_reasons, warnings)
        VALUES ($1, $2, $3, $4)
        RETURNING id, lead_id, eligible, disqualify_reasons, warnings, created_at`

	var det EligibilityDetermination
	if err := r.pool.QueryRow(ctx, query,
		leadID,
		result.Eligible,
		result.DisqualifyReasons,
		result.Warnings,
	).Scan(
		&det.ID,
		&det.LeadID,
		&det.Eligible,
		&det.DisqualifyReasons,
		&det.Warnings,
		&det.CreatedAt,
	); err != nil {
		return EligibilityDetermination{}, fmt.Errorf("record eligibility: %w", err)
	}
	return det, nil
}

// LatestEligibility returns the most recent determination for a lead.
func (r *Repo) LatestEligibility(ctx context.Context, leadID uuid.UUID) (EligibilityDetermination, error) {
	query := `
        SELECT id, lead_id, eligible, disqualify_reasons, warnings, created_at
        FROM eligibility_determinations
        WHERE lead_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT 1`

	var det EligibilityDetermination
	if err := r.pool.QueryRow(ctx, query, leadID).Scan(
		&det.ID,
		&det.LeadID,
		&det.Eligible,
		&det.DisqualifyReasons,
		&det.Warnings,
		&det.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return EligibilityDetermination{}, apperr.NotFound("no eligibility determination recorded")
		}
		return EligibilityDetermination{}, fmt.Errorf("latest eligibility: %w", err)
	}
	return det, nil
}
