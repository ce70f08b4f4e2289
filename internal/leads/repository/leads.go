package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/platform/apperr"
)

const leadNotFoundMessage = "lead not found"

// GetLead retrieves a lead by ID.
func (r *Repo) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	query := `
        SELECT id, company_id, contact_id, opportunity_type, status, qualification, notes, created_at, updated_at
        FROM leads
        WHERE id = $1`

	var lead domain.Lead
	var status string
	if err := r.pool.QueryRow(ctx, query, id).Scan(
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
			return domain.Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	lead.Status = domain.Status(status)
	return lead, nil
}

// ListLeadsParams filters a lead listing.
type ListLeadsParams struct {
	Status    *domain.Status
	CompanyID *uuid.UUID
	Limit     int
	Offset    int
}

// leadListFilter builds the WHERE clause shared by the listing and its
// count so both queries always see the same rows.
func leadListFilter(params ListLeadsParams) (string, []interface{}) {
	whereClause := "TRUE"
	args := []interface{}{}

	if params.Status != nil {
		args = append(args, string(*params.Status))
		whereClause += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if params.CompanyID != nil {
		args = append(args, *params.CompanyID)
		whereClause += fmt.Sprintf(" AND company_id = $%d", len(args))
	}
	return whereClause, args
}

// ListLeads lists leads newest first with optional status and company
// filters, returning the page and the filtered total.
func (r *Repo) ListLeads(ctx context.Context, params ListLeadsParams) ([]domain.Lead, int, error) {
	whereClause, args := leadListFilter(params)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM leads WHERE %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	limitClause := fmt.Sprintf("LIMIT $%d", len(args))
	args = append(args, params.Offset)
	offsetClause := fmt.Sprintf("OFFSET $%d", len(args))

	query := fmt.Sprintf(`
        SELECT id, company_id, contact_id, opportunity_type, status, qualification, notes, created_at, updated_at
        FROM leads
        WHERE %s
        ORDER BY created_at DESC
        %s %s`, whereClause, limitClause, offsetClause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Lead, 0)
	for rows.Next() {
		var lead domain.Lead
		var status string
		if err := rows.Scan(
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
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		lead.Status = domain.Status(status)
		items = append(items, lead)
	}
	return items, total, rows.Err()
}

// UpdateLeadNotes replaces a lead's free-form notes. Notes sit outside the
// audited state, so this bypasses the execution engine.
func (r *Repo) UpdateLeadNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	tag, err := r.pool.Exec(ctx, `
        UPDATE leads SET notes = $2, updated_at = now()
        WHERE id = $1`, id, notes)
	if err != nil {
		return fmt.Errorf("update lead notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}
	return nil
}

// ListOpenLeadIDs returns every non-terminal lead, oldest first, for the
// background health sweep.
func (r *Repo) ListOpenLeadIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `
        SELECT id
        FROM leads
        WHERE status NOT IN ('closed_won', 'closed_lost')
        ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list open leads: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan open lead id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
