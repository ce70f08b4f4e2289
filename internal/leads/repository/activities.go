package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadgen_backend/internal/leads/domain"
)

// ListActivities returns a lead's full audit trail, oldest first.
func (r *Repo) ListActivities(ctx context.Context, leadID uuid.UUID) ([]domain.Activity, error) {
	query := `
        SELECT id, lead_id, kind, metadata, actor_id, created_at
        FROM lead_activities
        WHERE lead_id = $1
        ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Activity, 0)
	for rows.Next() {
		var activity domain.Activity
		var kind string
		var raw []byte
		if err := rows.Scan(
			&activity.ID,
			&activity.LeadID,
			&kind,
			&raw,
			&activity.ActorID,
			&activity.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activity.Kind = domain.ActivityKind(kind)
		meta, err := domain.UnmarshalActivityMetadata(activity.Kind, raw)
		if err != nil {
			return nil, fmt.Errorf("decode activity metadata: %w", err)
		}
		activity.Metadata = meta
		items = append(items, activity)
	}
	return items, rows.Err()
}

// AvgStageDuration computes the mean dwell time historically observed for a
// status, measured from entering it to the next committed transition.
// Returns nil when fewer than three completed dwells exist.
func (r *Repo) AvgStageDuration(ctx context.Context, status domain.Status) (*time.Duration, error) {
	query := `
        WITH transitions AS (
            SELECT lead_id, created_at,
                   metadata->>'to' AS to_status,
                   LEAD(created_at) OVER (PARTITION BY lead_id ORDER BY created_at) AS next_at
            FROM lead_activities
            WHERE kind = 'status_changed'
        )
        SELECT COUNT(*), COALESCE(EXTRACT(EPOCH FROM AVG(next_at - created_at)), 0)
        FROM transitions
        WHERE to_status = $1 AND next_at IS NOT NULL`

	var count int
	var avgSeconds float64
	if err := r.pool.QueryRow(ctx, query, string(status)).Scan(&count, &avgSeconds); err != nil {
		return nil, fmt.Errorf("avg stage duration: %w", err)
	}
	if count < 3 {
		return nil, nil
	}
	avg := time.Duration(avgSeconds * float64(time.Second))
	return &avg, nil
}
