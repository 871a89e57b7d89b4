package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sinbc2003/cluade2/internal/domain"
)

// UsageRepository implements domain.UsageRepository
type UsageRepository struct {
	pool *pgxpool.Pool
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{pool: pool}
}

// Insert records one completed model turn. Duplicate events are allowed;
// the table has no uniqueness constraint beyond the id.
func (r *UsageRepository) Insert(ctx context.Context, event *domain.UsageEvent) error {
	query := `
		INSERT INTO usage_events (id, subject, model_name, timestamp, tokens_used)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Subject,
		event.ModelName,
		event.Timestamp,
		event.TokensUsed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage event: %w", err)
	}

	return nil
}

// List retrieves the most recent usage events, newest first.
func (r *UsageRepository) List(ctx context.Context, limit int) ([]domain.UsageEvent, error) {
	query := `
		SELECT id, subject, model_name, timestamp, tokens_used
		FROM usage_events
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage events: %w", err)
	}
	defer rows.Close()

	var events []domain.UsageEvent
	for rows.Next() {
		var e domain.UsageEvent
		if err := rows.Scan(
			&e.ID,
			&e.Subject,
			&e.ModelName,
			&e.Timestamp,
			&e.TokensUsed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate usage events: %w", err)
	}

	return events, nil
}

// DeleteOlderThan removes events recorded before the cutoff
func (r *UsageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM usage_events WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired usage events: %w", err)
	}
	return tag.RowsAffected(), nil
}
