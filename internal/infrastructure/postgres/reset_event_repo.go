package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ErlanBelekov/account-recovery/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResetEventRepository is the append-only audit trail of reset attempts.
type ResetEventRepository struct {
	pool *pgxpool.Pool
}

func NewResetEventRepository(pool *pgxpool.Pool) *ResetEventRepository {
	return &ResetEventRepository{pool: pool}
}

func (r *ResetEventRepository) Record(ctx context.Context, event *domain.ResetEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reset_events (email, event, client_ip, request_id) VALUES ($1, $2, $3, $4)`,
		event.Email, event.Event, event.ClientIP, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("record reset event: %w", err)
	}
	return nil
}

// PruneOlderThan removes audit rows created before cutoff and returns how
// many were deleted. Run periodically from the server's cron.
func (r *ResetEventRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM reset_events WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("prune reset events: %w", err)
	}
	return tag.RowsAffected(), nil
}
