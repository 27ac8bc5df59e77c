package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/account-recovery/internal/domain"
)

type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
}

// ResetEventRepository records the audit trail of reset attempts.
// Writes are best-effort: callers log failures but never abort the flow.
type ResetEventRepository interface {
	Record(ctx context.Context, event *domain.ResetEvent) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
