package repository

import (
	"context"

	"invoice-reconciliation-service/internal/domain/entity"
)

// RebuildRunRepository defines the audit log of populate requests
type RebuildRunRepository interface {
	Save(ctx context.Context, run *entity.RebuildRun) error
	FindRecent(ctx context.Context, limit int) ([]*entity.RebuildRun, error)
}

// RebuildEventPublisher notifies downstream consumers about committed rebuilds
type RebuildEventPublisher interface {
	PublishRebuildCompleted(ctx context.Context, event *entity.RebuildEvent) error
}

// ReleaseFunc releases a lock obtained from a RebuildLocker
type ReleaseFunc func(ctx context.Context) error

// RebuildLocker serializes rebuilds across processes
type RebuildLocker interface {
	// Obtain returns ErrLockNotObtained when another rebuild holds the lock
	Obtain(ctx context.Context) (ReleaseFunc, error)
}
