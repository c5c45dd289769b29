package repository

import (
	"context"

	"invoice-reconciliation-service/internal/domain/entity"
)

// ReconciliationRepository defines storage operations for the unified table
type ReconciliationRepository interface {
	Count(ctx context.Context) (int64, error)
	// ReplaceAll deletes every row and inserts records in a single transaction
	ReplaceAll(ctx context.Context, records []*entity.ReconciliationRecord) error
	// FindPaged returns rows satisfying all predicates, ordered by Seq
	FindPaged(ctx context.Context, predicates []entity.Predicate, limit, offset int) ([]*entity.ReconciliationRecord, error)
	CountFiltered(ctx context.Context, predicates []entity.Predicate) (int64, error)
	FindMatched(ctx context.Context) ([]*entity.ReconciliationRecord, error)
	// UpdateDifferences persists the discrepancy fields of the given rows
	UpdateDifferences(ctx context.Context, records []*entity.ReconciliationRecord) error
	// ReadConsistent runs fn against a repository bound to one snapshot of the
	// table, so reads inside fn never observe a concurrent ReplaceAll
	ReadConsistent(ctx context.Context, fn func(repo ReconciliationRepository) error) error
}
