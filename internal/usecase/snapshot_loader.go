package usecase

import (
	"context"
	"fmt"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"
	"invoice-reconciliation-service/pkg/logger"
)

// SnapshotLoader fetches the source ledgers for one rebuild. When the
// active-only fetch is empty it falls back to the unfiltered ledger, since
// imported rows may carry unset flags.
type SnapshotLoader struct {
	airRepo      repository.AirInvoiceRepository
	cateringRepo repository.CateringInvoiceRepository
	logger       logger.Logger
}

// NewSnapshotLoader creates a new snapshot loader
func NewSnapshotLoader(
	airRepo repository.AirInvoiceRepository,
	cateringRepo repository.CateringInvoiceRepository,
	logger logger.Logger,
) *SnapshotLoader {
	return &SnapshotLoader{
		airRepo:      airRepo,
		cateringRepo: cateringRepo,
		logger:       logger,
	}
}

// LoadAir returns the Air snapshot in source order
func (l *SnapshotLoader) LoadAir(ctx context.Context) ([]*entity.AirInvoice, error) {
	records, err := l.airRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active air invoices: %w", err)
	}
	if len(records) > 0 {
		return records, nil
	}

	l.logger.Warn("No active air invoices, falling back to unfiltered ledger")
	records, err = l.airRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load air invoices: %w", err)
	}
	return records, nil
}

// LoadCatering returns the Catering snapshot in source order
func (l *SnapshotLoader) LoadCatering(ctx context.Context) ([]*entity.CateringInvoice, error) {
	records, err := l.cateringRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active catering invoices: %w", err)
	}
	if len(records) > 0 {
		return records, nil
	}

	l.logger.Warn("No active catering invoices, falling back to unfiltered ledger")
	records, err = l.cateringRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catering invoices: %w", err)
	}
	return records, nil
}
