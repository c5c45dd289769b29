package repository

import (
	"context"

	"invoice-reconciliation-service/internal/domain/entity"
)

// AirInvoiceRepository defines read access to the Air ledger
type AirInvoiceRepository interface {
	// ListActive returns active, non-deleted invoices in source order
	ListActive(ctx context.Context) ([]*entity.AirInvoice, error)
	// ListAll returns every invoice regardless of flags, in source order
	ListAll(ctx context.Context) ([]*entity.AirInvoice, error)
}
