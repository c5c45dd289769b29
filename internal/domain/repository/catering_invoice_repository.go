package repository

import (
	"context"

	"invoice-reconciliation-service/internal/domain/entity"
)

// CateringInvoiceRepository defines read access to the Catering ledger
type CateringInvoiceRepository interface {
	ListActive(ctx context.Context) ([]*entity.CateringInvoice, error)
	ListAll(ctx context.Context) ([]*entity.CateringInvoice, error)
}
