package repository

import (
	"context"
	"time"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirInvoiceRepository implements the AirInvoiceRepository interface
type GormAirInvoiceRepository struct {
	db *gorm.DB
}

// NewGormAirInvoiceRepository creates a new GORM air invoice repository
func NewGormAirInvoiceRepository(db *gorm.DB) repository.AirInvoiceRepository {
	return &GormAirInvoiceRepository{
		db: db,
	}
}

// AirInvoices GORM model for database mapping.
// Flags are nullable because the import does not always set them.
type AirInvoices struct {
	ID            uint       `gorm:"primaryKey"`
	Supplier      string     `gorm:"column:supplier"`
	FlightDate    *time.Time `gorm:"column:flight_date;type:date;index"`
	FlightNumber  string     `gorm:"column:flight_number;index"`
	Class         string     `gorm:"column:class"`
	ServiceCode   string     `gorm:"column:service_code"`
	Quantity      string     `gorm:"column:quantity"`
	UnitPrice     string     `gorm:"column:unit_price"`
	SubTotal      string     `gorm:"column:sub_total"`
	Tax           string     `gorm:"column:tax"`
	TotalInclTax  string     `gorm:"column:total_incl_tax"`
	Currency      string     `gorm:"column:currency"`
	InvoiceStatus string     `gorm:"column:invoice_status"`
	PaymentStatus string     `gorm:"column:payment_status"`
	IsActive      *bool      `gorm:"column:is_active"`
	IsDeleted     *bool      `gorm:"column:is_deleted"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the default table name
func (AirInvoices) TableName() string {
	return "air_invoices"
}

// ListActive returns active, non-deleted air invoices ordered by id
func (r *GormAirInvoiceRepository) ListActive(ctx context.Context) ([]*entity.AirInvoice, error) {
	var rows []AirInvoices
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND is_deleted = ?", true, false).
		Order("id ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return toAirInvoices(rows), nil
}

// ListAll returns every air invoice ordered by id
func (r *GormAirInvoiceRepository) ListAll(ctx context.Context) ([]*entity.AirInvoice, error) {
	var rows []AirInvoices
	result := r.db.WithContext(ctx).Order("id ASC").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return toAirInvoices(rows), nil
}

func toAirInvoices(rows []AirInvoices) []*entity.AirInvoice {
	entities := make([]*entity.AirInvoice, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, &entity.AirInvoice{
			ID:            row.ID,
			Supplier:      row.Supplier,
			FlightDate:    row.FlightDate,
			FlightNumber:  row.FlightNumber,
			Class:         row.Class,
			ServiceCode:   row.ServiceCode,
			Quantity:      row.Quantity,
			UnitPrice:     row.UnitPrice,
			SubTotal:      row.SubTotal,
			Tax:           row.Tax,
			TotalInclTax:  row.TotalInclTax,
			Currency:      row.Currency,
			InvoiceStatus: row.InvoiceStatus,
			PaymentStatus: row.PaymentStatus,
			IsActive:      boolValue(row.IsActive),
			IsDeleted:     boolValue(row.IsDeleted),
			CreatedAt:     row.CreatedAt,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return entities
}

func boolValue(b *bool) bool {
	return b != nil && *b
}
