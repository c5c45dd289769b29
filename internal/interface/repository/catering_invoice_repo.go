package repository

import (
	"context"
	"time"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormCateringInvoiceRepository implements the CateringInvoiceRepository interface
type GormCateringInvoiceRepository struct {
	db *gorm.DB
}

// NewGormCateringInvoiceRepository creates a new GORM catering invoice repository
func NewGormCateringInvoiceRepository(db *gorm.DB) repository.CateringInvoiceRepository {
	return &GormCateringInvoiceRepository{
		db: db,
	}
}

// CateringInvoices GORM model for database mapping
type CateringInvoices struct {
	ID              uint       `gorm:"primaryKey"`
	Facility        string     `gorm:"column:facility"`
	FlightDate      *time.Time `gorm:"column:flight_date;type:date;index"`
	FlightNumber    string     `gorm:"column:flight_number;index"`
	Class           string     `gorm:"column:class"`
	ItemGroup       string     `gorm:"column:item_group"`
	ItemCode        string     `gorm:"column:item_code"`
	ItemDescription string     `gorm:"column:item_description"`
	BillingCode     string     `gorm:"column:billing_code"`
	SubBillingCode  string     `gorm:"column:sub_billing_code"`
	Unit            string     `gorm:"column:unit"`
	Quantity        string     `gorm:"column:quantity"`
	UnitPrice       string     `gorm:"column:unit_price"`
	TotalAmount     string     `gorm:"column:total_amount"`
	IsActive        *bool      `gorm:"column:is_active"`
	IsDeleted       *bool      `gorm:"column:is_deleted"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName overrides the default table name
func (CateringInvoices) TableName() string {
	return "catering_invoices"
}

// ListActive returns active, non-deleted catering invoices ordered by id
func (r *GormCateringInvoiceRepository) ListActive(ctx context.Context) ([]*entity.CateringInvoice, error) {
	var rows []CateringInvoices
	result := r.db.WithContext(ctx).
		Where("is_active = ? AND is_deleted = ?", true, false).
		Order("id ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return toCateringInvoices(rows), nil
}

// ListAll returns every catering invoice ordered by id
func (r *GormCateringInvoiceRepository) ListAll(ctx context.Context) ([]*entity.CateringInvoice, error) {
	var rows []CateringInvoices
	result := r.db.WithContext(ctx).Order("id ASC").Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return toCateringInvoices(rows), nil
}

func toCateringInvoices(rows []CateringInvoices) []*entity.CateringInvoice {
	entities := make([]*entity.CateringInvoice, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, &entity.CateringInvoice{
			ID:              row.ID,
			Facility:        row.Facility,
			FlightDate:      row.FlightDate,
			FlightNumber:    row.FlightNumber,
			Class:           row.Class,
			ItemGroup:       row.ItemGroup,
			ItemCode:        row.ItemCode,
			ItemDescription: row.ItemDescription,
			BillingCode:     row.BillingCode,
			SubBillingCode:  row.SubBillingCode,
			Unit:            row.Unit,
			Quantity:        row.Quantity,
			UnitPrice:       row.UnitPrice,
			TotalAmount:     row.TotalAmount,
			IsActive:        boolValue(row.IsActive),
			IsDeleted:       boolValue(row.IsDeleted),
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
		})
	}
	return entities
}
