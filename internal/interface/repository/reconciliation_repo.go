package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"
	"invoice-reconciliation-service/pkg/utils"

	"gorm.io/gorm"
)

const defaultInsertBatchSize = 500

// GormReconciliationRepository implements the ReconciliationRepository interface
type GormReconciliationRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewGormReconciliationRepository creates a new GORM reconciliation repository.
// batchSize bounds the rows per INSERT in ReplaceAll and the ids per UPDATE in UpdateDifferences.
func NewGormReconciliationRepository(db *gorm.DB, batchSize int) repository.ReconciliationRepository {
	if batchSize <= 0 {
		batchSize = defaultInsertBatchSize
	}
	return &GormReconciliationRepository{
		db:        db,
		batchSize: batchSize,
	}
}

// ReconciliationRecords GORM model for database mapping
type ReconciliationRecords struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	Seq    int    `gorm:"column:seq;index"`
	RowKey string `gorm:"column:row_key;size:64;index"`

	AirSourceID      *uint      `gorm:"column:air_source_id"`
	AirSupplier      string     `gorm:"column:air_supplier"`
	AirFlightDate    *time.Time `gorm:"column:air_flight_date;type:date;index"`
	AirFlightNumber  string     `gorm:"column:air_flight_number;index"`
	AirClass         string     `gorm:"column:air_class"`
	AirServiceCode   string     `gorm:"column:air_service_code"`
	AirQty           string     `gorm:"column:air_qty"`
	AirUnitPrice     string     `gorm:"column:air_unit_price"`
	AirSubTotal      string     `gorm:"column:air_sub_total"`
	AirTax           string     `gorm:"column:air_tax"`
	AirTotalInclTax  string     `gorm:"column:air_total_incl_tax"`
	AirCurrency      string     `gorm:"column:air_currency"`
	AirInvoiceStatus string     `gorm:"column:air_invoice_status"`
	AirPaymentStatus string     `gorm:"column:air_payment_status"`

	CatSourceID        *uint      `gorm:"column:cat_source_id"`
	CatFacility        string     `gorm:"column:cat_facility"`
	CatFlightDate      *time.Time `gorm:"column:cat_flight_date;type:date"`
	CatFlightNumber    string     `gorm:"column:cat_flight_number"`
	CatClass           string     `gorm:"column:cat_class"`
	CatItemGroup       string     `gorm:"column:cat_item_group"`
	CatItemCode        string     `gorm:"column:cat_item_code"`
	CatItemDescription string     `gorm:"column:cat_item_description"`
	CatBillingCode     string     `gorm:"column:cat_billing_code"`
	CatSubBillingCode  string     `gorm:"column:cat_sub_billing_code"`
	CatUnit            string     `gorm:"column:cat_unit"`
	CatQty             string     `gorm:"column:cat_qty"`
	CatUnitPrice       string     `gorm:"column:cat_unit_price"`
	CatTotalAmount     string     `gorm:"column:cat_total_amount"`

	Air       string `gorm:"column:air;size:3;index"`
	Cat       string `gorm:"column:cat;size:3;index"`
	DifQty    string `gorm:"column:dif_qty;size:3"`
	DifPrice  string `gorm:"column:dif_price;size:3"`
	QtyDif    string `gorm:"column:qty_dif"`
	AmountDif string `gorm:"column:amount_dif"`

	CreatedAt time.Time
}

// TableName overrides the default table name
func (ReconciliationRecords) TableName() string {
	return "reconciliation_records"
}

// Count returns the number of rows in the reconciliation table
func (r *GormReconciliationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	result := r.db.WithContext(ctx).Model(&ReconciliationRecords{}).Count(&n)
	return n, result.Error
}

// ReplaceAll deletes every row and inserts records inside one transaction,
// so readers see either the previous table or the new one
func (r *GormReconciliationRepository) ReplaceAll(ctx context.Context, records []*entity.ReconciliationRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ReconciliationRecords{}).Error; err != nil {
			return fmt.Errorf("failed to clear reconciliation table: %w", err)
		}
		if len(records) == 0 {
			return nil
		}

		rows := make([]ReconciliationRecords, 0, len(records))
		for _, record := range records {
			rows = append(rows, fromReconciliationRecord(record))
		}
		if err := tx.CreateInBatches(&rows, r.batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert reconciliation records: %w", err)
		}
		return nil
	})
}

// FindPaged returns rows satisfying all predicates, ordered by emission order
func (r *GormReconciliationRepository) FindPaged(ctx context.Context, predicates []entity.Predicate, limit, offset int) ([]*entity.ReconciliationRecord, error) {
	query, err := applyPredicates(r.db.WithContext(ctx).Model(&ReconciliationRecords{}), predicates)
	if err != nil {
		return nil, err
	}

	var rows []ReconciliationRecords
	result := query.Order("seq ASC").Limit(limit).Offset(offset).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return toReconciliationRecords(rows), nil
}

// CountFiltered counts rows satisfying all predicates
func (r *GormReconciliationRepository) CountFiltered(ctx context.Context, predicates []entity.Predicate) (int64, error) {
	query, err := applyPredicates(r.db.WithContext(ctx).Model(&ReconciliationRecords{}), predicates)
	if err != nil {
		return 0, err
	}

	var n int64
	result := query.Count(&n)
	return n, result.Error
}

// FindMatched returns every row billed by both ledgers
func (r *GormReconciliationRepository) FindMatched(ctx context.Context) ([]*entity.ReconciliationRecord, error) {
	var rows []ReconciliationRecords
	result := r.db.WithContext(ctx).
		Scopes(bucketScope(entity.BucketMatched)).
		Order("seq ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return toReconciliationRecords(rows), nil
}

// differenceGroup is a set of rows sharing the same discrepancy values
type differenceGroup struct {
	DifQty    string
	DifPrice  string
	QtyDif    string
	AmountDif string
	IDs       []string
}

// groupDifferences buckets records by their discrepancy values, keeping
// first-seen order for both groups and ids
func groupDifferences(records []*entity.ReconciliationRecord) []*differenceGroup {
	type key struct{ difQty, difPrice, qtyDif, amountDif string }
	index := make(map[key]*differenceGroup)
	var groups []*differenceGroup
	for _, record := range records {
		k := key{record.DifQty, record.DifPrice, record.QtyDif, record.AmountDif}
		g, ok := index[k]
		if !ok {
			g = &differenceGroup{DifQty: k.difQty, DifPrice: k.difPrice, QtyDif: k.qtyDif, AmountDif: k.amountDif}
			index[k] = g
			groups = append(groups, g)
		}
		g.IDs = append(g.IDs, record.ID)
	}
	return groups
}

// updateGroup sets the discrepancy columns of ids to the values of g
func updateGroup(tx *gorm.DB, g *differenceGroup, ids []string) *gorm.DB {
	return tx.Model(&ReconciliationRecords{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"dif_qty":    g.DifQty,
			"dif_price":  g.DifPrice,
			"qty_dif":    g.QtyDif,
			"amount_dif": g.AmountDif,
		})
}

// UpdateDifferences writes the discrepancy columns of records in one
// transaction, issuing one UPDATE per distinct set of values and batch of ids
func (r *GormReconciliationRepository) UpdateDifferences(ctx context.Context, records []*entity.ReconciliationRecord) error {
	groups := groupDifferences(records)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, g := range groups {
			for start := 0; start < len(g.IDs); start += r.batchSize {
				end := start + r.batchSize
				if end > len(g.IDs) {
					end = len(g.IDs)
				}
				if result := updateGroup(tx, g, g.IDs[start:end]); result.Error != nil {
					return fmt.Errorf("failed to update differences (%s/%s): %w", g.DifQty, g.DifPrice, result.Error)
				}
			}
		}
		return nil
	})
}

// ReadConsistent runs fn inside a read-only REPEATABLE READ transaction
func (r *GormReconciliationRepository) ReadConsistent(ctx context.Context, fn func(repo repository.ReconciliationRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormReconciliationRepository{db: tx, batchSize: r.batchSize})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

// applyPredicates adds one WHERE conjunct per predicate
func applyPredicates(db *gorm.DB, predicates []entity.Predicate) (*gorm.DB, error) {
	scopes := make([]func(*gorm.DB) *gorm.DB, 0, len(predicates))
	for _, p := range predicates {
		scope, err := predicateScope(p)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, scope)
	}
	return db.Scopes(scopes...), nil
}

func predicateScope(p entity.Predicate) (func(*gorm.DB) *gorm.DB, error) {
	switch v := p.(type) {
	case entity.BucketPredicate:
		return bucketScope(v.Bucket), nil
	case entity.DateRangePredicate:
		return func(db *gorm.DB) *gorm.DB {
			if v.From != nil {
				db = db.Where("air_flight_date >= ?", v.From.Format(utils.DATE_LAYOUT))
			}
			if v.To != nil {
				db = db.Where("air_flight_date <= ?", v.To.Format(utils.DATE_LAYOUT))
			}
			return db
		}, nil
	case entity.FlightPredicate:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("air_flight_number = ?", v.FlightNumber)
		}, nil
	case entity.ItemPredicate:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("cat_item_description LIKE ?", "%"+escapeLike(v.Substring)+"%")
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", repository.ErrUnsupportedPredicate, p)
	}
}

func bucketScope(bucket entity.Bucket) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch bucket {
		case entity.BucketMatched, entity.BucketBoth:
			return db.Where("air = ? AND cat = ?", entity.Yes, entity.Yes)
		case entity.BucketDiscrepancies:
			return db.Where("air = ? AND cat = ?", entity.Yes, entity.Yes).
				Where("(dif_qty = ? OR dif_price = ?)", entity.Yes, entity.Yes)
		case entity.BucketQtyDiscrepancy:
			return db.Where("air = ? AND cat = ? AND dif_qty = ?", entity.Yes, entity.Yes, entity.Yes)
		case entity.BucketPriceDiscrepancy:
			return db.Where("air = ? AND cat = ? AND dif_price = ?", entity.Yes, entity.Yes, entity.Yes)
		case entity.BucketAirOnly:
			return db.Where("air = ? AND cat = ?", entity.Yes, entity.No)
		case entity.BucketCatOnly:
			return db.Where("air = ? AND cat = ?", entity.No, entity.Yes)
		default:
			return db
		}
	}
}

// escapeLike makes LIKE wildcards in s match literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func fromReconciliationRecord(r *entity.ReconciliationRecord) ReconciliationRecords {
	return ReconciliationRecords{
		ID:     r.ID,
		Seq:    r.Seq,
		RowKey: r.RowKey,

		AirSourceID:      r.AirSourceID,
		AirSupplier:      r.AirSupplier,
		AirFlightDate:    r.AirFlightDate,
		AirFlightNumber:  r.AirFlightNumber,
		AirClass:         r.AirClass,
		AirServiceCode:   r.AirServiceCode,
		AirQty:           r.AirQty,
		AirUnitPrice:     r.AirUnitPrice,
		AirSubTotal:      r.AirSubTotal,
		AirTax:           r.AirTax,
		AirTotalInclTax:  r.AirTotalInclTax,
		AirCurrency:      r.AirCurrency,
		AirInvoiceStatus: r.AirInvoiceStatus,
		AirPaymentStatus: r.AirPaymentStatus,

		CatSourceID:        r.CatSourceID,
		CatFacility:        r.CatFacility,
		CatFlightDate:      r.CatFlightDate,
		CatFlightNumber:    r.CatFlightNumber,
		CatClass:           r.CatClass,
		CatItemGroup:       r.CatItemGroup,
		CatItemCode:        r.CatItemCode,
		CatItemDescription: r.CatItemDescription,
		CatBillingCode:     r.CatBillingCode,
		CatSubBillingCode:  r.CatSubBillingCode,
		CatUnit:            r.CatUnit,
		CatQty:             r.CatQty,
		CatUnitPrice:       r.CatUnitPrice,
		CatTotalAmount:     r.CatTotalAmount,

		Air:       r.Air,
		Cat:       r.Cat,
		DifQty:    r.DifQty,
		DifPrice:  r.DifPrice,
		QtyDif:    r.QtyDif,
		AmountDif: r.AmountDif,

		CreatedAt: r.CreatedAt,
	}
}

func toReconciliationRecords(rows []ReconciliationRecords) []*entity.ReconciliationRecord {
	entities := make([]*entity.ReconciliationRecord, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, &entity.ReconciliationRecord{
			ID:     row.ID,
			Seq:    row.Seq,
			RowKey: row.RowKey,

			AirSourceID:      row.AirSourceID,
			AirSupplier:      row.AirSupplier,
			AirFlightDate:    row.AirFlightDate,
			AirFlightNumber:  row.AirFlightNumber,
			AirClass:         row.AirClass,
			AirServiceCode:   row.AirServiceCode,
			AirQty:           row.AirQty,
			AirUnitPrice:     row.AirUnitPrice,
			AirSubTotal:      row.AirSubTotal,
			AirTax:           row.AirTax,
			AirTotalInclTax:  row.AirTotalInclTax,
			AirCurrency:      row.AirCurrency,
			AirInvoiceStatus: row.AirInvoiceStatus,
			AirPaymentStatus: row.AirPaymentStatus,

			CatSourceID:        row.CatSourceID,
			CatFacility:        row.CatFacility,
			CatFlightDate:      row.CatFlightDate,
			CatFlightNumber:    row.CatFlightNumber,
			CatClass:           row.CatClass,
			CatItemGroup:       row.CatItemGroup,
			CatItemCode:        row.CatItemCode,
			CatItemDescription: row.CatItemDescription,
			CatBillingCode:     row.CatBillingCode,
			CatSubBillingCode:  row.CatSubBillingCode,
			CatUnit:            row.CatUnit,
			CatQty:             row.CatQty,
			CatUnitPrice:       row.CatUnitPrice,
			CatTotalAmount:     row.CatTotalAmount,

			Air:       row.Air,
			Cat:       row.Cat,
			DifQty:    row.DifQty,
			DifPrice:  row.DifPrice,
			QtyDif:    row.QtyDif,
			AmountDif: row.AmountDif,

			CreatedAt: row.CreatedAt,
		})
	}
	return entities
}

// AutoMigrate creates or updates the tables owned by this service
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&AirInvoices{}, &CateringInvoices{}, &ReconciliationRecords{})
}
