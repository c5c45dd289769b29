package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/pkg/logger"
	"invoice-reconciliation-service/pkg/utils"

	"github.com/google/uuid"
)

// MatchResult is the full replacement set produced by one rebuild
type MatchResult struct {
	Records   []*entity.ReconciliationRecord
	Matched   int
	AirOnly   int
	CaterOnly int
}

type consumedSet map[uint]struct{}

func (s consumedSet) has(id uint) bool {
	_, ok := s[id]
	return ok
}

// matchState is threaded through the fold over the Air snapshot.
// cursors remember, per candidate list, how far the consumed prefix reaches.
type matchState struct {
	consumed consumedSet
	cursors  map[string]int
	result   *MatchResult
}

// take returns the earliest unconsumed candidate of rows and marks it consumed
func (s matchState) take(key string, rows []*entity.CateringInvoice) (*entity.CateringInvoice, matchState) {
	i := s.cursors[key]
	for i < len(rows) && s.consumed.has(rows[i].ID) {
		i++
	}
	s.cursors[key] = i
	if i == len(rows) {
		return nil, s
	}
	c := rows[i]
	s.consumed[c.ID] = struct{}{}
	return c, s
}

func (s matchState) emit(r *entity.ReconciliationRecord) matchState {
	r.Seq = len(s.result.Records)
	s.result.Records = append(s.result.Records, r)
	switch r.Origin() {
	case entity.OriginMatched:
		s.result.Matched++
	case entity.OriginAirOnly:
		s.result.AirOnly++
	default:
		s.result.CaterOnly++
	}
	return s
}

// MatchingEngine pairs Air invoices with Catering invoices.
// Tier 1 joins on (flight date, class), tier 2 on flight date alone.
// Ties go to the earliest Catering row in snapshot order.
type MatchingEngine struct {
	loader *SnapshotLoader
	logger logger.Logger
	newID  func() string
	now    func() time.Time
}

// NewMatchingEngine creates a new matching engine
func NewMatchingEngine(loader *SnapshotLoader, logger logger.Logger) *MatchingEngine {
	return &MatchingEngine{
		loader: loader,
		logger: logger,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// Rebuild loads both snapshots and matches them
func (e *MatchingEngine) Rebuild(ctx context.Context) (*MatchResult, error) {
	air, err := e.loader.LoadAir(ctx)
	if err != nil {
		return nil, err
	}
	catering, err := e.loader.LoadCatering(ctx)
	if err != nil {
		return nil, err
	}

	result := e.Match(air, catering)
	e.logger.Info("Matching completed",
		"air", len(air),
		"catering", len(catering),
		"matched", result.Matched,
		"airOnly", result.AirOnly,
		"caterOnly", result.CaterOnly)
	return result, nil
}

// Match produces one record per Air invoice followed by one record per
// unconsumed Catering invoice. It has no side effects.
func (e *MatchingEngine) Match(air []*entity.AirInvoice, catering []*entity.CateringInvoice) *MatchResult {
	index := NewSourceIndex(catering)
	createdAt := e.now().UTC()

	state := matchState{
		consumed: make(consumedSet, len(catering)),
		cursors:  make(map[string]int),
		result: &MatchResult{
			Records: make([]*entity.ReconciliationRecord, 0, len(air)+len(catering)),
		},
	}

	for _, a := range air {
		state = e.matchAir(state, index, a, createdAt)
	}

	for _, c := range catering {
		if state.consumed.has(c.ID) {
			continue
		}
		state = state.emit(e.newRecord(nil, c, createdAt))
	}

	return state.result
}

func (e *MatchingEngine) matchAir(state matchState, index *SourceIndex, a *entity.AirInvoice, createdAt time.Time) matchState {
	date := utils.DateKey(a.FlightDate)

	c, state := state.take("class:"+date+"|"+NormalizeClass(a.Class), index.ByDateAndClass(a.FlightDate, a.Class))
	if c == nil && a.FlightDate != nil {
		c, state = state.take("date:"+date, index.ByDate(a.FlightDate))
	}
	return state.emit(e.newRecord(a, c, createdAt))
}

// newRecord builds a matched, air-only or catering-only row depending on
// which side is present. Discrepancy fields start at their defaults.
func (e *MatchingEngine) newRecord(a *entity.AirInvoice, c *entity.CateringInvoice, createdAt time.Time) *entity.ReconciliationRecord {
	r := &entity.ReconciliationRecord{
		ID:        e.newID(),
		Air:       entity.No,
		Cat:       entity.No,
		DifQty:    entity.No,
		DifPrice:  entity.No,
		QtyDif:    entity.DefaultQtyDif,
		AmountDif: entity.DefaultAmountDif,
		CreatedAt: createdAt,
	}
	if a != nil {
		copyAir(r, a)
	}
	if c != nil {
		copyCatering(r, c)
	}
	r.RowKey = rowKey(r)
	return r
}

func copyAir(r *entity.ReconciliationRecord, a *entity.AirInvoice) {
	id := a.ID
	r.AirSourceID = &id
	r.AirSupplier = a.Supplier
	r.AirFlightDate = a.FlightDate
	r.AirFlightNumber = a.FlightNumber
	r.AirClass = a.Class
	r.AirServiceCode = a.ServiceCode
	r.AirQty = a.Quantity
	r.AirUnitPrice = a.UnitPrice
	r.AirSubTotal = a.SubTotal
	r.AirTax = a.Tax
	r.AirTotalInclTax = a.TotalInclTax
	r.AirCurrency = a.Currency
	r.AirInvoiceStatus = a.InvoiceStatus
	r.AirPaymentStatus = a.PaymentStatus
	r.Air = entity.Yes
}

func copyCatering(r *entity.ReconciliationRecord, c *entity.CateringInvoice) {
	id := c.ID
	r.CatSourceID = &id
	r.CatFacility = c.Facility
	r.CatFlightDate = c.FlightDate
	r.CatFlightNumber = c.FlightNumber
	r.CatClass = c.Class
	r.CatItemGroup = c.ItemGroup
	r.CatItemCode = c.ItemCode
	r.CatItemDescription = c.ItemDescription
	r.CatBillingCode = c.BillingCode
	r.CatSubBillingCode = c.SubBillingCode
	r.CatUnit = c.Unit
	r.CatQty = c.Quantity
	r.CatUnitPrice = c.UnitPrice
	r.CatTotalAmount = c.TotalAmount
	r.Cat = entity.Yes
}

// rowKey identifies a row by its origin and source ids, so it survives
// rebuilds of an unchanged snapshot while ID does not.
func rowKey(r *entity.ReconciliationRecord) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s",
		r.Origin(), formatID(r.AirSourceID), formatID(r.CatSourceID))))
	return hex.EncodeToString(sum[:])
}

func formatID(id *uint) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprint(*id)
}
