package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"
	"invoice-reconciliation-service/pkg/logger"
	"invoice-reconciliation-service/pkg/utils"

	"github.com/shopspring/decimal"
)

// AmountTolerance is the largest Air/Catering amount gap still treated as equal
const AmountTolerance = 0.01

// DiscrepancyCalculator compares the quantities and amounts of matched rows
type DiscrepancyCalculator struct {
	reconciliationRepo repository.ReconciliationRepository
	logger             logger.Logger
}

// NewDiscrepancyCalculator creates a new discrepancy calculator
func NewDiscrepancyCalculator(reconciliationRepo repository.ReconciliationRepository, logger logger.Logger) *DiscrepancyCalculator {
	return &DiscrepancyCalculator{
		reconciliationRepo: reconciliationRepo,
		logger:             logger,
	}
}

// ApplyDifferences sets DifQty, QtyDif, DifPrice and AmountDif on a matched row.
// Differences are signed Catering minus Air.
func ApplyDifferences(r *entity.ReconciliationRecord) {
	airQty := utils.SafeInt(r.AirQty, 0)
	catQty := utils.SafeInt(r.CatQty, 0)
	if airQty != catQty {
		r.DifQty = entity.Yes
		r.QtyDif = strconv.Itoa(catQty - airQty)
	} else {
		r.DifQty = entity.No
		r.QtyDif = entity.DefaultQtyDif
	}

	airAmt := utils.SafeFloat(r.AirSubTotal, 0)
	catAmt := utils.SafeFloat(r.CatTotalAmount, 0)
	if math.Abs(airAmt-catAmt) > AmountTolerance {
		r.DifPrice = entity.Yes
		r.AmountDif = formatAmount(catAmt - airAmt)
	} else {
		r.DifPrice = entity.No
		r.AmountDif = entity.DefaultAmountDif
	}
}

// formatAmount renders v with two decimals, rounding the exact binary value
// so that only true binary ties go to the even digit
func formatAmount(v float64) string {
	return decimal.RequireFromString(strconv.FormatFloat(v, 'f', 2, 64)).StringFixed(2)
}

// Annotate applies differences to the matched rows of records and returns
// how many rows it touched. One-sided rows keep their defaults.
func (d *DiscrepancyCalculator) Annotate(records []*entity.ReconciliationRecord) int {
	annotated := 0
	for _, r := range records {
		if !r.IsMatched() {
			continue
		}
		ApplyDifferences(r)
		annotated++
	}
	return annotated
}

// ComputeDifferences recomputes the discrepancy fields of every matched row
// currently stored and persists them
func (d *DiscrepancyCalculator) ComputeDifferences(ctx context.Context) (int, error) {
	records, err := d.reconciliationRepo.FindMatched(ctx)
	if err != nil {
		d.logger.Error("Failed to load matched records", "error", err)
		return 0, fmt.Errorf("failed to load matched records: %w", err)
	}

	annotated := d.Annotate(records)
	if annotated == 0 {
		return 0, nil
	}

	if err := d.reconciliationRepo.UpdateDifferences(ctx, records); err != nil {
		d.logger.Error("Failed to persist differences", "count", annotated, "error", err)
		return 0, fmt.Errorf("failed to persist differences: %w", err)
	}

	d.logger.Info("Differences computed", "count", annotated)
	return annotated, nil
}
