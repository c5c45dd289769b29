package usecase

import (
	"strings"
	"time"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/pkg/utils"
)

type dateClassKey struct {
	date  string
	class string
}

// SourceIndex groups one Catering snapshot by flight date and by
// (flight date, normalized class). Lists keep snapshot order.
// Rows without a class appear only in the date index.
type SourceIndex struct {
	byDate         map[string][]*entity.CateringInvoice
	byDateAndClass map[dateClassKey][]*entity.CateringInvoice
}

// NormalizeClass trims and upper-cases a cabin class code
func NormalizeClass(class string) string {
	return strings.ToUpper(strings.TrimSpace(class))
}

// NewSourceIndex builds both indices from records
func NewSourceIndex(records []*entity.CateringInvoice) *SourceIndex {
	ix := &SourceIndex{
		byDate:         make(map[string][]*entity.CateringInvoice),
		byDateAndClass: make(map[dateClassKey][]*entity.CateringInvoice),
	}
	for _, c := range records {
		date := utils.DateKey(c.FlightDate)
		ix.byDate[date] = append(ix.byDate[date], c)

		class := NormalizeClass(c.Class)
		if class == "" {
			continue
		}
		key := dateClassKey{date: date, class: class}
		ix.byDateAndClass[key] = append(ix.byDateAndClass[key], c)
	}
	return ix
}

// ByDate returns the records sharing a flight date
func (ix *SourceIndex) ByDate(date *time.Time) []*entity.CateringInvoice {
	return ix.byDate[utils.DateKey(date)]
}

// ByDateAndClass returns the records sharing a flight date and normalized class
func (ix *SourceIndex) ByDateAndClass(date *time.Time, class string) []*entity.CateringInvoice {
	return ix.byDateAndClass[dateClassKey{date: utils.DateKey(date), class: NormalizeClass(class)}]
}
