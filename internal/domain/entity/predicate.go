package entity

import (
	"strings"
	"time"

	"invoice-reconciliation-service/pkg/utils"
)

// Bucket is the coarse match-status filter
type Bucket string

const (
	BucketAll              Bucket = "all"
	BucketMatched          Bucket = "matched"
	BucketBoth             Bucket = "both"
	BucketDiscrepancies    Bucket = "discrepancies"
	BucketQtyDiscrepancy   Bucket = "qty_discrepancy"
	BucketPriceDiscrepancy Bucket = "price_discrepancy"
	BucketAirOnly          Bucket = "air_only"
	BucketCatOnly          Bucket = "cat_only"
)

var knownBuckets = map[Bucket]struct{}{
	BucketAll:              {},
	BucketMatched:          {},
	BucketBoth:             {},
	BucketDiscrepancies:    {},
	BucketQtyDiscrepancy:   {},
	BucketPriceDiscrepancy: {},
	BucketAirOnly:          {},
	BucketCatOnly:          {},
}

// ParseBucket normalizes a filter value. Unknown or empty values map to
// BucketAll and ok is false.
func ParseBucket(value string) (Bucket, bool) {
	b := Bucket(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := knownBuckets[b]; !ok {
		return BucketAll, false
	}
	return b, true
}

// Predicate is one conjunct of a reconciliation query. Repositories translate
// each concrete predicate into their own query language; Matches is the
// reference semantics used by in-memory evaluation.
type Predicate interface {
	Matches(r *ReconciliationRecord) bool
}

// BucketPredicate restricts rows by presence and discrepancy flags
type BucketPredicate struct {
	Bucket Bucket
}

func (p BucketPredicate) Matches(r *ReconciliationRecord) bool {
	switch p.Bucket {
	case BucketMatched, BucketBoth:
		return r.IsMatched()
	case BucketDiscrepancies:
		return r.IsMatched() && (r.DifQty == Yes || r.DifPrice == Yes)
	case BucketQtyDiscrepancy:
		return r.IsMatched() && r.DifQty == Yes
	case BucketPriceDiscrepancy:
		return r.IsMatched() && r.DifPrice == Yes
	case BucketAirOnly:
		return r.Air == Yes && r.Cat == No
	case BucketCatOnly:
		return r.Air == No && r.Cat == Yes
	default:
		return true
	}
}

// DateRangePredicate is an inclusive calendar-day range on the Air flight date.
// A nil bound leaves that side open. Rows without an Air flight date never match.
type DateRangePredicate struct {
	From *time.Time
	To   *time.Time
}

func (p DateRangePredicate) Matches(r *ReconciliationRecord) bool {
	if r.AirFlightDate == nil {
		return false
	}
	day := utils.TruncateToDay(*r.AirFlightDate)
	if p.From != nil && day.Before(utils.TruncateToDay(*p.From)) {
		return false
	}
	if p.To != nil && day.After(utils.TruncateToDay(*p.To)) {
		return false
	}
	return true
}

// FlightPredicate is an exact match on the Air flight number
type FlightPredicate struct {
	FlightNumber string
}

func (p FlightPredicate) Matches(r *ReconciliationRecord) bool {
	return r.AirFlightNumber == p.FlightNumber
}

// ItemPredicate is a case-sensitive substring match on the Catering item description
type ItemPredicate struct {
	Substring string
}

func (p ItemPredicate) Matches(r *ReconciliationRecord) bool {
	return strings.Contains(r.CatItemDescription, p.Substring)
}

// MatchesAll reports whether r satisfies every predicate
func MatchesAll(r *ReconciliationRecord, predicates []Predicate) bool {
	for _, p := range predicates {
		if !p.Matches(r) {
			return false
		}
	}
	return true
}
