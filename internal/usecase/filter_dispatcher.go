package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"
	"invoice-reconciliation-service/pkg/logger"
	"invoice-reconciliation-service/pkg/metrics"
	"invoice-reconciliation-service/pkg/utils"
)

// FilterDispatcher turns optional query parameters into a conjunction of
// predicates and serves paged views of the reconciliation table
type FilterDispatcher struct {
	reconciliationRepo repository.ReconciliationRepository
	metrics            *metrics.Metrics
	logger             logger.Logger
}

// NewFilterDispatcher creates a new filter dispatcher
func NewFilterDispatcher(
	reconciliationRepo repository.ReconciliationRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *FilterDispatcher {
	return &FilterDispatcher{
		reconciliationRepo: reconciliationRepo,
		metrics:            metrics,
		logger:             logger,
	}
}

// BuildPredicates composes the predicates for params. Every supplied filter
// contributes its own conjunct regardless of the bucket. Unparsable dates
// and blank strings are treated as absent.
func BuildPredicates(params entity.QueryParams) []entity.Predicate {
	var predicates []entity.Predicate

	if bucket, _ := entity.ParseBucket(params.Filter); bucket != entity.BucketAll {
		predicates = append(predicates, entity.BucketPredicate{Bucket: bucket})
	}

	var dateRange entity.DateRangePredicate
	if from, ok := parseOptionalDate(params.StartDate); ok {
		dateRange.From = &from
	}
	if to, ok := parseOptionalDate(params.EndDate); ok {
		dateRange.To = &to
	}
	if dateRange.From != nil || dateRange.To != nil {
		predicates = append(predicates, dateRange)
	}

	if present(params.FlightNumber) {
		predicates = append(predicates, entity.FlightPredicate{FlightNumber: *params.FlightNumber})
	}
	if present(params.ItemName) {
		predicates = append(predicates, entity.ItemPredicate{Substring: *params.ItemName})
	}

	return predicates
}

// Query returns one page of serialized rows. Limit and offset bounds are the
// caller's responsibility. On a repository failure the returned envelope
// carries the error and no data.
func (f *FilterDispatcher) Query(ctx context.Context, params entity.QueryParams) (*entity.QueryResult, error) {
	bucket, _ := entity.ParseBucket(params.Filter)
	filters := entity.QueryFilters{
		Filter:       string(bucket),
		StartDate:    params.StartDate,
		EndDate:      params.EndDate,
		FlightNumber: params.FlightNumber,
		ItemName:     params.ItemName,
	}
	predicates := BuildPredicates(params)
	f.metrics.QueriesTotal.WithLabelValues(string(bucket)).Inc()
	f.logger.Debug("Dispatching reconciliation query",
		"bucket", bucket,
		"predicates", len(predicates),
		"limit", params.Limit,
		"offset", params.Offset)

	var (
		records []*entity.ReconciliationRecord
		total   int64
	)
	err := f.reconciliationRepo.ReadConsistent(ctx, func(repo repository.ReconciliationRepository) error {
		var err error
		records, err = repo.FindPaged(ctx, predicates, params.Limit, params.Offset)
		if err != nil {
			return fmt.Errorf("failed to query reconciliation records: %w", err)
		}
		total, err = repo.CountFiltered(ctx, predicates)
		if err != nil {
			return fmt.Errorf("failed to count reconciliation records: %w", err)
		}
		return nil
	})
	if err != nil {
		return f.failure(filters, err), err
	}

	data := make([]map[string]string, 0, len(records))
	for _, r := range records {
		data = append(data, r.Serialize())
	}

	return &entity.QueryResult{
		Success: true,
		Data:    data,
		Pagination: &entity.Pagination{
			Total:      total,
			Limit:      params.Limit,
			Offset:     params.Offset,
			NextOffset: entity.NextOffset(params.Offset, params.Limit, total),
		},
		Filters: filters,
	}, nil
}

// Summary counts the rows of each bucket
func (f *FilterDispatcher) Summary(ctx context.Context) (*entity.Summary, error) {
	counts := make(map[entity.Bucket]int64)
	for _, bucket := range []entity.Bucket{
		entity.BucketAll,
		entity.BucketMatched,
		entity.BucketAirOnly,
		entity.BucketCatOnly,
		entity.BucketQtyDiscrepancy,
		entity.BucketPriceDiscrepancy,
	} {
		var predicates []entity.Predicate
		if bucket != entity.BucketAll {
			predicates = append(predicates, entity.BucketPredicate{Bucket: bucket})
		}
		n, err := f.reconciliationRepo.CountFiltered(ctx, predicates)
		if err != nil {
			f.metrics.ErrorsCount.WithLabelValues("summary").Inc()
			f.logger.Error("Failed to count bucket", "bucket", bucket, "error", err)
			return nil, fmt.Errorf("failed to count %s rows: %w", bucket, err)
		}
		counts[bucket] = n
	}

	return &entity.Summary{
		Total:              counts[entity.BucketAll],
		Matched:            counts[entity.BucketMatched],
		AirOnly:            counts[entity.BucketAirOnly],
		CatOnly:            counts[entity.BucketCatOnly],
		QtyDiscrepancies:   counts[entity.BucketQtyDiscrepancy],
		PriceDiscrepancies: counts[entity.BucketPriceDiscrepancy],
	}, nil
}

func (f *FilterDispatcher) failure(filters entity.QueryFilters, err error) *entity.QueryResult {
	f.metrics.ErrorsCount.WithLabelValues("query").Inc()
	f.logger.Error("Reconciliation query failed", "error", err)
	return &entity.QueryResult{
		Success: false,
		Message: "failed to query reconciliation records",
		Error:   err.Error(),
		Data:    []map[string]string{},
		Filters: filters,
	}
}

func parseOptionalDate(value *string) (t time.Time, ok bool) {
	if value == nil {
		return t, false
	}
	return utils.ParseFilterDate(*value)
}

func present(value *string) bool {
	return value != nil && strings.TrimSpace(*value) != ""
}
