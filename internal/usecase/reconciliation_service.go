package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"
	"invoice-reconciliation-service/pkg/logger"
	"invoice-reconciliation-service/pkg/metrics"

	"github.com/google/uuid"
)

// ReconciliationService orchestrates full rebuilds of the reconciliation table
type ReconciliationService struct {
	reconciliationRepo repository.ReconciliationRepository
	runRepo            repository.RebuildRunRepository
	publisher          repository.RebuildEventPublisher
	locker             repository.RebuildLocker
	engine             *MatchingEngine
	calculator         *DiscrepancyCalculator
	metrics            *metrics.Metrics
	logger             logger.Logger
	now                func() time.Time
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	reconciliationRepo repository.ReconciliationRepository,
	runRepo repository.RebuildRunRepository,
	publisher repository.RebuildEventPublisher,
	locker repository.RebuildLocker,
	engine *MatchingEngine,
	calculator *DiscrepancyCalculator,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		reconciliationRepo: reconciliationRepo,
		runRepo:            runRepo,
		publisher:          publisher,
		locker:             locker,
		engine:             engine,
		calculator:         calculator,
		metrics:            metrics,
		logger:             logger,
		now:                time.Now,
	}
}

// Populate wipes and regenerates the reconciliation table. Without force it
// refuses to touch a non-empty table and reports the existing row count.
func (s *ReconciliationService) Populate(ctx context.Context, force bool) (*entity.PopulateResult, error) {
	run := &entity.RebuildRun{
		ID:        uuid.NewString(),
		StartedAt: s.now().UTC(),
		Forced:    force,
	}
	log := s.logger.With("runID", run.ID, "force", force)

	release, err := s.locker.Obtain(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrLockNotObtained) {
			s.metrics.RebuildsTotal.WithLabelValues("locked").Inc()
			log.Warn("Rebuild already in progress")
			return &entity.PopulateResult{
				Success: false,
				Message: "rebuild already in progress",
				Error:   ErrRebuildInProgress.Error(),
			}, ErrRebuildInProgress
		}
		return s.fail(ctx, run, fmt.Errorf("failed to obtain rebuild lock: %w", err))
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Failed to release rebuild lock", "error", err)
		}
	}()

	if !force {
		existing, err := s.reconciliationRepo.Count(ctx)
		if err != nil {
			return s.fail(ctx, run, fmt.Errorf("failed to count reconciliation records: %w", err))
		}
		if existing > 0 {
			run.Status = entity.RunStatusSkipped
			s.finish(ctx, run)
			s.metrics.RebuildsTotal.WithLabelValues("skipped").Inc()
			log.Info("Reconciliation table already populated", "existing", existing)
			return &entity.PopulateResult{
				Success:       false,
				Message:       fmt.Sprintf("reconciliation table already contains %d records; use force to rebuild", existing),
				ExistingCount: existing,
				RunID:         run.ID,
			}, nil
		}
	}

	log.Info("Starting reconciliation rebuild")
	result, err := s.engine.Rebuild(ctx)
	if err != nil {
		return s.fail(ctx, run, err)
	}
	annotated := s.calculator.Annotate(result.Records)

	if err := s.reconciliationRepo.ReplaceAll(ctx, result.Records); err != nil {
		return s.fail(ctx, run, fmt.Errorf("failed to replace reconciliation table: %w", err))
	}

	run.Status = entity.RunStatusCompleted
	run.Matched = result.Matched
	run.AirOnly = result.AirOnly
	run.CaterOnly = result.CaterOnly
	run.Total = len(result.Records)
	s.finish(ctx, run)

	s.metrics.RebuildsTotal.WithLabelValues("completed").Inc()
	s.metrics.RebuildDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())
	s.metrics.ReconciliationRecords.WithLabelValues(string(entity.OriginMatched)).Set(float64(result.Matched))
	s.metrics.ReconciliationRecords.WithLabelValues(string(entity.OriginAirOnly)).Set(float64(result.AirOnly))
	s.metrics.ReconciliationRecords.WithLabelValues(string(entity.OriginCatOnly)).Set(float64(result.CaterOnly))

	s.publish(ctx, run)

	log.Info("Reconciliation rebuild completed",
		"total", run.Total,
		"matched", run.Matched,
		"airOnly", run.AirOnly,
		"caterOnly", run.CaterOnly,
		"annotated", annotated,
		"durationMs", run.DurationMs)

	return &entity.PopulateResult{
		Success:    true,
		Message:    "reconciliation table rebuilt",
		Matched:    result.Matched,
		AirOnly:    result.AirOnly,
		CaterOnly:  result.CaterOnly,
		Total:      run.Total,
		DurationMs: run.DurationMs,
		RunID:      run.ID,
	}, nil
}

// ComputeDifferences recomputes discrepancies on the stored matched rows
func (s *ReconciliationService) ComputeDifferences(ctx context.Context) (int, error) {
	n, err := s.calculator.ComputeDifferences(ctx)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("differences").Inc()
	}
	return n, err
}

// RecentRuns returns the latest rebuild audit entries, newest first
func (s *ReconciliationService) RecentRuns(ctx context.Context, limit int) ([]*entity.RebuildRun, error) {
	runs, err := s.runRepo.FindRecent(ctx, limit)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("runs").Inc()
		return nil, fmt.Errorf("failed to load rebuild runs: %w", err)
	}
	return runs, nil
}

func (s *ReconciliationService) fail(ctx context.Context, run *entity.RebuildRun, err error) (*entity.PopulateResult, error) {
	run.Status = entity.RunStatusFailed
	run.ErrorDetail = err.Error()
	s.finish(ctx, run)

	s.metrics.RebuildsTotal.WithLabelValues("failed").Inc()
	s.metrics.ErrorsCount.WithLabelValues("populate").Inc()
	s.logger.Error("Reconciliation rebuild failed", "runID", run.ID, "error", err)

	return &entity.PopulateResult{
		Success: false,
		Message: "rebuild failed",
		Error:   err.Error(),
		RunID:   run.ID,
	}, err
}

// finish stamps the run and stores it. The audit log is best effort.
func (s *ReconciliationService) finish(ctx context.Context, run *entity.RebuildRun) {
	run.FinishedAt = s.now().UTC()
	run.DurationMs = run.FinishedAt.Sub(run.StartedAt).Milliseconds()
	if err := s.runRepo.Save(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("Failed to record rebuild run", "runID", run.ID, "error", err)
	}
}

func (s *ReconciliationService) publish(ctx context.Context, run *entity.RebuildRun) {
	event := &entity.RebuildEvent{
		RunID:       run.ID,
		Forced:      run.Forced,
		Matched:     run.Matched,
		AirOnly:     run.AirOnly,
		CaterOnly:   run.CaterOnly,
		Total:       run.Total,
		CompletedAt: run.FinishedAt.Format(time.RFC3339),
	}
	if err := s.publisher.PublishRebuildCompleted(ctx, event); err != nil {
		s.logger.Warn("Failed to publish rebuild event", "runID", run.ID, "error", err)
	}
}
