package usecase

import (
	"context"
	"sync"
	"time"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"
	"invoice-reconciliation-service/pkg/logger"
	"invoice-reconciliation-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics("test", prometheus.NewRegistry())
}

func newTestLogger() logger.Logger {
	return logger.NewNopLogger()
}

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func strPtr(s string) *string {
	return &s
}

type fakeAirRepo struct {
	active []*entity.AirInvoice
	all    []*entity.AirInvoice
	err    error
}

func (f *fakeAirRepo) ListActive(context.Context) ([]*entity.AirInvoice, error) {
	return f.active, f.err
}

func (f *fakeAirRepo) ListAll(context.Context) ([]*entity.AirInvoice, error) {
	return f.all, f.err
}

type fakeCateringRepo struct {
	active []*entity.CateringInvoice
	all    []*entity.CateringInvoice
	err    error
}

func (f *fakeCateringRepo) ListActive(context.Context) ([]*entity.CateringInvoice, error) {
	return f.active, f.err
}

func (f *fakeCateringRepo) ListAll(context.Context) ([]*entity.CateringInvoice, error) {
	return f.all, f.err
}

// fakeReconciliationRepo evaluates predicates in memory
type fakeReconciliationRepo struct {
	mu         sync.Mutex
	records    []*entity.ReconciliationRecord
	err        error
	replaceErr error
	replaced   int
	updated    []*entity.ReconciliationRecord
	// snapshots counts ReadConsistent calls; onSnapshot runs after the copy is taken
	snapshots  int
	onSnapshot func()
}

var _ repository.ReconciliationRepository = (*fakeReconciliationRepo)(nil)

func (f *fakeReconciliationRepo) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.records)), f.err
}

func (f *fakeReconciliationRepo) ReplaceAll(_ context.Context, records []*entity.ReconciliationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.records = records
	f.replaced++
	return nil
}

func (f *fakeReconciliationRepo) filter(predicates []entity.Predicate) []*entity.ReconciliationRecord {
	var out []*entity.ReconciliationRecord
	for _, r := range f.records {
		if entity.MatchesAll(r, predicates) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeReconciliationRepo) FindPaged(_ context.Context, predicates []entity.Predicate, limit, offset int) ([]*entity.ReconciliationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rows := f.filter(predicates)
	if offset >= len(rows) {
		return []*entity.ReconciliationRecord{}, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], nil
}

func (f *fakeReconciliationRepo) CountFiltered(_ context.Context, predicates []entity.Predicate) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.filter(predicates))), nil
}

func (f *fakeReconciliationRepo) FindMatched(context.Context) ([]*entity.ReconciliationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.filter([]entity.Predicate{entity.BucketPredicate{Bucket: entity.BucketMatched}}), nil
}

func (f *fakeReconciliationRepo) UpdateDifferences(_ context.Context, records []*entity.ReconciliationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, records...)
	return f.err
}

// ReadConsistent hands fn a copy of the current rows, so later writes to f
// stay invisible to it
func (f *fakeReconciliationRepo) ReadConsistent(_ context.Context, fn func(repo repository.ReconciliationRepository) error) error {
	f.mu.Lock()
	f.snapshots++
	snapshot := &fakeReconciliationRepo{
		records: append([]*entity.ReconciliationRecord(nil), f.records...),
		err:     f.err,
	}
	hook := f.onSnapshot
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return fn(snapshot)
}

type fakeRunRepo struct {
	runs []*entity.RebuildRun
	err  error
}

func (f *fakeRunRepo) Save(_ context.Context, run *entity.RebuildRun) error {
	if f.err != nil {
		return f.err
	}
	copied := *run
	f.runs = append(f.runs, &copied)
	return nil
}

func (f *fakeRunRepo) FindRecent(_ context.Context, limit int) ([]*entity.RebuildRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.runs) {
		limit = len(f.runs)
	}
	return f.runs[:limit], nil
}

type fakePublisher struct {
	events []*entity.RebuildEvent
	err    error
}

func (f *fakePublisher) PublishRebuildCompleted(_ context.Context, event *entity.RebuildEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeLocker struct {
	held     bool
	err      error
	released int
}

func (f *fakeLocker) Obtain(context.Context) (repository.ReleaseFunc, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.held {
		return nil, repository.ErrLockNotObtained
	}
	f.held = true
	return func(context.Context) error {
		f.held = false
		f.released++
		return nil
	}, nil
}
