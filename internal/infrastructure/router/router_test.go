package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/interface/handler"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

type stubReconciler struct{}

func (stubReconciler) Populate(context.Context, bool) (*entity.PopulateResult, error) {
	return &entity.PopulateResult{Success: true}, nil
}
func (stubReconciler) ComputeDifferences(context.Context) (int, error) { return 0, nil }
func (stubReconciler) RecentRuns(context.Context, int) ([]*entity.RebuildRun, error) {
	return nil, nil
}

type stubDispatcher struct{}

func (stubDispatcher) Query(context.Context, entity.QueryParams) (*entity.QueryResult, error) {
	return &entity.QueryResult{Success: true, Data: []map[string]string{}}, nil
}
func (stubDispatcher) Summary(context.Context) (*entity.Summary, error) {
	return &entity.Summary{}, nil
}

type stubExporter struct{}

func (stubExporter) WriteXLSX(context.Context, io.Writer, entity.QueryParams) (int, error) {
	return 0, nil
}

func TestRoutes(t *testing.T) {
	log := logger.NewNopLogger()
	h := handler.NewReconciliationHandler(stubReconciler{}, stubDispatcher{}, stubExporter{}, log)
	r := NewHTTPRouter(h, prometheus.NewRegistry(), log)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/reconciliation", http.StatusOK},
		{http.MethodPost, "/reconciliation/populate", http.StatusOK},
		{http.MethodGet, "/reconciliation/summary", http.StatusOK},
		{http.MethodGet, "/reconciliation/export", http.StatusOK},
		{http.MethodPost, "/reconciliation/differences", http.StatusOK},
		{http.MethodGet, "/reconciliation/runs", http.StatusOK},
		{http.MethodGet, "/reconciliation/populate", http.StatusMethodNotAllowed},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
