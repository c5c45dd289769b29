package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/usecase"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/go-playground/validator/v10"
)

const (
	defaultQueryLimit = 100
	defaultRunsLimit  = 20
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Reconciler runs and inspects rebuilds
type Reconciler interface {
	Populate(ctx context.Context, force bool) (*entity.PopulateResult, error)
	ComputeDifferences(ctx context.Context) (int, error)
	RecentRuns(ctx context.Context, limit int) ([]*entity.RebuildRun, error)
}

// QueryDispatcher serves filtered views of the reconciliation table
type QueryDispatcher interface {
	Query(ctx context.Context, params entity.QueryParams) (*entity.QueryResult, error)
	Summary(ctx context.Context) (*entity.Summary, error)
}

// Exporter writes filtered rows as a spreadsheet
type Exporter interface {
	WriteXLSX(ctx context.Context, w io.Writer, params entity.QueryParams) (int, error)
}

// QueryRequest holds the validated paging and filter parameters
type QueryRequest struct {
	Limit  int    `validate:"min=1,max=1000"`
	Offset int    `validate:"min=0"`
	Filter string `validate:"omitempty,oneof=all matched both discrepancies qty_discrepancy price_discrepancy air_only cat_only"`
}

// RunsRequest holds the validated rebuild history parameters
type RunsRequest struct {
	Limit int `validate:"min=1,max=100"`
}

// ReconciliationHandler exposes the reconciliation usecases over HTTP
type ReconciliationHandler struct {
	reconciler Reconciler
	dispatcher QueryDispatcher
	exporter   Exporter
	validate   *validator.Validate
	logger     logger.Logger
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(reconciler Reconciler, dispatcher QueryDispatcher, exporter Exporter, logger logger.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciler: reconciler,
		dispatcher: dispatcher,
		exporter:   exporter,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Populate handles POST /reconciliation/populate?force=
func (h *ReconciliationHandler) Populate(w http.ResponseWriter, r *http.Request) {
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid force parameter", map[string]string{"force": "bool"})
			return
		}
		force = parsed
	}

	result, err := h.reconciler.Populate(r.Context(), force)
	switch {
	case errors.Is(err, usecase.ErrRebuildInProgress):
		writeJSON(w, http.StatusConflict, result)
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, result)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// Query handles GET /reconciliation
func (h *ReconciliationHandler) Query(w http.ResponseWriter, r *http.Request) {
	params, ok := h.queryParams(w, r, true)
	if !ok {
		return
	}

	result, err := h.dispatcher.Query(r.Context(), params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Summary handles GET /reconciliation/summary
func (h *ReconciliationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dispatcher.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    summary,
	})
}

// Export handles GET /reconciliation/export
func (h *ReconciliationHandler) Export(w http.ResponseWriter, r *http.Request) {
	params, ok := h.queryParams(w, r, false)
	if !ok {
		return
	}

	out := &attachmentWriter{w: w}
	rows, err := h.exporter.WriteXLSX(r.Context(), out, params)
	if err != nil {
		h.logger.Error("Export failed", "error", err, "bytes_sent", out.written)
		if !out.started {
			writeError(w, http.StatusInternalServerError, err.Error(), nil)
		}
		return
	}
	if !out.started {
		out.begin()
	}
	h.logger.Debug("Export sent", "rows", rows, "bytes", out.written)
}

// attachmentWriter sends the spreadsheet headers on the first write, so a
// failure before any byte is produced can still be answered with JSON
type attachmentWriter struct {
	w       http.ResponseWriter
	started bool
	written int64
}

func (a *attachmentWriter) begin() {
	a.started = true
	a.w.Header().Set("Content-Type", xlsxContentType)
	a.w.Header().Set("Content-Disposition", `attachment; filename="reconciliation.xlsx"`)
	a.w.WriteHeader(http.StatusOK)
}

func (a *attachmentWriter) Write(p []byte) (int, error) {
	if !a.started {
		a.begin()
	}
	n, err := a.w.Write(p)
	a.written += int64(n)
	return n, err
}

// ComputeDifferences handles POST /reconciliation/differences
func (h *ReconciliationHandler) ComputeDifferences(w http.ResponseWriter, r *http.Request) {
	n, err := h.reconciler.ComputeDifferences(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": n,
	})
}

// Runs handles GET /reconciliation/runs?limit=
func (h *ReconciliationHandler) Runs(w http.ResponseWriter, r *http.Request) {
	req := RunsRequest{Limit: defaultRunsLimit}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit parameter", map[string]string{"limit": "int"})
			return
		}
		req.Limit = n
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameters", validationErrors(err))
		return
	}

	runs, err := h.reconciler.RecentRuns(r.Context(), req.Limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    runs,
	})
}

// queryParams parses and validates the shared filter parameters. Paging is
// validated only when paged is set. Writes a 400 and returns false on failure.
func (h *ReconciliationHandler) queryParams(w http.ResponseWriter, r *http.Request, paged bool) (entity.QueryParams, bool) {
	q := r.URL.Query()
	req := QueryRequest{
		Limit:  defaultQueryLimit,
		Offset: 0,
		Filter: q.Get("filter"),
	}

	invalid := make(map[string]string)
	if paged {
		for key, target := range map[string]*int{"limit": &req.Limit, "offset": &req.Offset} {
			raw := q.Get(key)
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				invalid[key] = "int"
				continue
			}
			*target = n
		}
	}
	if len(invalid) > 0 {
		writeError(w, http.StatusBadRequest, "invalid query parameters", invalid)
		return entity.QueryParams{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameters", validationErrors(err))
		return entity.QueryParams{}, false
	}

	return entity.QueryParams{
		Limit:        req.Limit,
		Offset:       req.Offset,
		Filter:       req.Filter,
		StartDate:    optional(q, "start_date"),
		EndDate:      optional(q, "end_date"),
		FlightNumber: optional(q, "flight_number"),
		ItemName:     optional(q, "item_name"),
	}, true
}

func optional(q map[string][]string, key string) *string {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

func validationErrors(err error) map[string]string {
	result := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		result["request"] = err.Error()
		return result
	}
	for _, fe := range ve {
		result[fe.Field()] = fe.Tag()
	}
	return result
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	body := map[string]interface{}{
		"success": false,
		"error":   message,
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	writeJSON(w, status, body)
}
