package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/maintenance"
	"github.com/Git20254/ai-core-public/internal/trend"
)

// Maintainer runs one trend maintenance sweep.
type Maintainer interface {
	RunMaintenance(ctx context.Context, threshold float64) (maintenance.Report, error)
}

// MaintenanceHandler triggers a maintenance sweep on demand.
type MaintenanceHandler struct {
	maintainer       Maintainer
	defaultThreshold float64
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(maintainer Maintainer, defaultThreshold float64) *MaintenanceHandler {
	if defaultThreshold <= 0 {
		defaultThreshold = trend.DefaultThreshold
	}
	return &MaintenanceHandler{maintainer: maintainer, defaultThreshold: defaultThreshold}
}

// MaintenanceResponse reports a completed sweep. Persisted is false when the
// in-memory sweep ran but the ledger file could not be written.
type MaintenanceResponse struct {
	Status    string             `json:"status"`
	Result    maintenance.Report `json:"result"`
	Persisted bool               `json:"persisted"`
}

// ServeHTTP handles POST /discover/maintenance with an optional threshold query parameter.
func (h *MaintenanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	threshold, ok, err := queryFloat(r, "threshold")
	if err != nil {
		writeServiceError(ctx, w, err, "")
		return
	}
	if !ok {
		threshold = h.defaultThreshold
	}
	if threshold < 0 {
		writeError(ctx, w, http.StatusBadRequest, "threshold must not be negative")
		return
	}

	report, err := h.maintainer.RunMaintenance(ctx, threshold)
	persisted := err == nil
	if err != nil {
		logger.WarnContext(ctx, "maintenance sweep not persisted", "error", err)
	}
	writeJSON(ctx, w, http.StatusOK, MaintenanceResponse{
		Status:    "maintenance complete",
		Result:    report,
		Persisted: persisted,
	})
}

// TrendReader exposes the trend ledger contents.
type TrendReader interface {
	Entries() []trend.Entry
	Len() int
}

// TrendsHandler lists trend scores.
type TrendsHandler struct {
	trends TrendReader
}

// NewTrendsHandler creates a new TrendsHandler.
func NewTrendsHandler(trends TrendReader) *TrendsHandler {
	return &TrendsHandler{trends: trends}
}

// TrendsResponse lists trend entries, highest score first.
type TrendsResponse struct {
	Total   int           `json:"total"`
	Entries []trend.Entry `json:"entries"`
}

// ServeHTTP handles GET /trends with an optional limit query parameter.
func (h *TrendsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	entries := h.trends.Entries()
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(ctx, w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		entries = entries[:min(limit, len(entries))]
	}
	writeJSON(ctx, w, http.StatusOK, TrendsResponse{Total: h.trends.Len(), Entries: entries})
}
