package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Git20254/ai-core-public/internal/contextutil"
)

// VectorStatus reports the state of the vector store.
type VectorStatus interface {
	PersistenceEnabled() bool
	BackendName() string
	Size() int
	Dimension() int
}

// Pinger checks a dependency, such as the catalog database.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Counter reports a size, such as the number of trend entries.
type Counter interface {
	Len() int
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	vectors            VectorStatus
	catalog            Pinger
	trends             Counter
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. catalog and trends may be nil.
func NewHealthHandler(vectors VectorStatus, catalog Pinger, trends Counter) *HealthHandler {
	return &HealthHandler{
		vectors:            vectors,
		catalog:            catalog,
		trends:             trends,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Persistence is "memory" when the vector backend is unavailable
	Persistence string `json:"persistence"`

	Tracks       int `json:"tracks"`
	Dimension    int `json:"dimension"`
	TrendEntries int `json:"trend_entries"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// swagger:route GET /health healthCheck
//
// # Health check endpoint
//
// Running without the vector backend is reported as degraded but still
// answers 200, since ranking keeps working in memory. A failing catalog
// database answers 503.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: System is healthy or degraded
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: System is unhealthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	status := "healthy"
	httpStatus := http.StatusOK

	persistence := h.vectors.BackendName()
	if h.vectors.PersistenceEnabled() {
		checks["vector_backend"] = "ok"
	} else {
		persistence = "memory"
		checks["vector_backend"] = "disabled"
		issues = append(issues, "vector_backend_unavailable")
		status = "degraded"
	}

	if h.catalog != nil {
		if h.checkCatalog(checkCtx, logger) {
			checks["catalog"] = "ok"
		} else {
			checks["catalog"] = "error"
			issues = append(issues, "catalog_unavailable")
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	response := HealthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Checks:      checks,
		Persistence: persistence,
		Tracks:      h.vectors.Size(),
		Dimension:   h.vectors.Dimension(),
		Issues:      issues,
	}
	if h.trends != nil {
		response.TrendEntries = h.trends.Len()
	}

	writeJSON(ctx, w, httpStatus, response)
}

// checkCatalog checks if the catalog database is accessible.
func (h *HealthHandler) checkCatalog(ctx context.Context, logger *slog.Logger) bool {
	if err := h.catalog.PingContext(ctx); err != nil {
		logger.WarnContext(ctx, "catalog health check failed", "error", err)
		return false
	}
	return true
}

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// StatusHandler answers GET / with a static status.
func StatusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, StatusResponse{Status: "ok", Service: "ai-core"})
}
