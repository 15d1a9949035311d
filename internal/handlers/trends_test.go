package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/Git20254/ai-core-public/internal/handlers"
	"github.com/Git20254/ai-core-public/internal/maintenance"
	"github.com/Git20254/ai-core-public/internal/service"
	"github.com/Git20254/ai-core-public/internal/trend"
	"github.com/Git20254/ai-core-public/internal/vectorstore"
)

func seededLedger(t *testing.T) *trend.Ledger {
	t.Helper()
	ctx := context.Background()
	ledger := trend.Open(ctx, trend.Options{})
	for id, factor := range map[string]float64{"hot": 3.0, "warm": 1.5, "cool": 1.1} {
		if _, err := ledger.Boost(ctx, id, factor); err != nil {
			t.Fatalf("Boost() error = %v", err)
		}
	}
	return ledger
}

func TestMaintenanceHandler_ServeHTTP(t *testing.T) {
	ledger := seededLedger(t)
	h := handlers.NewMaintenanceHandler(maintenance.NewPolicy(ledger, nil), 0.3)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/discover/maintenance?threshold=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("ServeHTTP() status = %v, body %s", w.Code, w.Body.String())
	}

	var resp handlers.MaintenanceResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "maintenance complete" {
		t.Errorf("Status = %q", resp.Status)
	}
	want := maintenance.Report{
		Threshold:         2,
		Remaining:         1,
		Removed:           2,
		ActivityLevel:     maintenance.LevelLow,
		NextIntervalHours: 48,
	}
	if resp.Result != want {
		t.Errorf("Result = %+v, want %+v", resp.Result, want)
	}
	if ledger.Len() != 1 {
		t.Errorf("ledger.Len() = %d, want 1", ledger.Len())
	}
	if !resp.Persisted {
		t.Error("Persisted = false, want true")
	}
}

func TestMaintenanceHandler_DefaultThreshold(t *testing.T) {
	ledger := seededLedger(t)
	h := handlers.NewMaintenanceHandler(maintenance.NewPolicy(ledger, nil), 0)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/discover/maintenance", nil))

	var resp handlers.MaintenanceResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result.Threshold != trend.DefaultThreshold || resp.Result.Removed != 0 {
		t.Errorf("Result = %+v", resp.Result)
	}
}

// failingMaintainer sweeps in memory but cannot write the ledger file.
type failingMaintainer struct{}

func (failingMaintainer) RunMaintenance(_ context.Context, threshold float64) (maintenance.Report, error) {
	report := maintenance.Report{Threshold: threshold, Remaining: 1, Removed: 2, ActivityLevel: maintenance.LevelLow, NextIntervalHours: 48}
	return report, fmt.Errorf("%w: disk full", service.ErrPersistenceUnavailable)
}

func TestMaintenanceHandler_PersistFailureStillReports(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.NewMaintenanceHandler(failingMaintainer{}, 0.3).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/discover/maintenance", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("ServeHTTP() status = %v, want %v (body %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var resp handlers.MaintenanceResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Persisted {
		t.Error("Persisted = true, want false")
	}
	if resp.Result.Removed != 2 || resp.Result.Remaining != 1 || resp.Result.Threshold != 0.3 {
		t.Errorf("Result = %+v", resp.Result)
	}
}

func TestMaintenanceHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		maintainer handlers.Maintainer
		wantStatus int
	}{
		{"bad threshold", http.MethodPost, "/discover/maintenance?threshold=x", failingMaintainer{}, http.StatusBadRequest},
		{"negative threshold", http.MethodPost, "/discover/maintenance?threshold=-1", failingMaintainer{}, http.StatusBadRequest},
		{"method not allowed", http.MethodGet, "/discover/maintenance", failingMaintainer{}, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handlers.NewMaintenanceHandler(tt.maintainer, 0.3).ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestTrendsHandler_ServeHTTP(t *testing.T) {
	h := handlers.NewTrendsHandler(seededLedger(t))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/trends?limit=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("ServeHTTP() status = %v", w.Code)
	}

	var resp handlers.TrendsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 3 || len(resp.Entries) != 2 {
		t.Fatalf("ServeHTTP() = %+v", resp)
	}
	if resp.Entries[0].TrackID != "hot" || resp.Entries[1].TrackID != "warm" {
		t.Errorf("entries not sorted by score: %+v", resp.Entries)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/trends?limit=-1", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative limit status = %v, want 400", w.Code)
	}
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthHandler_ServeHTTP(t *testing.T) {
	store := vectorstore.NewStore(context.Background(), vectorstore.Options{})
	if err := store.Put(context.Background(), "t1", []float64{1, 0}, nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	tests := []struct {
		name       string
		catalog    handlers.Pinger
		wantStatus int
		wantState  string
	}{
		{"memory mode is degraded", fakePinger{}, http.StatusOK, "degraded"},
		{"catalog down is unhealthy", fakePinger{err: errors.New("closed")}, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(store, tt.catalog, seededLedger(t))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			var resp handlers.HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantState || resp.Persistence != "memory" {
				t.Errorf("ServeHTTP() = %+v", resp)
			}
			if resp.Tracks != 1 || resp.Dimension != 2 || resp.TrendEntries != 3 {
				t.Errorf("ServeHTTP() counts = %+v", resp)
			}
		})
	}
}

func TestStatusHandler(t *testing.T) {
	w := httptest.NewRecorder()
	handlers.StatusHandler(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp handlers.StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Service != "ai-core" {
		t.Errorf("StatusHandler() = %+v", resp)
	}
}
