package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VectorsStored tracks the number of records held in memory by the vector store.
	VectorsStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aicore_vectors_stored",
			Help: "Number of track vectors held in memory",
		},
	)

	// PersistenceErrors counts failed writes or reads against the backing store.
	PersistenceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aicore_persistence_errors_total",
			Help: "Total number of failed backing store operations",
		},
		[]string{"backend", "operation"},
	)

	// BackendLookups counts memory misses that fell through to the backing store.
	BackendLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aicore_backend_lookups_total",
			Help: "Total number of vector lookups served by the backing store",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	// RankDuration observes the latency of a ranking call.
	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aicore_rank_duration_seconds",
			Help:    "Duration of hybrid ranking calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RankRequests counts ranking calls by outcome.
	RankRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aicore_rank_requests_total",
			Help: "Total number of ranking requests",
		},
		[]string{"outcome"}, // "ok", "empty_store", "rejected"
	)

	// TrendBoosts counts trend ledger boosts.
	TrendBoosts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aicore_trend_boosts_total",
			Help: "Total number of trend score boosts",
		},
	)

	// TrendEntries tracks the ledger size after each mutation.
	TrendEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aicore_trend_entries",
			Help: "Number of active trend ledger entries",
		},
	)

	// TrendPruned counts entries removed by decay sweeps.
	TrendPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aicore_trend_pruned_total",
			Help: "Total number of trend entries pruned below the decay threshold",
		},
	)

	// MaintenanceRuns counts decay sweeps by activity level at the time of the run.
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aicore_maintenance_runs_total",
			Help: "Total number of trend maintenance sweeps",
		},
		[]string{"activity"},
	)

	// TracksIngested counts successfully ingested tracks by source.
	TracksIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aicore_tracks_ingested_total",
			Help: "Total number of tracks ingested",
		},
		[]string{"source"}, // "embed", "artist", "vector", "import"
	)

	// HTTPRequestDuration observes request latency by method and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aicore_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)
