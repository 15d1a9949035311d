package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Git20254/ai-core-public/internal/config"
	"github.com/Git20254/ai-core-public/internal/discover"
	"github.com/Git20254/ai-core-public/internal/embed"
	"github.com/Git20254/ai-core-public/internal/geo"
	"github.com/Git20254/ai-core-public/internal/history"
	"github.com/Git20254/ai-core-public/internal/http"
	"github.com/Git20254/ai-core-public/internal/ingest"
	"github.com/Git20254/ai-core-public/internal/maintenance"
	"github.com/Git20254/ai-core-public/internal/recommend"
	"github.com/Git20254/ai-core-public/internal/storage"
	"github.com/Git20254/ai-core-public/internal/supervisor"
	"github.com/Git20254/ai-core-public/internal/trend"
	"github.com/Git20254/ai-core-public/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API ranks music tracks for listeners by audio embedding similarity,
// popularity and freshness, and answers location-based discovery queries.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: ai-core API
//   description: |
//     Hybrid track recommendation and geographic discovery API.
//     Tracks are ingested as audio (embedded by an external service) or as
//     precomputed vectors, and listening history feeds popularity and trends.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize catalog database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	trackRepo := storage.NewTrackRepo(db)
	playRepo := storage.NewPlayRepo(db)

	// Vector store, backed by Redis or Qdrant when reachable
	backend := newBackend(ctx, cfg)
	store := vectorstore.NewStore(ctx, vectorstore.Options{
		Dimension: cfg.VectorDim,
		Timeout:   cfg.BackendTimeout,
		Logger:    logger,
		Backend:   backend,
	})
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close vector store", "error", err)
		}
	}()

	indexFile := vectorstore.NewIndexFile(cfg.IndexPath)
	if store.PersistenceEnabled() {
		if _, err := store.Load(ctx, backend); err != nil {
			slog.Warn("Failed to load vectors from backend", "backend", store.BackendName(), "error", err)
		}
	} else if _, err := store.Load(ctx, indexFile); err != nil {
		slog.Warn("Failed to load vector index", "path", indexFile.Path(), "error", err)
	}
	// The index snapshot holds vectors only; artist and title come from the catalog.
	if _, err := ingest.RestoreMetadata(ctx, trackRepo, store); err != nil {
		slog.Warn("Failed to restore vector metadata", "error", err)
	}
	slog.Info("Vector store ready",
		"backend", store.BackendName(),
		"persistence", store.PersistenceEnabled(),
		"tracks", store.Size(),
		"dimension", store.Dimension(),
	)

	ledger := trend.Open(ctx, trend.Options{Path: cfg.TrendPath, Logger: logger})

	tracker := history.NewTracker(playRepo, trackRepo)
	plays, err := tracker.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load listening history: %v", err)
	}
	slog.Info("Listening history loaded", "plays", plays, "users", tracker.UserCount())

	ranker := recommend.NewRanker(store, recommend.Options{
		Weights: recommend.Weights{
			Similarity: cfg.RankWeightSimilarity,
			Popularity: cfg.RankWeightPopularity,
			Freshness:  cfg.RankWeightFreshness,
			Fusion:     cfg.RankFusionWeight,
		},
		ZeroAggregate: recommend.ZeroAggregatePolicy(cfg.RankZeroAggregate),
		History:       tracker,
		Trends:        ledger,
		BoostFactor:   cfg.TrendBoost,
		Recorder:      trackRepo,
	})

	var locator geo.Locator
	if cfg.GeoLookupURL != "" {
		locator = geo.NewHTTPLocator(cfg.GeoLookupURL, 5*time.Second)
	}
	embedder := embed.NewClient(cfg.EmbeddingBaseURL, cfg.VectorDim, cfg.EmbeddingTimeout)
	pipeline := ingest.NewPipeline(embedder, store, indexFile, trackRepo, locator)

	policy := maintenance.NewPolicy(ledger, trackRepo)

	router := http.NewRouter(&http.Deps{
		Ranker:               ranker,
		Ingester:             pipeline,
		Plays:                tracker,
		Discoverer:           discover.NewService(trackRepo, store),
		Maintainer:           policy,
		Trends:               ledger,
		Vectors:              store,
		Catalog:              db,
		MaintenanceThreshold: cfg.TrendDecayThreshold,
	})

	// Import a local audio folder in background after router is ready
	var imports sync.WaitGroup
	if cfg.ImportDir != "" {
		imports.Add(1)
		go func() {
			defer imports.Done()
			slog.Info("Starting background import", "dir", cfg.ImportDir)
			stats, err := pipeline.ImportDir(ctx, cfg.ImportDir)
			if err != nil {
				slog.Error("Import completed with errors", "error", err, "stats", stats)
			} else {
				slog.Info("Import completed successfully", "stats", stats)
			}
		}()
	}

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	tree.AddBackgroundService(maintenance.NewService(policy, cfg.TrendDecayThreshold, logger))
	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))

	slog.Info("Starting API server", "addr", addr)
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Supervisor stopped", "error", err)
	}

	// The import stops on ctx cancellation; let it finish before the final snapshot.
	imports.Wait()
	if err := store.SaveIndex(indexFile); err != nil {
		slog.Warn("Failed to save vector index on shutdown", "path", indexFile.Path(), "error", err)
	}
	slog.Info("Shutdown complete")
}

// newBackend builds the configured vector backend, or nil for memory only.
func newBackend(ctx context.Context, cfg *config.Config) vectorstore.Backend {
	switch cfg.VectorBackend {
	case config.BackendRedis:
		return vectorstore.NewRedisBackend(cfg.RedisAddr, cfg.RedisDB)
	case config.BackendQdrant:
		qb, err := vectorstore.NewQdrantBackend(cfg.QdrantURL, cfg.QdrantCollection, cfg.VectorDim)
		if err != nil {
			slog.Warn("Failed to create Qdrant client, using in-memory store", "error", err)
			return nil
		}
		ensureCtx, cancel := context.WithTimeout(ctx, cfg.BackendTimeout)
		defer cancel()
		if err := qb.EnsureCollection(ensureCtx, cfg.QdrantCollection, cfg.VectorDim); err != nil {
			slog.Warn("Failed to ensure Qdrant collection", "collection", cfg.QdrantCollection, "error", err)
		}
		return qb
	default:
		return nil
	}
}
