package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Git20254/ai-core-public/internal/handlers"
	"github.com/Git20254/ai-core-public/internal/recommend"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Ranker     recommend.Ranker
	Ingester   handlers.TrackIngester
	Plays      handlers.PlayRecorder
	Discoverer handlers.Discoverer
	Maintainer handlers.Maintainer
	Trends     handlers.TrendReader
	Vectors    handlers.VectorStatus
	// Catalog is optional; when nil the health check skips the database.
	Catalog handlers.Pinger

	// MaintenanceThreshold is used when POST /discover/maintenance has no threshold.
	MaintenanceThreshold float64
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	discoverHandler := handlers.NewDiscoverHandler(deps.Discoverer)

	r.Get("/", handlers.StatusHandler)
	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.Vectors, deps.Catalog, deps.Trends))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Method(http.MethodGet, "/recommend", handlers.NewRecommendHandler(deps.Ranker))
	r.Method(http.MethodPost, "/tracks", handlers.NewTracksHandler(deps.Ingester))
	r.Method(http.MethodPost, "/embed", handlers.NewEmbedHandler(deps.Ingester))
	r.Method(http.MethodPost, "/artist/upload", handlers.NewArtistUploadHandler(deps.Ingester))
	r.Method(http.MethodPost, "/streams", handlers.NewStreamsHandler(deps.Plays))

	r.Route("/discover", func(r chi.Router) {
		r.Get("/", discoverHandler.Nearby)
		r.Get("/ranked", discoverHandler.Ranked)
		r.Get("/trending", discoverHandler.Trending)
		r.Method(http.MethodPost, "/maintenance", handlers.NewMaintenanceHandler(deps.Maintainer, deps.MaintenanceThreshold))
	})
	r.Method(http.MethodGet, "/trends", handlers.NewTrendsHandler(deps.Trends))

	return r
}
