package handlers

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_track_ingester.go -package=mocks github.com/Git20254/ai-core-public/internal/handlers TrackIngester

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/geo"
	"github.com/Git20254/ai-core-public/internal/ingest"
	"github.com/Git20254/ai-core-public/internal/service"
)

// maxUploadBytes bounds a single audio upload.
const maxUploadBytes = 64 << 20

// TrackIngester adds tracks to the system.
type TrackIngester interface {
	IngestAudio(ctx context.Context, up ingest.Upload) (*ingest.Result, error)
	IngestVector(ctx context.Context, up ingest.VectorUpload) (*ingest.Result, error)
}

// EmbedHandler handles audio uploads that are embedded and stored.
type EmbedHandler struct {
	ingester TrackIngester
}

// NewEmbedHandler creates a new EmbedHandler.
func NewEmbedHandler(ingester TrackIngester) *EmbedHandler {
	return &EmbedHandler{ingester: ingester}
}

// ServeHTTP handles POST /embed with a multipart "file" field and optional
// mood, city, lat and lng fields.
func (h *EmbedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	up, cleanup, err := parseUpload(w, r)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to read upload")
		return
	}
	defer cleanup()
	up.Source = ingest.SourceEmbed

	res, err := h.ingester.IngestAudio(ctx, up)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to ingest track")
		return
	}
	writeJSON(ctx, w, http.StatusOK, res)
}

// ArtistUploadHandler handles artist uploads carrying track metadata.
type ArtistUploadHandler struct {
	ingester TrackIngester
}

// NewArtistUploadHandler creates a new ArtistUploadHandler.
func NewArtistUploadHandler(ingester TrackIngester) *ArtistUploadHandler {
	return &ArtistUploadHandler{ingester: ingester}
}

// ArtistUploadResponse is returned for a successful artist upload.
type ArtistUploadResponse struct {
	Status  string    `json:"status"`
	Artist  string    `json:"artist"`
	TrackID string    `json:"track_id"`
	City    string    `json:"city"`
	Context []float64 `json:"context_vector"`
}

// ServeHTTP handles POST /artist/upload. artist_name is required; title,
// genre, mood, city, lat and lng are optional.
func (h *ArtistUploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	up, cleanup, err := parseUpload(w, r)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to read upload")
		return
	}
	defer cleanup()

	up.Artist = strings.TrimSpace(r.FormValue("artist_name"))
	if up.Artist == "" {
		writeServiceError(ctx, w, &service.ValidationError{Field: "artist_name", Message: "is required"}, "")
		return
	}
	up.Title = strings.TrimSpace(r.FormValue("title"))
	up.Genre = strings.TrimSpace(r.FormValue("genre"))
	up.Source = ingest.SourceArtist

	res, err := h.ingester.IngestAudio(ctx, up)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to ingest track")
		return
	}
	writeJSON(ctx, w, http.StatusOK, ArtistUploadResponse{
		Status:  "ok",
		Artist:  up.Artist,
		TrackID: res.TrackID,
		City:    res.City,
		Context: res.Context,
	})
}

// parseUpload reads the multipart form shared by both upload endpoints.
// The returned cleanup closes the uploaded file.
func parseUpload(w http.ResponseWriter, r *http.Request) (ingest.Upload, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return ingest.Upload{}, noop, &service.ValidationError{Field: "body", Message: "must be multipart form data"}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return ingest.Upload{}, noop, &service.ValidationError{Field: "file", Message: "is required"}
	}
	cleanup := func() {
		_ = file.Close()
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	lat, err := formFloat(r, "lat")
	if err != nil {
		cleanup()
		return ingest.Upload{}, noop, err
	}
	lng, err := formFloat(r, "lng")
	if err != nil {
		cleanup()
		return ingest.Upload{}, noop, err
	}

	return ingest.Upload{
		Filename: header.Filename,
		Audio:    file,
		Mood:     strings.TrimSpace(r.FormValue("mood")),
		Place: geo.Place{
			City: strings.TrimSpace(r.FormValue("city")),
			Lat:  lat,
			Lng:  lng,
		},
	}, cleanup, nil
}

// TracksHandler accepts precomputed vectors.
type TracksHandler struct {
	ingester TrackIngester
}

// NewTracksHandler creates a new TracksHandler.
func NewTracksHandler(ingester TrackIngester) *TracksHandler {
	return &TracksHandler{ingester: ingester}
}

// ServeHTTP handles POST /tracks with a JSON ingest.VectorUpload body.
func (h *TracksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ingest.VectorUpload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.ingester.IngestVector(ctx, req)
	if err != nil {
		writeServiceError(ctx, w, err, "Failed to store track")
		return
	}
	writeJSON(ctx, w, http.StatusCreated, res)
}
