// Package ingest adds tracks to the system: it embeds uploaded audio, stores
// the vector, snapshots the index and records a catalog row with the track's
// geo/context fingerprint.
package ingest

import (
	"context"
	"fmt"
	"io"
	"math"
	"path"
	"strings"
	"time"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/embed"
	"github.com/Git20254/ai-core-public/internal/geo"
	"github.com/Git20254/ai-core-public/internal/metrics"
	"github.com/Git20254/ai-core-public/internal/service"
	"github.com/Git20254/ai-core-public/internal/similarity"
	"github.com/Git20254/ai-core-public/internal/storage"
	"github.com/Git20254/ai-core-public/internal/vectorstore"
)

// Track sources recorded in the catalog.
const (
	SourceEmbed  = "embed"
	SourceArtist = "artist"
	SourceVector = "vector"
	SourceImport = "import"
)

// VectorSink is the write side of the vector store.
type VectorSink interface {
	Put(ctx context.Context, id string, vector []float64, metadata map[string]any) error
	SaveIndex(f *vectorstore.IndexFile) error
	Size() int
}

// Upload describes an audio upload.
type Upload struct {
	Filename string
	Audio    io.Reader
	Title    string
	Artist   string
	Genre    string
	Mood     string
	// Place holds caller-supplied location values; missing ones are looked up.
	Place  geo.Place
	Source string
}

// VectorUpload describes a precomputed vector.
type VectorUpload struct {
	ID       string         `json:"id"`
	Vector   []float64      `json:"vector"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Mood     string         `json:"mood,omitempty"`
	City     string         `json:"city,omitempty"`
	Lat      *float64       `json:"lat,omitempty"`
	Lng      *float64       `json:"lng,omitempty"`
}

// Result summarises an ingested track.
type Result struct {
	TrackID      string    `json:"track_id"`
	Artist       string    `json:"artist,omitempty"`
	VectorLength int       `json:"vector_length"`
	Sample       []float64 `json:"sample"`
	TotalTracks  int       `json:"total_tracks"`
	City         string    `json:"city"`
	Lat          *float64  `json:"lat"`
	Lng          *float64  `json:"lng"`
	Context      []float64 `json:"context_vector"`
	UploadedAt   time.Time `json:"time"`
}

// Pipeline orchestrates ingestion into the vector store and the catalog.
type Pipeline struct {
	embedder embed.Embedder
	vectors  VectorSink
	index    *vectorstore.IndexFile
	tracks   storage.TrackStore
	locator  geo.Locator
	now      func() time.Time
}

// NewPipeline creates a new ingestion pipeline. index and locator may be nil.
func NewPipeline(
	embedder embed.Embedder,
	vectors VectorSink,
	index *vectorstore.IndexFile,
	tracks storage.TrackStore,
	locator geo.Locator,
) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		vectors:  vectors,
		index:    index,
		tracks:   tracks,
		locator:  locator,
		now:      time.Now,
	}
}

// TrackIDFromFilename derives a track id from an uploaded file name.
func TrackIDFromFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSpace(base)
}

// IngestAudio embeds an upload and records it.
func (p *Pipeline) IngestAudio(ctx context.Context, up Upload) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	trackID := TrackIDFromFilename(up.Filename)
	if trackID == "" {
		return nil, &service.ValidationError{Field: "file", Message: "filename is required"}
	}
	if up.Audio == nil {
		return nil, &service.ValidationError{Field: "file", Message: "audio is required"}
	}
	if up.Source == "" {
		up.Source = SourceEmbed
	}

	vec, err := p.embedder.Embed(ctx, trackID, up.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %s: %w", trackID, err)
	}

	meta := map[string]any{"source": up.Source}
	for k, v := range map[string]string{"title": up.Title, "artist": up.Artist, "genre": up.Genre, "mood": up.Mood} {
		if v != "" {
			meta[k] = v
		}
	}

	res, err := p.record(ctx, trackID, vec, meta, up.Mood, up.Place, up.Source)
	if err != nil {
		return nil, err
	}
	res.Artist = up.Artist

	logger.InfoContext(ctx, "ingested track",
		"track_id", trackID,
		"source", up.Source,
		"artist", up.Artist,
		"city", res.City,
	)
	return res, nil
}

// IngestVector stores a precomputed vector.
func (p *Pipeline) IngestVector(ctx context.Context, up VectorUpload) (*Result, error) {
	if strings.TrimSpace(up.ID) == "" {
		return nil, &service.ValidationError{Field: "id", Message: "cannot be empty"}
	}
	if len(up.Vector) == 0 {
		return nil, &service.ValidationError{Field: "vector", Message: "cannot be empty"}
	}

	meta := make(map[string]any, len(up.Metadata)+1)
	for k, v := range up.Metadata {
		meta[k] = v
	}
	meta["source"] = SourceVector
	mood := up.Mood
	if mood == "" {
		mood, _ = meta["mood"].(string)
	}

	res, err := p.record(ctx, up.ID, up.Vector, meta, mood, geo.Place{City: up.City, Lat: up.Lat, Lng: up.Lng}, SourceVector)
	if err != nil {
		return nil, err
	}
	res.Artist, _ = meta["artist"].(string)
	return res, nil
}

// record stores the vector, refreshes the index snapshot and upserts the catalog row.
func (p *Pipeline) record(
	ctx context.Context,
	trackID string,
	vec []float64,
	meta map[string]any,
	mood string,
	given geo.Place,
	source string,
) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := p.vectors.Put(ctx, trackID, vec, meta); err != nil {
		return nil, fmt.Errorf("failed to store vector: %w", err)
	}
	if p.index != nil {
		if err := p.vectors.SaveIndex(p.index); err != nil {
			logger.WarnContext(ctx, "failed to save vector index",
				"path", p.index.Path(),
				"error", fmt.Errorf("%w: %v", service.ErrPersistenceUnavailable, err),
			)
		}
	}

	place := geo.Resolve(ctx, p.locator, given)
	fingerprint := similarity.ContextFingerprint(mood)
	now := p.now().UTC()

	track := &storage.Track{
		ID:         trackID,
		Title:      stringField(meta, "title"),
		Artist:     stringField(meta, "artist"),
		Genre:      stringField(meta, "genre"),
		Mood:       strings.ToLower(strings.TrimSpace(mood)),
		City:       place.City,
		Lat:        place.Lat,
		Lng:        place.Lng,
		Context:    fingerprint,
		Source:     source,
		UploadedAt: now,
	}
	if err := p.tracks.Upsert(ctx, track); err != nil {
		return nil, fmt.Errorf("failed to record track %s: %w", trackID, err)
	}
	metrics.TracksIngested.WithLabelValues(source).Inc()

	return &Result{
		TrackID:      trackID,
		VectorLength: len(vec),
		Sample:       roundAll(vec[:min(5, len(vec))], 5),
		TotalTracks:  p.vectors.Size(),
		City:         place.City,
		Lat:          place.Lat,
		Lng:          place.Lng,
		Context:      roundAll(fingerprint, 3),
		UploadedAt:   now,
	}, nil
}

func stringField(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

func roundAll(v []float64, places int) []float64 {
	scale := math.Pow(10, float64(places))
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Round(x*scale) / scale
	}
	return out
}
