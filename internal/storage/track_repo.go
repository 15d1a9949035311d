package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_track_store.go -package=mocks github.com/Git20254/ai-core-public/internal/storage TrackStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// TrackStore defines the interface for track catalog operations.
type TrackStore interface {
	// Upsert inserts a track or updates its descriptive fields.
	// Play and recommendation counters of an existing row are preserved.
	Upsert(ctx context.Context, track *Track) error
	// Get returns a track by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Track, error)
	// List returns every track, newest upload first.
	List(ctx context.Context) ([]Track, error)
	// ListWithLocation returns tracks that carry coordinates.
	ListWithLocation(ctx context.Context) ([]Track, error)
	// IncrementPlays adds one to a track's play counter. Unknown ids are ignored.
	IncrementPlays(ctx context.Context, id string) error
	// IncrementRecommendations adds one to a track's recommendation counter.
	IncrementRecommendations(ctx context.Context, id string) error
	// CountUploadsSince counts tracks uploaded at or after since.
	CountUploadsSince(ctx context.Context, since time.Time) (int, error)
}

// TrackRepo provides methods for track operations.
// It implements the TrackStore interface.
type TrackRepo struct {
	db *sql.DB
}

// NewTrackRepo creates a new TrackRepo.
func NewTrackRepo(db *sql.DB) *TrackRepo {
	return &TrackRepo{db: db}
}

const trackColumns = "id, title, artist, genre, mood, city, lat, lng, context, source, plays, recommendations, uploaded_at"

// Upsert inserts a track or updates its descriptive fields.
// A zero UploadedAt is set to the current time.
func (r *TrackRepo) Upsert(ctx context.Context, track *Track) error {
	if track.ID == "" {
		return fmt.Errorf("track id cannot be empty")
	}
	if track.UploadedAt.IsZero() {
		track.UploadedAt = time.Now().UTC().Truncate(time.Second)
	}

	contextVec := track.Context
	if contextVec == nil {
		contextVec = []float64{}
	}
	contextJSON, err := json.Marshal(contextVec)
	if err != nil {
		return fmt.Errorf("failed to encode context fingerprint: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tracks (id, title, artist, genre, mood, city, lat, lng, context, source, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 title = excluded.title, artist = excluded.artist, genre = excluded.genre,
		 mood = excluded.mood, city = excluded.city, lat = excluded.lat, lng = excluded.lng,
		 context = excluded.context, source = excluded.source, uploaded_at = excluded.uploaded_at`,
		track.ID, track.Title, track.Artist, track.Genre, track.Mood, track.City,
		nullFloat(track.Lat), nullFloat(track.Lng), string(contextJSON), track.Source,
		formatTime(track.UploadedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert track: %w", err)
	}
	return nil
}

// Get returns a track by ID. Returns ErrNotFound if not found.
func (r *TrackRepo) Get(ctx context.Context, id string) (*Track, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+trackColumns+" FROM tracks WHERE id = ?", id)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query track: %w", err)
	}
	return track, nil
}

// List returns every track, newest upload first.
func (r *TrackRepo) List(ctx context.Context) ([]Track, error) {
	return r.query(ctx, "SELECT "+trackColumns+" FROM tracks ORDER BY uploaded_at DESC, id")
}

// ListWithLocation returns tracks that carry coordinates.
func (r *TrackRepo) ListWithLocation(ctx context.Context) ([]Track, error) {
	return r.query(ctx, "SELECT "+trackColumns+" FROM tracks WHERE lat IS NOT NULL AND lng IS NOT NULL ORDER BY uploaded_at DESC, id")
}

func (r *TrackRepo) query(ctx context.Context, q string, args ...any) ([]Track, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tracks []Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, *track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tracks: %w", err)
	}
	return tracks, nil
}

// IncrementPlays adds one to a track's play counter.
func (r *TrackRepo) IncrementPlays(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE tracks SET plays = plays + 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to increment plays: %w", err)
	}
	return nil
}

// IncrementRecommendations adds one to a track's recommendation counter.
func (r *TrackRepo) IncrementRecommendations(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE tracks SET recommendations = recommendations + 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to increment recommendations: %w", err)
	}
	return nil
}

// CountUploadsSince counts tracks uploaded at or after since.
func (r *TrackRepo) CountUploadsSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tracks WHERE uploaded_at >= ?", formatTime(since),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count uploads: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (*Track, error) {
	var (
		track       Track
		lat, lng    sql.NullFloat64
		contextJSON string
		uploadedAt  string
	)
	err := row.Scan(&track.ID, &track.Title, &track.Artist, &track.Genre, &track.Mood, &track.City,
		&lat, &lng, &contextJSON, &track.Source, &track.Plays, &track.Recommendations, &uploadedAt)
	if err != nil {
		return nil, err
	}

	if lat.Valid {
		track.Lat = &lat.Float64
	}
	if lng.Valid {
		track.Lng = &lng.Float64
	}
	if err := json.Unmarshal([]byte(contextJSON), &track.Context); err != nil {
		// A bad fingerprint only loses context scoring for this track.
		track.Context = nil
	}

	track.UploadedAt, err = parseTime(uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse uploaded_at timestamp: %w", err)
	}
	return &track, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
