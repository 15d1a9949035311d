// Package discover finds tracks uploaded near a location and ranks them by
// distance, listener fit and momentum.
package discover

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/service"
	"github.com/Git20254/ai-core-public/internal/similarity"
	"github.com/Git20254/ai-core-public/internal/storage"
)

const (
	// DefaultNearbyRadiusKm is the search radius for plain nearby lookups.
	DefaultNearbyRadiusKm = 50.0
	// DefaultRankedRadiusKm is the search radius for ranked and trending lookups.
	DefaultRankedRadiusKm = 100.0
	// TopN bounds ranked and trending results.
	TopN = 10

	// Fallback audio similarities when no personal signal exists.
	knownTrackAudio   = 0.5
	unknownTrackAudio = 0.3

	trendDecayDays = 7.0
)

// Location is the search origin.
type Location struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radius_km"`
}

// Validate checks coordinate ranges.
func (l Location) Validate() error {
	if math.IsNaN(l.Lat) || l.Lat < -90 || l.Lat > 90 {
		return &service.ValidationError{Field: "lat", Message: "must be between -90 and 90"}
	}
	if math.IsNaN(l.Lng) || l.Lng < -180 || l.Lng > 180 {
		return &service.ValidationError{Field: "lng", Message: "must be between -180 and 180"}
	}
	if math.IsNaN(l.RadiusKm) || l.RadiusKm < 0 {
		return &service.ValidationError{Field: "radius_km", Message: "must not be negative"}
	}
	return nil
}

func (l Location) withDefaultRadius(r float64) Location {
	if l.RadiusKm == 0 {
		l.RadiusKm = r
	}
	return l
}

// NearbyTrack is a track within the search radius.
type NearbyTrack struct {
	TrackID    string    `json:"track_id"`
	City       string    `json:"city"`
	DistanceKm float64   `json:"distance_km"`
	Context    []float64 `json:"context_vector"`
	UploadedAt time.Time `json:"time"`
}

// RankedTrack is a nearby track scored for a listener.
type RankedTrack struct {
	TrackID           string  `json:"track_id"`
	City              string  `json:"city"`
	DistanceKm        float64 `json:"distance_km"`
	Score             float64 `json:"score"`
	AudioSimilarity   float64 `json:"audio_similarity"`
	ContextSimilarity float64 `json:"context_similarity"`
}

// TrendingTrack is a nearby track scored by recent engagement.
type TrendingTrack struct {
	TrackID         string  `json:"track_id"`
	City            string  `json:"city"`
	DistanceKm      float64 `json:"distance_km"`
	Plays           int64   `json:"plays"`
	Recommendations int64   `json:"recommendations"`
	AgeDays         float64 `json:"age_days"`
	TrendScore      float64 `json:"trend_score"`
}

// TrackLister returns catalog tracks that carry coordinates.
type TrackLister interface {
	ListWithLocation(ctx context.Context) ([]storage.Track, error)
}

// Vectors is the read side of the vector store used for audio similarity.
type Vectors interface {
	AggregateVector(userID string) []float64
	Get(ctx context.Context, id string) ([]float64, bool)
}

// Service answers discovery queries.
type Service struct {
	tracks  TrackLister
	vectors Vectors
	now     func() time.Time
}

// NewService creates a discovery service. vectors may be nil, in which case
// audio similarity uses the fallback values.
func NewService(tracks TrackLister, vectors Vectors) *Service {
	return &Service{
		tracks:  tracks,
		vectors: vectors,
		now:     time.Now,
	}
}

type located struct {
	track    storage.Track
	distance float64
}

// within returns catalog tracks inside loc's radius, nearest first.
func (s *Service) within(ctx context.Context, loc Location) ([]located, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	tracks, err := s.tracks.ListWithLocation(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list located tracks: %w", err)
	}

	out := make([]located, 0, len(tracks))
	for _, t := range tracks {
		if !t.HasLocation() {
			continue
		}
		d := HaversineKm(loc.Lat, loc.Lng, *t.Lat, *t.Lng)
		if d <= loc.RadiusKm {
			out = append(out, located{track: t, distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].distance < out[j].distance
	})
	return out, nil
}

// Nearby lists tracks inside the radius (default 50 km), nearest first.
func (s *Service) Nearby(ctx context.Context, loc Location) (Location, []NearbyTrack, error) {
	loc = loc.withDefaultRadius(DefaultNearbyRadiusKm)
	found, err := s.within(ctx, loc)
	if err != nil {
		return loc, nil, err
	}

	results := make([]NearbyTrack, 0, len(found))
	for _, f := range found {
		results = append(results, NearbyTrack{
			TrackID:    f.track.ID,
			City:       f.track.City,
			DistanceKm: round2(f.distance),
			Context:    f.track.Context,
			UploadedAt: f.track.UploadedAt,
		})
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "nearby discovery",
		"lat", loc.Lat, "lng", loc.Lng, "radius_km", loc.RadiusKm, "count", len(results))
	return loc, results, nil
}

// Ranked scores tracks inside the radius (default 100 km) for a listener:
// 0.4 audio similarity + 0.4 context similarity + 0.2 distance factor.
// The best TopN are returned.
func (s *Service) Ranked(ctx context.Context, loc Location, userID, mood string) (Location, []RankedTrack, error) {
	loc = loc.withDefaultRadius(DefaultRankedRadiusKm)
	found, err := s.within(ctx, loc)
	if err != nil {
		return loc, nil, err
	}

	listener := similarity.ContextFingerprint(mood)
	var aggregate []float64
	if s.vectors != nil {
		aggregate = s.vectors.AggregateVector(userID)
	}

	results := make([]RankedTrack, 0, len(found))
	for _, f := range found {
		audio := s.audioSimilarity(ctx, aggregate, f.track.ID)
		contextSim := 0.0
		if len(f.track.Context) > 0 {
			contextSim = math.Max(0, similarity.Cosine(listener, f.track.Context))
		}
		distanceFactor := 0.0
		if loc.RadiusKm > 0 {
			distanceFactor = math.Max(0, 1-f.distance/loc.RadiusKm)
		}

		results = append(results, RankedTrack{
			TrackID:           f.track.ID,
			City:              f.track.City,
			DistanceKm:        round2(f.distance),
			Score:             audio*0.4 + contextSim*0.4 + distanceFactor*0.2,
			AudioSimilarity:   audio,
			ContextSimilarity: contextSim,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return loc, results[:min(TopN, len(results))], nil
}

// audioSimilarity compares the listener aggregate with a stored track vector.
// Without a usable aggregate, tracks present in the store get 0.5 and absent ones 0.3.
func (s *Service) audioSimilarity(ctx context.Context, aggregate []float64, trackID string) float64 {
	if s.vectors == nil {
		return unknownTrackAudio
	}
	vec, ok := s.vectors.Get(ctx, trackID)
	if !ok {
		return unknownTrackAudio
	}
	if similarity.IsZero(aggregate) {
		return knownTrackAudio
	}
	return math.Max(0, similarity.Cosine(aggregate, vec))
}

// Trending scores tracks inside the radius (default 100 km) by
// (plays*0.6 + recommendations*0.4) * exp(-age_days/7) and returns the best TopN.
func (s *Service) Trending(ctx context.Context, loc Location) (Location, []TrendingTrack, error) {
	loc = loc.withDefaultRadius(DefaultRankedRadiusKm)
	found, err := s.within(ctx, loc)
	if err != nil {
		return loc, nil, err
	}

	now := s.now()
	results := make([]TrendingTrack, 0, len(found))
	for _, f := range found {
		age := 0.0
		if !f.track.UploadedAt.IsZero() {
			age = math.Max(0, now.Sub(f.track.UploadedAt).Hours()/24)
		}
		engagement := float64(f.track.Plays)*0.6 + float64(f.track.Recommendations)*0.4

		results = append(results, TrendingTrack{
			TrackID:         f.track.ID,
			City:            f.track.City,
			DistanceKm:      round2(f.distance),
			Plays:           f.track.Plays,
			Recommendations: f.track.Recommendations,
			AgeDays:         round2(age),
			TrendScore:      engagement * math.Exp(-age/trendDecayDays),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TrendScore > results[j].TrendScore
	})
	return loc, results[:min(TopN, len(results))], nil
}
