package recommend

import (
	"context"
	"errors"

	"github.com/Git20254/ai-core-public/internal/vectorstore"
)

const (
	// DefaultTopN is the result count when the caller does not ask for one.
	DefaultTopN = 5
	// MaxTopN bounds the result count.
	MaxTopN = 50
	// DefaultFreshness is used for every track until a better signal exists.
	DefaultFreshness = 1.0
	// UnknownArtist labels tracks without artist metadata.
	UnknownArtist = "Unknown Artist"
)

var (
	// ErrEmptyStore is returned when there are no tracks to rank.
	ErrEmptyStore = errors.New("no tracks available")
	// ErrInvalidUserVector is returned when the user aggregate is all zeros
	// and the ranker is configured to reject that case.
	ErrInvalidUserVector = errors.New("no valid user embedding available")
	// ErrInvalidTopN is returned when top_n is outside 1..MaxTopN.
	ErrInvalidTopN = errors.New("top_n must be between 1 and 50")
)

// ZeroAggregatePolicy decides what an all-zero user aggregate means.
type ZeroAggregatePolicy string

const (
	// ZeroAggregateNeutral ranks without personalisation.
	ZeroAggregateNeutral ZeroAggregatePolicy = "neutral"
	// ZeroAggregateReject fails with ErrInvalidUserVector.
	ZeroAggregateReject ZeroAggregatePolicy = "reject"
)

// Weights are the coefficients of the hybrid score:
// final = Similarity*sim + Popularity*log1p(plays) + Freshness*freshness.
// Fusion is the share of the mood vector in the fused user vector.
type Weights struct {
	Similarity float64 `json:"similarity"`
	Popularity float64 `json:"popularity"`
	Freshness  float64 `json:"freshness"`
	Fusion     float64 `json:"fusion"`
}

// DefaultWeights returns 0.6 / 0.3 / 0.1 with fusion weight 0.25.
func DefaultWeights() Weights {
	return Weights{
		Similarity: 0.6,
		Popularity: 0.3,
		Freshness:  0.1,
		Fusion:     0.25,
	}
}

// Request is one ranking call.
type Request struct {
	UserID string `json:"user_id"`
	// Mood selects a context vector; empty means no fusion.
	Mood string `json:"mood,omitempty"`
	// TopN must be in 1..MaxTopN.
	TopN int `json:"top_n"`
	// Exclude lists track ids to leave out.
	Exclude []string `json:"exclude,omitempty"`
}

// Item is one ranked track.
type Item struct {
	TrackID    string  `json:"track_id"`
	Artist     string  `json:"artist"`
	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
	Plays      int64   `json:"plays"`
}

// Analytics summarises the data a ranking was computed over.
type Analytics struct {
	TotalUsers  int `json:"total_users"`
	TotalTracks int `json:"total_tracks"`
}

// Result is the outcome of a ranking call.
type Result struct {
	UserID          string    `json:"user_id"`
	Mood            string    `json:"mood"`
	Personalized    bool      `json:"personalized"`
	Recommendations []Item    `json:"recommendations"`
	Analytics       Analytics `json:"analytics"`
	// Boosted is the track whose trend score was raised by this call.
	Boosted    string   `json:"boosted,omitempty"`
	TrendScore *float64 `json:"trend_score,omitempty"`
}

// VectorSource is the read side of the vector store used by the ranker.
type VectorSource interface {
	Size() int
	AggregateVector(userID string) []float64
	Records() []vectorstore.Record
}

// History supplies play counts and already-heard tracks.
type History interface {
	PlayCount(trackID string) int64
	HasConsumed(userID, trackID string) bool
	UserCount() int
}

// TrendBooster raises a track's trend score.
type TrendBooster interface {
	Boost(ctx context.Context, trackID string, factor float64) (float64, error)
}

// RecommendationRecorder counts how often a track was the top recommendation.
type RecommendationRecorder interface {
	IncrementRecommendations(ctx context.Context, id string) error
}
