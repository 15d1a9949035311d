// Package recommend ranks stored tracks for a user by blending content
// similarity with popularity and freshness.
package recommend

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ranker.go -package=mocks github.com/Git20254/ai-core-public/internal/recommend Ranker

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/metrics"
	"github.com/Git20254/ai-core-public/internal/similarity"
)

// Ranker produces ranked recommendations.
type Ranker interface {
	// Rank scores every eligible stored track against the user's fused vector
	// and returns the best TopN.
	Rank(ctx context.Context, req Request) (Result, error)
}

// Options configures a ranker. Every collaborator other than the store is optional.
type Options struct {
	Weights       Weights
	ZeroAggregate ZeroAggregatePolicy
	// History supplies play counts and consumed-track exclusion.
	History History
	// Trends, when set, has the top result boosted by BoostFactor.
	Trends      TrendBooster
	BoostFactor float64
	// Recorder, when set, counts the top result as recommended once more.
	Recorder RecommendationRecorder
}

// hybridRanker implements the Ranker interface.
type hybridRanker struct {
	store    VectorSource
	weights  Weights
	policy   ZeroAggregatePolicy
	history  History
	trends   TrendBooster
	boost    float64
	recorder RecommendationRecorder
}

// NewRanker creates a ranker over store.
func NewRanker(store VectorSource, opts Options) Ranker {
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	if opts.ZeroAggregate == "" {
		opts.ZeroAggregate = ZeroAggregateNeutral
	}
	if opts.BoostFactor <= 1 {
		opts.BoostFactor = 1.1
	}
	return &hybridRanker{
		store:    store,
		weights:  opts.Weights,
		policy:   opts.ZeroAggregate,
		history:  opts.History,
		trends:   opts.Trends,
		boost:    opts.BoostFactor,
		recorder: opts.Recorder,
	}
}

// Rank scores every stored track and returns the top req.TopN.
func (r *hybridRanker) Rank(ctx context.Context, req Request) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()
	defer func() {
		metrics.RankDuration.Observe(time.Since(start).Seconds())
	}()

	if req.TopN <= 0 || req.TopN > MaxTopN {
		metrics.RankRequests.WithLabelValues("rejected").Inc()
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidTopN, req.TopN)
	}
	if r.store.Size() == 0 {
		metrics.RankRequests.WithLabelValues("empty_store").Inc()
		return Result{}, ErrEmptyStore
	}

	userVec := r.store.AggregateVector(req.UserID)
	personalized := !similarity.IsZero(userVec)
	if !personalized && r.policy == ZeroAggregateReject {
		metrics.RankRequests.WithLabelValues("rejected").Inc()
		return Result{}, ErrInvalidUserVector
	}

	mood := strings.ToLower(strings.TrimSpace(req.Mood))
	var contextVec []float64
	if mood != "" {
		contextVec = similarity.MoodVector(mood)
	}
	fused := similarity.Fuse(userVec, contextVec, r.weights.Fusion)
	bonus := similarity.MoodBonus(mood)

	excluded := make(map[string]struct{}, len(req.Exclude))
	for _, id := range req.Exclude {
		excluded[id] = struct{}{}
	}

	records := r.store.Records()
	candidates := make([]Item, 0, len(records))
	for _, rec := range records {
		if _, skip := excluded[rec.ID]; skip {
			continue
		}
		if r.history != nil && req.UserID != "" && r.history.HasConsumed(req.UserID, rec.ID) {
			continue
		}

		sim := similarity.Cosine(fused, rec.Vector) * bonus
		var plays int64
		if r.history != nil {
			plays = r.history.PlayCount(rec.ID)
		}
		score := r.weights.Similarity*sim +
			r.weights.Popularity*math.Log1p(float64(plays)) +
			r.weights.Freshness*DefaultFreshness

		candidates = append(candidates, Item{
			TrackID:    rec.ID,
			Artist:     artistOf(rec.Metadata),
			Score:      score,
			Similarity: sim,
			Plays:      plays,
		})
	}

	// Ties keep insertion order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	items := candidates[:min(req.TopN, len(candidates))]

	res := Result{
		UserID:          req.UserID,
		Mood:            mood,
		Personalized:    personalized,
		Recommendations: items,
		Analytics: Analytics{
			TotalTracks: len(records),
		},
	}
	if res.Mood == "" {
		res.Mood = "neutral"
	}
	if r.history != nil {
		res.Analytics.TotalUsers = r.history.UserCount()
	}

	if len(items) > 0 {
		r.recordTop(ctx, &res)
	}

	metrics.RankRequests.WithLabelValues("ok").Inc()
	logger.InfoContext(ctx, "ranked tracks",
		"user_id", req.UserID,
		"mood", res.Mood,
		"candidates", len(candidates),
		"returned", len(items),
		"personalized", personalized,
	)
	return res, nil
}

// recordTop applies the side effects of recommending the top result.
// Failures are logged and never fail the ranking.
func (r *hybridRanker) recordTop(ctx context.Context, res *Result) {
	logger := contextutil.LoggerFromContext(ctx)
	top := res.Recommendations[0].TrackID

	if r.trends != nil {
		score, err := r.trends.Boost(ctx, top, r.boost)
		if err != nil {
			logger.WarnContext(ctx, "failed to boost trend score", "track_id", top, "error", err)
		}
		if score > 0 {
			res.Boosted = top
			res.TrendScore = &score
		}
	}
	if r.recorder != nil {
		if err := r.recorder.IncrementRecommendations(ctx, top); err != nil {
			logger.WarnContext(ctx, "failed to record recommendation", "track_id", top, "error", err)
		}
	}
}

func artistOf(meta map[string]any) string {
	if a, ok := meta["artist"].(string); ok && a != "" {
		return a
	}
	return UnknownArtist
}
