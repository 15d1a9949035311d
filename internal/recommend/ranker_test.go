package recommend

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Git20254/ai-core-public/internal/history"
	"github.com/Git20254/ai-core-public/internal/trend"
	"github.com/Git20254/ai-core-public/internal/vectorstore"
)

type track struct {
	id     string
	vector []float64
	meta   map[string]any
}

func newStore(t *testing.T, tracks ...track) *vectorstore.Store {
	t.Helper()
	ctx := context.Background()
	s := vectorstore.NewStore(ctx, vectorstore.Options{})
	for _, tr := range tracks {
		require.NoError(t, s.Put(ctx, tr.id, tr.vector, tr.meta))
	}
	return s
}

func trackIDs(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.TrackID
	}
	return out
}

type failingBooster struct{ calls int }

func (f *failingBooster) Boost(context.Context, string, float64) (float64, error) {
	f.calls++
	return 0, errors.New("disk full")
}

type countingRecorder struct{ ids []string }

func (c *countingRecorder) IncrementRecommendations(_ context.Context, id string) error {
	c.ids = append(c.ids, id)
	return nil
}

func TestRank_EmptyStore(t *testing.T) {
	r := NewRanker(newStore(t), Options{})

	_, err := r.Rank(context.Background(), Request{UserID: "u1", TopN: 5})
	assert.ErrorIs(t, err, ErrEmptyStore)
}

func TestRank_InvalidTopN(t *testing.T) {
	r := NewRanker(newStore(t, track{id: "A", vector: []float64{1, 0}}), Options{})

	for _, n := range []int{0, -1, MaxTopN + 1} {
		_, err := r.Rank(context.Background(), Request{UserID: "u1", TopN: n})
		assert.ErrorIs(t, err, ErrInvalidTopN, "top_n=%d", n)
	}
}

func TestRank_TiesKeepInsertionOrder(t *testing.T) {
	s := newStore(t,
		track{id: "A", vector: []float64{1, 0, 0}},
		track{id: "B", vector: []float64{0, 1, 0}},
	)
	require.Equal(t, []float64{0.5, 0.5, 0}, s.AggregateVector("u1"))

	r := NewRanker(s, Options{})
	res, err := r.Rank(context.Background(), Request{UserID: "u1", TopN: 5})
	require.NoError(t, err)

	require.Equal(t, []string{"A", "B"}, trackIDs(res.Recommendations))
	assert.Equal(t, res.Recommendations[0].Score, res.Recommendations[1].Score)
	assert.Equal(t, "neutral", res.Mood)
	assert.True(t, res.Personalized)

	// Deterministic for identical inputs.
	again, err := r.Rank(context.Background(), Request{UserID: "u1", TopN: 5})
	require.NoError(t, err)
	assert.Equal(t, res.Recommendations, again.Recommendations)
}

func TestRank_ScoreFormula(t *testing.T) {
	s := newStore(t, track{id: "A", vector: []float64{0.3, 0.4}, meta: map[string]any{"artist": "Ayo"}})

	res, err := NewRanker(s, Options{}).Rank(context.Background(), Request{UserID: "u1", TopN: 1})
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 1)

	item := res.Recommendations[0]
	assert.InDelta(t, 1.0, item.Similarity, 1e-12)
	assert.InDelta(t, 0.6*1.0+0.3*0+0.1*1.0, item.Score, 1e-12)
	assert.Equal(t, "Ayo", item.Artist)
}

func TestRank_UnknownArtist(t *testing.T) {
	s := newStore(t, track{id: "A", vector: []float64{1}})
	res, err := NewRanker(s, Options{}).Rank(context.Background(), Request{TopN: 1})
	require.NoError(t, err)
	assert.Equal(t, UnknownArtist, res.Recommendations[0].Artist)
}

func TestRank_ZeroAggregatePolicy(t *testing.T) {
	tracks := []track{
		{id: "A", vector: []float64{1, 0}},
		{id: "B", vector: []float64{-1, 0}},
	}

	t.Run("neutral ranks without personalisation", func(t *testing.T) {
		r := NewRanker(newStore(t, tracks...), Options{ZeroAggregate: ZeroAggregateNeutral})
		res, err := r.Rank(context.Background(), Request{UserID: "u1", TopN: 5})
		require.NoError(t, err)
		assert.False(t, res.Personalized)
		assert.Equal(t, []string{"A", "B"}, trackIDs(res.Recommendations))
	})

	t.Run("reject fails", func(t *testing.T) {
		r := NewRanker(newStore(t, tracks...), Options{ZeroAggregate: ZeroAggregateReject})
		_, err := r.Rank(context.Background(), Request{UserID: "u1", TopN: 5})
		assert.ErrorIs(t, err, ErrInvalidUserVector)
	})
}

func TestRank_MoodFusionShiftsOrder(t *testing.T) {
	tracks := []track{
		{id: "bright", vector: []float64{0.9, 0.8, 0.2}},
		{id: "blue", vector: []float64{0.1, 0.3, 0.9}},
	}
	r := NewRanker(newStore(t, tracks...), Options{})

	tests := []struct {
		mood  string
		first string
	}{
		{mood: "happy", first: "bright"},
		{mood: "sad", first: "blue"},
	}
	for _, tt := range tests {
		t.Run(tt.mood, func(t *testing.T) {
			res, err := r.Rank(context.Background(), Request{UserID: "u1", Mood: tt.mood, TopN: 2})
			require.NoError(t, err)
			assert.Equal(t, tt.first, res.Recommendations[0].TrackID)
			assert.Equal(t, tt.mood, res.Mood)
		})
	}
}

func TestRank_MoodBonusScalesSimilarity(t *testing.T) {
	s := newStore(t, track{id: "A", vector: []float64{0.5, 0.5, 0.5}})
	r := NewRanker(s, Options{})

	plain, err := r.Rank(context.Background(), Request{TopN: 1})
	require.NoError(t, err)
	// The neutral mood vector is parallel to A, so fusion keeps similarity at 1.
	chill, err := r.Rank(context.Background(), Request{Mood: "Chill", TopN: 1})
	require.NoError(t, err)

	assert.InDelta(t, plain.Recommendations[0].Similarity*1.1, chill.Recommendations[0].Similarity, 1e-9)
}

func TestRank_PopularityBreaksContentTie(t *testing.T) {
	ctx := context.Background()
	s := newStore(t,
		track{id: "A", vector: []float64{1, 1}},
		track{id: "B", vector: []float64{1, 1}},
	)
	h := history.NewTracker(nil, nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, h.RecordPlay(ctx, "", "B"))
	}

	res, err := NewRanker(s, Options{History: h}).Rank(ctx, Request{UserID: "u1", TopN: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"B", "A"}, trackIDs(res.Recommendations))

	diff := res.Recommendations[0].Score - res.Recommendations[1].Score
	assert.InDelta(t, 0.3*math.Log1p(3), diff, 1e-12)
	assert.Equal(t, int64(3), res.Recommendations[0].Plays)
}

func TestRank_Exclusions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t,
		track{id: "A", vector: []float64{1, 0}},
		track{id: "B", vector: []float64{0, 1}},
		track{id: "C", vector: []float64{1, 1}},
	)
	h := history.NewTracker(nil, nil)
	require.NoError(t, h.RecordPlay(ctx, "u1", "A"))

	r := NewRanker(s, Options{History: h})

	res, err := r.Rank(ctx, Request{UserID: "u1", TopN: 5, Exclude: []string{"C"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, trackIDs(res.Recommendations))
	assert.Equal(t, 1, res.Analytics.TotalUsers)
	assert.Equal(t, 3, res.Analytics.TotalTracks)

	other, err := r.Rank(ctx, Request{UserID: "u2", TopN: 5})
	require.NoError(t, err)
	assert.Len(t, other.Recommendations, 3)

	// Everything excluded is an empty list, not an error.
	none, err := r.Rank(ctx, Request{UserID: "u1", TopN: 5, Exclude: []string{"B", "C"}})
	require.NoError(t, err)
	assert.Empty(t, none.Recommendations)
}

func TestRank_TopNTruncates(t *testing.T) {
	s := newStore(t,
		track{id: "A", vector: []float64{1, 0}},
		track{id: "B", vector: []float64{0, 1}},
		track{id: "C", vector: []float64{1, 1}},
	)
	res, err := NewRanker(s, Options{}).Rank(context.Background(), Request{TopN: 2})
	require.NoError(t, err)
	assert.Len(t, res.Recommendations, 2)
	assert.Equal(t, "C", res.Recommendations[0].TrackID)
}

func TestRank_BoostsTopResult(t *testing.T) {
	ctx := context.Background()
	s := newStore(t,
		track{id: "A", vector: []float64{1, 0}},
		track{id: "B", vector: []float64{1, 1}},
	)
	ledger := trend.Open(ctx, trend.Options{})
	rec := &countingRecorder{}

	r := NewRanker(s, Options{Trends: ledger, BoostFactor: 1.1, Recorder: rec})
	res, err := r.Rank(ctx, Request{UserID: "u1", TopN: 2})
	require.NoError(t, err)

	top := res.Recommendations[0].TrackID
	assert.Equal(t, top, res.Boosted)
	require.NotNil(t, res.TrendScore)
	assert.InDelta(t, 1.1, *res.TrendScore, 1e-12)

	e, ok := ledger.Get(top)
	require.True(t, ok)
	assert.InDelta(t, 1.1, e.Score, 1e-12)
	assert.Equal(t, 1, ledger.Len())
	assert.Equal(t, []string{top}, rec.ids)
}

func TestRank_WithoutLedgerSkipsBoost(t *testing.T) {
	s := newStore(t, track{id: "A", vector: []float64{1}})
	res, err := NewRanker(s, Options{}).Rank(context.Background(), Request{TopN: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Boosted)
	assert.Nil(t, res.TrendScore)
}

func TestRank_BoostFailureDoesNotFailRanking(t *testing.T) {
	s := newStore(t, track{id: "A", vector: []float64{1}})
	booster := &failingBooster{}

	res, err := NewRanker(s, Options{Trends: booster}).Rank(context.Background(), Request{TopN: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, booster.calls)
	assert.Len(t, res.Recommendations, 1)
	assert.Empty(t, res.Boosted)
}

func TestRank_CustomWeights(t *testing.T) {
	ctx := context.Background()
	s := newStore(t,
		track{id: "close", vector: []float64{1, 0.1}},
		track{id: "popular", vector: []float64{0.1, 1}},
		track{id: "anchor", vector: []float64{1, 0}},
	)
	h := history.NewTracker(nil, nil)
	for i := 0; i < 20; i++ {
		require.NoError(t, h.RecordPlay(ctx, "", "popular"))
	}

	contentOnly := NewRanker(s, Options{History: h, Weights: Weights{Similarity: 1}})
	res, err := contentOnly.Rank(ctx, Request{TopN: 3})
	require.NoError(t, err)
	assert.NotEqual(t, "popular", res.Recommendations[0].TrackID)

	popularityHeavy := NewRanker(s, Options{History: h, Weights: Weights{Similarity: 0.1, Popularity: 0.9}})
	res, err = popularityHeavy.Rank(ctx, Request{TopN: 3})
	require.NoError(t, err)
	assert.Equal(t, "popular", res.Recommendations[0].TrackID)
}
