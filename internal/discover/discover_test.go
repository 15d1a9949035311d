package discover

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Git20254/ai-core-public/internal/service"
	"github.com/Git20254/ai-core-public/internal/storage"
	"github.com/Git20254/ai-core-public/internal/storage/mocks"
	"github.com/Git20254/ai-core-public/internal/vectorstore"
)

var lagos = Location{Lat: 6.5244, Lng: 3.3792}

func coord(v float64) *float64 { return &v }

func catalog(now time.Time) []storage.Track {
	return []storage.Track{
		{ID: "abeokuta", City: "Abeokuta", Lat: coord(7.1475), Lng: coord(3.3619),
			Plays: 20, Recommendations: 5, UploadedAt: now.Add(-14 * 24 * time.Hour)},
		{ID: "lekki", City: "Lagos", Lat: coord(6.4698), Lng: coord(3.5852),
			Context: []float64{0.1, 0.3, 0.9}, Recommendations: 10, UploadedAt: now.Add(-7 * 24 * time.Hour)},
		{ID: "ikeja", City: "Lagos", Lat: coord(6.6018), Lng: coord(3.3515),
			Context: []float64{0.5, 0.2, 0.7}, Plays: 10, UploadedAt: now},
		{ID: "abuja", City: "Abuja", Lat: coord(9.0765), Lng: coord(7.3986), Plays: 500, UploadedAt: now},
		{ID: "unplaced", Plays: 100, UploadedAt: now},
	}
}

func newTestService(t *testing.T, now time.Time, vectors Vectors) *Service {
	t.Helper()
	ctrl := gomock.NewController(t)
	tracks := mocks.NewMockTrackStore(ctrl)
	tracks.EXPECT().ListWithLocation(gomock.Any()).Return(catalog(now), nil).AnyTimes()

	s := NewService(tracks, vectors)
	s.now = func() time.Time { return now }
	return s
}

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 111.195, HaversineKm(0, 0, 0, 1), 0.01)
	assert.InDelta(t, 0, HaversineKm(lagos.Lat, lagos.Lng, lagos.Lat, lagos.Lng), 1e-9)
	assert.InDelta(t,
		HaversineKm(6.5244, 3.3792, 9.0765, 7.3986),
		HaversineKm(9.0765, 7.3986, 6.5244, 3.3792), 1e-9)
}

func TestNearby_DefaultRadiusSortedByDistance(t *testing.T) {
	s := newTestService(t, time.Now(), nil)

	loc, results, err := s.Nearby(context.Background(), lagos)
	require.NoError(t, err)
	assert.Equal(t, DefaultNearbyRadiusKm, loc.RadiusKm)

	require.Len(t, results, 2)
	assert.Equal(t, "ikeja", results[0].TrackID)
	assert.Equal(t, "lekki", results[1].TrackID)
	assert.Less(t, results[0].DistanceKm, results[1].DistanceKm)
	assert.Equal(t, round2(results[0].DistanceKm), results[0].DistanceKm)
}

func TestNearby_CustomRadius(t *testing.T) {
	s := newTestService(t, time.Now(), nil)

	loc := lagos
	loc.RadiusKm = 100
	_, results, err := s.Nearby(context.Background(), loc)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "abeokuta", results[2].TrackID)
}

func TestNearby_InvalidLocation(t *testing.T) {
	s := newTestService(t, time.Now(), nil)

	for _, loc := range []Location{
		{Lat: 91, Lng: 0},
		{Lat: 0, Lng: -181},
		{Lat: 0, Lng: 0, RadiusKm: -1},
		{Lat: math.NaN(), Lng: 0},
	} {
		_, _, err := s.Nearby(context.Background(), loc)
		assert.ErrorIs(t, err, service.ErrInvalidInput, "%+v", loc)
	}
}

func TestNearby_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracks := mocks.NewMockTrackStore(ctrl)
	boom := errors.New("database is locked")
	tracks.EXPECT().ListWithLocation(gomock.Any()).Return(nil, boom)

	_, _, err := NewService(tracks, nil).Nearby(context.Background(), lagos)
	assert.ErrorIs(t, err, boom)
}

func TestRanked_FallbackAudio(t *testing.T) {
	s := newTestService(t, time.Now(), nil)

	loc, results, err := s.Ranked(context.Background(), lagos, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultRankedRadiusKm, loc.RadiusKm)
	require.Len(t, results, 3)

	top := results[0]
	assert.Equal(t, "ikeja", top.TrackID)
	assert.InDelta(t, unknownTrackAudio, top.AudioSimilarity, 1e-12)
	assert.InDelta(t, 1.0, top.ContextSimilarity, 1e-9)

	d := HaversineKm(lagos.Lat, lagos.Lng, 6.6018, 3.3515)
	assert.InDelta(t, 0.3*0.4+1.0*0.4+(1-d/100)*0.2, top.Score, 1e-9)

	// No context fingerprint scores zero on context.
	assert.Equal(t, "abeokuta", results[2].TrackID)
	assert.Zero(t, results[2].ContextSimilarity)
}

func TestRanked_MoodChangesContext(t *testing.T) {
	s := newTestService(t, time.Now(), nil)

	_, results, err := s.Ranked(context.Background(), lagos, "u1", "sad")
	require.NoError(t, err)
	assert.Equal(t, "lekki", results[0].TrackID)
	assert.InDelta(t, 1.0, results[0].ContextSimilarity, 1e-9)
}

func TestRanked_StoredVectors(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.NewStore(ctx, vectorstore.Options{})
	require.NoError(t, store.Put(ctx, "lekki", []float64{1, 0, 0}, nil))

	s := newTestService(t, time.Now(), store)
	_, results, err := s.Ranked(ctx, lagos, "u1", "")
	require.NoError(t, err)

	byID := map[string]RankedTrack{}
	for _, r := range results {
		byID[r.TrackID] = r
	}
	assert.InDelta(t, 1.0, byID["lekki"].AudioSimilarity, 1e-9)
	assert.InDelta(t, unknownTrackAudio, byID["ikeja"].AudioSimilarity, 1e-12)
}

func TestTrending_DecayOrdersByMomentum(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, now, nil)

	_, results, err := s.Trending(context.Background(), lagos)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, []string{"ikeja", "abeokuta", "lekki"},
		[]string{results[0].TrackID, results[1].TrackID, results[2].TrackID})

	assert.InDelta(t, 10*0.6, results[0].TrendScore, 1e-9)
	assert.InDelta(t, (20*0.6+5*0.4)*math.Exp(-2), results[1].TrendScore, 1e-9)
	assert.InDelta(t, 10*0.4*math.Exp(-1), results[2].TrendScore, 1e-9)
	assert.Equal(t, 14.0, results[1].AgeDays)
}
