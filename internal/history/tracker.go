// Package history tracks listening events: per-track play counts feed the
// popularity term of the ranker, and a per-user bloom filter marks tracks the
// user has already heard so they can be left out of recommendations.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/service"
	"github.com/Git20254/ai-core-public/internal/storage"
)

const (
	// expectedPlaysPerUser sizes each user's filter.
	expectedPlaysPerUser = 10000
	// falsePositiveRate is the chance an unheard track is reported as heard.
	falsePositiveRate = 0.01
)

// Tracker holds play counts and consumed-track filters in memory, mirroring
// plays to the catalog when stores are configured.
type Tracker struct {
	mu       sync.RWMutex
	counts   map[string]int64
	consumed map[string]*bloom.BloomFilter

	plays  storage.PlayStore
	tracks storage.TrackStore
}

// NewTracker creates a Tracker. Either store may be nil.
func NewTracker(plays storage.PlayStore, tracks storage.TrackStore) *Tracker {
	return &Tracker{
		counts:   make(map[string]int64),
		consumed: make(map[string]*bloom.BloomFilter),
		plays:    plays,
		tracks:   tracks,
	}
}

// Load replays stored plays into memory and returns how many were read.
func (t *Tracker) Load(ctx context.Context) (int, error) {
	if t.plays == nil {
		return 0, nil
	}
	plays, err := t.plays.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load plays: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range plays {
		t.applyLocked(p.UserID, p.TrackID)
	}
	return len(plays), nil
}

// RecordPlay counts one play of trackID by userID. An empty userID counts
// the play without marking it consumed. Catalog write failures are logged
// and do not fail the call.
func (t *Tracker) RecordPlay(ctx context.Context, userID, trackID string) error {
	if trackID == "" {
		return &service.ValidationError{Field: "track_id", Message: "cannot be empty"}
	}

	t.mu.Lock()
	t.applyLocked(userID, trackID)
	t.mu.Unlock()

	logger := contextutil.LoggerFromContext(ctx)
	if t.plays != nil {
		if err := t.plays.Insert(ctx, &storage.Play{UserID: userID, TrackID: trackID}); err != nil {
			logger.WarnContext(ctx, "failed to store play", "user_id", userID, "track_id", trackID, "error", err)
		}
	}
	if t.tracks != nil {
		if err := t.tracks.IncrementPlays(ctx, trackID); err != nil {
			logger.WarnContext(ctx, "failed to update play counter", "track_id", trackID, "error", err)
		}
	}
	return nil
}

func (t *Tracker) applyLocked(userID, trackID string) {
	t.counts[trackID]++
	if userID == "" {
		return
	}
	f, ok := t.consumed[userID]
	if !ok {
		f = bloom.NewWithEstimates(expectedPlaysPerUser, falsePositiveRate)
		t.consumed[userID] = f
	}
	f.AddString(trackID)
}

// PlayCount returns the number of recorded plays of trackID.
func (t *Tracker) PlayCount(trackID string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counts[trackID]
}

// HasConsumed reports whether userID has probably played trackID.
// False positives are possible at falsePositiveRate; false negatives are not.
func (t *Tracker) HasConsumed(userID, trackID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.consumed[userID]
	if !ok {
		return false
	}
	return f.TestString(trackID)
}

// UserCount returns the number of users with at least one recorded play.
func (t *Tracker) UserCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.consumed)
}
