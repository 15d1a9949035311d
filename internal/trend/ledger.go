// Package trend keeps a decaying popularity score per track.
//
// A score starts at 1.0 when a track is first boosted and only ever changes by
// multiplication: boosts multiply by a factor above 1, and a daily sweep
// multiplies by DecayRate for every whole day since the last update. Entries
// that decay below the sweep threshold are removed. The whole ledger is
// rewritten to a JSON file after each mutation.
package trend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/fsutil"
	"github.com/Git20254/ai-core-public/internal/metrics"
	"github.com/Git20254/ai-core-public/internal/service"
)

const (
	// DecayRate is applied once per elapsed whole day (half-life ≈ 34 days).
	DecayRate = 0.98
	// BaselineScore is the score of a track before its first boost.
	BaselineScore = 1.0
	// DefaultBoostFactor is the boost applied when a track is recommended.
	DefaultBoostFactor = 1.1
	// DefaultThreshold is the score below which a sweep drops an entry.
	DefaultThreshold = 0.3

	day = 24 * time.Hour
)

// ErrInvalidFactor is returned by Boost for factors not greater than 1.
var ErrInvalidFactor = errors.New("boost factor must be greater than 1.0")

// Entry is the trend state of one track.
type Entry struct {
	TrackID    string    `json:"track_id"`
	Score      float64   `json:"score"`
	LastUpdate time.Time `json:"last_update"`
}

// SweepResult summarises a DecayAndPrune call.
type SweepResult struct {
	Remaining int `json:"remaining"`
	Removed   int `json:"removed"`
}

// fileEntry is the on-disk form: {"score": f, "last_update": RFC3339Nano}.
type fileEntry struct {
	Score      float64 `json:"score"`
	LastUpdate string  `json:"last_update"`
}

// Options configures a Ledger.
type Options struct {
	// Path of the JSON file. Empty keeps the ledger in memory only.
	Path string
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Ledger maps track ids to trend entries. Boost and DecayAndPrune share one
// lock, so a sweep never loses a concurrent boost.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]Entry
	path    string
	now     func() time.Time
	logger  *slog.Logger
}

// Open creates a ledger and loads opts.Path if it exists. An unreadable or
// corrupt file is logged and the ledger starts empty.
func Open(ctx context.Context, opts Options) *Ledger {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	l := &Ledger{
		entries: make(map[string]Entry),
		path:    opts.Path,
		now:     opts.Clock,
		logger:  opts.Logger,
	}

	if l.path != "" {
		entries, err := l.readFile(ctx)
		if err != nil {
			l.logger.WarnContext(ctx, "trend ledger unreadable, starting empty", "path", l.path, "error", err)
		} else {
			l.entries = entries
		}
	}
	metrics.TrendEntries.Set(float64(len(l.entries)))
	return l
}

// readFile loads the ledger file. Entries with a bad score or timestamp are
// logged and skipped; only a file that is not a JSON object is an error.
func (l *Ledger) readFile(ctx context.Context) (map[string]Entry, error) {
	entries := make(map[string]Entry)

	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrCorruptState, err)
	}
	if len(data) == 0 {
		return entries, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrCorruptState, err)
	}

	for id, msg := range raw {
		e, err := decodeEntry(id, msg)
		if err != nil {
			l.logger.WarnContext(ctx, "skipping malformed trend entry", "path", l.path, "track_id", id, "error", err)
			continue
		}
		entries[id] = e
	}
	return entries, nil
}

func decodeEntry(id string, msg json.RawMessage) (Entry, error) {
	var fe fileEntry
	if err := json.Unmarshal(msg, &fe); err != nil {
		return Entry{}, err
	}
	if fe.Score < 0 || math.IsNaN(fe.Score) || math.IsInf(fe.Score, 0) {
		return Entry{}, fmt.Errorf("invalid score %v", fe.Score)
	}
	ts, err := parseTimestamp(fe.LastUpdate)
	if err != nil {
		return Entry{}, err
	}
	return Entry{TrackID: id, Score: fe.Score, LastUpdate: ts}, nil
}

// parseTimestamp accepts RFC 3339 and the offset-less ISO-8601 forms older
// ledgers were written with (interpreted as UTC).
func parseTimestamp(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Boost multiplies the score of trackID by factor, creating the entry at
// BaselineScore first if needed, and returns the new score. A persist failure
// is returned but the in-memory change is kept.
func (l *Ledger) Boost(ctx context.Context, trackID string, factor float64) (float64, error) {
	if trackID == "" {
		return 0, &service.ValidationError{Field: "track_id", Message: "cannot be empty"}
	}
	if !(factor > 1.0) || math.IsInf(factor, 0) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidFactor, factor)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[trackID]
	if !ok {
		e = Entry{TrackID: trackID, Score: BaselineScore}
	}
	e.Score *= factor
	e.LastUpdate = l.now()
	l.entries[trackID] = e

	metrics.TrendBoosts.Inc()
	metrics.TrendEntries.Set(float64(len(l.entries)))

	if err := l.persistLocked(); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to persist trend ledger", "track_id", trackID, "error", err)
		return e.Score, err
	}
	return e.Score, nil
}

// DecayAndPrune decays every entry by DecayRate per whole day elapsed since
// its last update and removes entries scoring below threshold.
//
// LastUpdate advances only by the whole days consumed, so calling it twice
// on the same day changes nothing the second time, and partial days carry
// over to the next sweep.
func (l *Ledger) DecayAndPrune(ctx context.Context, threshold float64) (SweepResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	changed := false
	removed := 0

	for id, e := range l.entries {
		days := int(now.Sub(e.LastUpdate) / day)
		if days > 0 {
			e.Score *= math.Pow(DecayRate, float64(days))
			e.LastUpdate = e.LastUpdate.Add(time.Duration(days) * day)
			l.entries[id] = e
			changed = true
		}
		if e.Score < threshold {
			delete(l.entries, id)
			removed++
			changed = true
		}
	}

	result := SweepResult{Remaining: len(l.entries), Removed: removed}
	metrics.TrendEntries.Set(float64(result.Remaining))
	metrics.TrendPruned.Add(float64(removed))

	logger.InfoContext(ctx, "trend decay sweep complete",
		"threshold", threshold,
		"remaining", result.Remaining,
		"removed", result.Removed,
	)

	if !changed {
		return result, nil
	}
	if err := l.persistLocked(); err != nil {
		logger.WarnContext(ctx, "failed to persist trend ledger after sweep", "error", err)
		return result, err
	}
	return result, nil
}

// Get returns the entry for trackID.
func (l *Ledger) Get(trackID string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[trackID]
	return e, ok
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns all entries ordered by score, highest first, then by id.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].TrackID < out[j].TrackID
	})
	return out
}

// persistLocked rewrites the ledger file. Callers hold l.mu.
func (l *Ledger) persistLocked() error {
	if l.path == "" {
		return nil
	}

	raw := make(map[string]fileEntry, len(l.entries))
	for id, e := range l.entries {
		raw[id] = fileEntry{
			Score:      e.Score,
			LastUpdate: e.LastUpdate.Format(time.RFC3339Nano),
		}
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trend ledger: %w", err)
	}
	if err := fsutil.WriteFileAtomic(l.path, data); err != nil {
		return fmt.Errorf("%w: %v", service.ErrPersistenceUnavailable, err)
	}
	return nil
}
