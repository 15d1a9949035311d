package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/metrics"
	"github.com/Git20254/ai-core-public/internal/service"
	"github.com/Git20254/ai-core-public/internal/similarity"
)

const (
	// DefaultDimension is the embedding size assumed before any record is stored.
	DefaultDimension = 128
	// DefaultBackendTimeout bounds every call to the backing store.
	DefaultBackendTimeout = 2 * time.Second
)

// Options configures a Store.
type Options struct {
	// Dimension is the expected vector size. Zero means DefaultDimension.
	Dimension int
	// Backend is the optional persistent cache. Nil means memory only.
	Backend Backend
	// Timeout bounds each backend call. Zero means DefaultBackendTimeout.
	Timeout time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Store holds track vectors in memory, optionally mirrored to a Backend.
//
// Writes to the backend happen in the background and never fail a Put.
// If the backend cannot be reached when the Store is built, the Store
// stays in memory-only mode for its whole lifetime.
type Store struct {
	mu       sync.RWMutex
	dim      int
	order    []string
	records  map[string]Record
	backend  Backend
	enabled  bool
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker[struct{}]
	lookups  singleflight.Group
	inflight sync.WaitGroup
	logger   *slog.Logger

	// writers orders backend writes per id. Guarded by mu.
	writers map[string]*idWriter
}

// idWriter serializes backend writes for one id. latest is the sequence
// number of the newest Put; a write older than latest is dropped.
type idWriter struct {
	mu     sync.Mutex
	latest uint64
	refs   int
}

// NewStore creates a Store. The backend, if any, is pinged once; on failure
// persistence is disabled and a warning is logged.
func NewStore(ctx context.Context, opts Options) *Store {
	if opts.Dimension <= 0 {
		opts.Dimension = DefaultDimension
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultBackendTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Store{
		dim:     opts.Dimension,
		records: make(map[string]Record),
		writers: make(map[string]*idWriter),
		backend: opts.Backend,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}

	if s.backend != nil {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.backend.Ping(pingCtx)
		cancel()
		if err != nil {
			s.logger.WarnContext(ctx, "vector backend unavailable, using in-memory store",
				"backend", s.backend.Name(),
				"error", fmt.Errorf("%w: %v", service.ErrPersistenceUnavailable, err),
			)
		} else {
			s.enabled = true
			s.logger.InfoContext(ctx, "connected to vector backend", "backend", s.backend.Name())
		}
	}

	s.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "vector-backend",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("vector backend circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return s
}

// PersistenceEnabled reports whether writes and misses reach the backend.
func (s *Store) PersistenceEnabled() bool {
	return s.enabled
}

// BackendName returns the configured backend name, or "memory".
func (s *Store) BackendName() string {
	if s.backend == nil {
		return "memory"
	}
	return s.backend.Name()
}

// Dimension returns the vector size of the store.
// It is fixed by the first stored record, or the configured default while empty.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// Put inserts or overwrites the record for id.
// Persistence is best-effort and asynchronous; only invalid input fails the call.
func (s *Store) Put(ctx context.Context, id string, vector []float64, metadata map[string]any) error {
	if id == "" {
		return &service.ValidationError{Field: "id", Message: "cannot be empty"}
	}
	if len(vector) == 0 {
		return &service.ValidationError{Field: "vector", Message: "cannot be empty"}
	}

	logger := contextutil.LoggerFromContext(ctx)

	rec := Record{
		ID:       id,
		Vector:   append([]float64(nil), vector...),
		Metadata: copyMetadata(metadata),
	}

	s.mu.Lock()
	if len(s.records) == 0 {
		s.dim = len(rec.Vector)
	} else if len(rec.Vector) != s.dim {
		// Kept as given; comparisons resize their inputs.
		logger.WarnContext(ctx, "vector dimension differs from store dimension",
			"track_id", id, "dimension", len(rec.Vector), "store_dimension", s.dim)
	}
	if _, exists := s.records[id]; !exists {
		s.order = append(s.order, id)
	}
	s.records[id] = rec
	size := len(s.records)
	var w *idWriter
	var seq uint64
	if s.enabled {
		w, seq = s.nextWriteLocked(id)
	}
	s.mu.Unlock()

	metrics.VectorsStored.Set(float64(size))

	if w != nil {
		s.persist(logger, rec, w, seq)
	}
	return nil
}

// nextWriteLocked registers a pending backend write for id and returns its
// sequence number. Callers hold s.mu.
func (s *Store) nextWriteLocked(id string) (*idWriter, uint64) {
	w, ok := s.writers[id]
	if !ok {
		w = &idWriter{}
		s.writers[id] = w
	}
	w.latest++
	w.refs++
	return w, w.latest
}

// releaseWriter drops the pending write count for id.
func (s *Store) releaseWriter(id string, w *idWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.refs--
	if w.refs == 0 && s.writers[id] == w {
		delete(s.writers, id)
	}
}

// persist writes rec to the backend in the background. Writes for the same
// id run one at a time, and a write superseded by a newer Put is skipped, so
// the backend always ends with the latest vector.
func (s *Store) persist(logger *slog.Logger, rec Record, w *idWriter, seq uint64) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer s.releaseWriter(rec.ID, w)

		w.mu.Lock()
		defer w.mu.Unlock()

		s.mu.RLock()
		stale := seq < w.latest
		s.mu.RUnlock()
		if stale {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		_, err := s.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, s.backend.Save(ctx, rec)
		})
		if err != nil {
			metrics.PersistenceErrors.WithLabelValues(s.backend.Name(), "save").Inc()
			logger.WarnContext(ctx, "vector backend write failed", "track_id", rec.ID, "backend", s.backend.Name(), "error", err)
		}
	}()
}

// Wait blocks until background writes issued so far have finished.
func (s *Store) Wait() {
	s.inflight.Wait()
}

// Get returns a copy of the vector for id. On a memory miss the backend is
// consulted once and a hit is cached. Misses and backend errors report false.
func (s *Store) Get(ctx context.Context, id string) ([]float64, bool) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if ok {
		return append([]float64(nil), rec.Vector...), true
	}

	if !s.enabled {
		return nil, false
	}

	logger := contextutil.LoggerFromContext(ctx)

	v, err, _ := s.lookups.Do(id, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.backend.Fetch(fetchCtx, id)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.BackendLookups.WithLabelValues("miss").Inc()
		} else {
			metrics.BackendLookups.WithLabelValues("error").Inc()
			metrics.PersistenceErrors.WithLabelValues(s.backend.Name(), "fetch").Inc()
			logger.WarnContext(ctx, "vector backend read failed", "track_id", id, "error", err)
		}
		return nil, false
	}
	metrics.BackendLookups.WithLabelValues("hit").Inc()

	fetched := v.(Record)
	if len(fetched.Vector) == 0 {
		return nil, false
	}
	if fetched.Metadata == nil {
		fetched.Metadata = map[string]any{}
	}
	fetched.ID = id

	s.mu.Lock()
	if _, exists := s.records[id]; !exists {
		if len(s.records) == 0 {
			s.dim = len(fetched.Vector)
		}
		s.order = append(s.order, id)
		s.records[id] = fetched
	}
	size := len(s.records)
	s.mu.Unlock()
	metrics.VectorsStored.Set(float64(size))

	return append([]float64(nil), fetched.Vector...), true
}

// Metadata returns a copy of the metadata for id.
func (s *Store) Metadata(id string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return copyMetadata(rec.Metadata), true
}

// MergeMetadata fills keys missing from the metadata of an existing record.
// Values already present are kept. Nothing is written to the backend.
// It reports whether id is stored.
func (s *Store) MergeMetadata(id string, meta map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return false
	}
	merged := copyMetadata(rec.Metadata)
	for k, v := range meta {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	rec.Metadata = merged
	s.records[id] = rec
	return true
}

// AggregateVector returns the elementwise mean of all stored vectors.
// The userID is accepted for a future per-user aggregate; today every user
// gets the catalog mean. An empty store yields a zero vector of Dimension().
func (s *Store) AggregateVector(userID string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vectors := make([][]float64, 0, len(s.order))
	for _, id := range s.order {
		vectors = append(vectors, s.records[id].Vector)
	}
	return similarity.Mean(vectors, s.dim)
}

// Size returns the number of records in memory.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns the stored records in insertion order.
// Vectors are shared with the store and must not be modified.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// Each calls fn for every (id, vector) pair in insertion order until fn returns false.
// fn runs on a snapshot, so it may call back into the store.
func (s *Store) Each(fn func(id string, vector []float64) bool) {
	for _, rec := range s.Records() {
		if !fn(rec.ID, rec.Vector) {
			return
		}
	}
}

// Load bulk-populates the store from src. Records that fail to decode are
// logged and skipped. It returns the number of records loaded.
func (s *Store) Load(ctx context.Context, src Source) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	loaded, err := src.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load vectors: %w", err)
	}

	var count, skipped int
	s.mu.Lock()
	for _, lr := range loaded {
		if lr.Err != nil || lr.ID == "" || len(lr.Vector) == 0 {
			skipped++
			logger.WarnContext(ctx, "skipping malformed vector record", "track_id", lr.ID, "error", lr.Err)
			continue
		}
		meta := lr.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		if len(s.records) == 0 {
			s.dim = len(lr.Vector)
		}
		if _, exists := s.records[lr.ID]; !exists {
			s.order = append(s.order, lr.ID)
		}
		s.records[lr.ID] = Record{ID: lr.ID, Vector: lr.Vector, Metadata: meta}
		count++
	}
	size := len(s.records)
	s.mu.Unlock()

	metrics.VectorsStored.Set(float64(size))
	logger.InfoContext(ctx, "loaded vectors", "loaded", count, "skipped", skipped, "total", size)
	return count, nil
}

// Close waits for background writes and closes the backend.
func (s *Store) Close() error {
	s.inflight.Wait()
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// SaveIndex writes every stored vector to the snapshot file.
func (s *Store) SaveIndex(f *IndexFile) error {
	return f.SaveFrom(s.Records)
}
