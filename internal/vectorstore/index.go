package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"

	"github.com/Git20254/ai-core-public/internal/fsutil"
	"github.com/Git20254/ai-core-public/internal/service"
)

// IndexFile is a JSON snapshot of track vectors: a flat object mapping
// track id to an array of floats. Metadata lives in the catalog, not here.
type IndexFile struct {
	path string
	// mu serializes snapshot writes so an older snapshot never replaces a newer one.
	mu sync.Mutex
}

// NewIndexFile returns an index snapshot stored at path.
func NewIndexFile(path string) *IndexFile {
	return &IndexFile{path: path}
}

// Path returns the snapshot location.
func (f *IndexFile) Path() string { return f.path }

// LoadAll reads the snapshot. A missing file is an empty index. A file that is
// not a JSON object yields ErrCorruptState; individual entries that are not
// float arrays are returned with Err set.
func (f *IndexFile) LoadAll(ctx context.Context) ([]LoadedRecord, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read index %s: %v", service.ErrCorruptState, f.path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse index %s: %v", service.ErrCorruptState, f.path, err)
	}

	out := make([]LoadedRecord, 0, len(raw))
	for id, entry := range raw {
		vec, err := decodeVector(entry)
		if err != nil {
			out = append(out, LoadedRecord{Record: Record{ID: id}, Err: err})
			continue
		}
		out = append(out, LoadedRecord{Record: Record{ID: id, Vector: vec, Metadata: map[string]any{}}})
	}
	sortLoaded(out)
	return out, nil
}

// Save rewrites the whole snapshot atomically: the data is written to a
// temporary file in the same directory, synced, then renamed over the target.
func (f *IndexFile) Save(records []Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeLocked(records)
}

// SaveFrom takes the snapshot while holding the write lock, so concurrent
// callers land on disk in the order their snapshots were taken.
func (f *IndexFile) SaveFrom(snapshot func() []Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeLocked(snapshot())
}

func (f *IndexFile) writeLocked(records []Record) error {
	index := make(map[string][]float64, len(records))
	for _, rec := range records {
		index[rec.ID] = rec.Vector
	}
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	return fsutil.WriteFileAtomic(f.path, data)
}

var _ Source = (*IndexFile)(nil)
