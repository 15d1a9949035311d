package ingest

import (
	"context"
	"fmt"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/storage"
)

// MetadataMerger fills missing metadata on stored vectors.
type MetadataMerger interface {
	MergeMetadata(id string, meta map[string]any) bool
}

// RestoreMetadata copies catalog fields onto vectors that were loaded without
// them, such as those read from the index snapshot. It returns the number of
// vectors it updated.
func RestoreMetadata(ctx context.Context, tracks storage.TrackStore, vectors MetadataMerger) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	list, err := tracks.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tracks: %w", err)
	}

	var restored int
	for _, t := range list {
		meta := map[string]any{}
		for k, v := range map[string]string{"title": t.Title, "artist": t.Artist, "genre": t.Genre, "mood": t.Mood, "source": t.Source} {
			if v != "" {
				meta[k] = v
			}
		}
		if len(meta) == 0 {
			continue
		}
		if vectors.MergeMetadata(t.ID, meta) {
			restored++
		}
	}
	logger.InfoContext(ctx, "restored vector metadata from catalog", "tracks", len(list), "restored", restored)
	return restored, nil
}
