package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/storage"
)

// audioExtensions lists the file types picked up by a directory import.
var audioExtensions = map[string]struct{}{
	".wav":  {},
	".mp3":  {},
	".flac": {},
	".ogg":  {},
	".m4a":  {},
}

// ScannedFile is an audio file found during a directory scan.
type ScannedFile struct {
	RelPath string // relative to the scanned root, forward slashes
	AbsPath string
}

// ImportStats counts the outcome of a directory import.
type ImportStats struct {
	Found    int `json:"found"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ScanDir walks root and returns every audio file, skipping hidden directories.
func ScanDir(ctx context.Context, root string) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		files = append(files, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return files, nil
}

// ImportDir ingests every audio file under root that the catalog does not
// already know. Errors for individual files are logged but don't stop the import.
func (p *Pipeline) ImportDir(ctx context.Context, root string) (ImportStats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := ScanDir(ctx, root)
	if err != nil {
		return ImportStats{}, err
	}
	stats := ImportStats{Found: len(files)}
	logger.InfoContext(ctx, "starting import", "root", root, "total_files", len(files))

	for _, file := range files {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		trackID := TrackIDFromFilename(file.RelPath)
		if _, err := p.tracks.Get(ctx, trackID); err == nil {
			logger.DebugContext(ctx, "skipping known track", "track_id", trackID)
			stats.Skipped++
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			logger.ErrorContext(ctx, "failed to check catalog", "track_id", trackID, "error", err)
			stats.Failed++
			continue
		}

		if err := p.importFile(ctx, file); err != nil {
			logger.ErrorContext(ctx, "failed to import file", "rel_path", file.RelPath, "error", err)
			stats.Failed++
			continue
		}
		stats.Imported++
	}

	logger.InfoContext(ctx, "import completed",
		"total_files", stats.Found,
		"imported", stats.Imported,
		"skipped", stats.Skipped,
		"errors", stats.Failed,
	)
	if stats.Failed > 0 {
		return stats, fmt.Errorf("import completed with %d errors", stats.Failed)
	}
	return stats, nil
}

func (p *Pipeline) importFile(ctx context.Context, file ScannedFile) error {
	f, err := os.Open(file.AbsPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file.AbsPath, err)
	}
	defer func() {
		_ = f.Close()
	}()

	_, err = p.IngestAudio(ctx, Upload{
		Filename: file.RelPath,
		Audio:    f,
		Source:   SourceImport,
	})
	return err
}
