package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_play_store.go -package=mocks github.com/Git20254/ai-core-public/internal/storage PlayStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PlayStore defines the interface for listening history operations.
type PlayStore interface {
	// Insert records a play. A zero PlayedAt is set to the current time.
	Insert(ctx context.Context, play *Play) error
	// List returns every play in insertion order.
	List(ctx context.Context) ([]Play, error)
	// CountsByTrack returns the number of plays per track id.
	CountsByTrack(ctx context.Context) (map[string]int64, error)
}

// PlayRepo provides methods for play operations.
// It implements the PlayStore interface.
type PlayRepo struct {
	db *sql.DB
}

// NewPlayRepo creates a new PlayRepo.
func NewPlayRepo(db *sql.DB) *PlayRepo {
	return &PlayRepo{db: db}
}

// Insert records a play.
func (r *PlayRepo) Insert(ctx context.Context, play *Play) error {
	if play.PlayedAt.IsZero() {
		play.PlayedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO plays (user_id, track_id, played_at) VALUES (?, ?, ?)",
		play.UserID, play.TrackID, formatTime(play.PlayedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert play: %w", err)
	}
	return nil
}

// List returns every play in insertion order.
func (r *PlayRepo) List(ctx context.Context) ([]Play, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT user_id, track_id, played_at FROM plays ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var plays []Play
	for rows.Next() {
		var p Play
		var playedAt string
		if err := rows.Scan(&p.UserID, &p.TrackID, &playedAt); err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		p.PlayedAt, err = parseTime(playedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse played_at timestamp: %w", err)
		}
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plays: %w", err)
	}
	return plays, nil
}

// CountsByTrack returns the number of plays per track id.
func (r *PlayRepo) CountsByTrack(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT track_id, COUNT(*) FROM plays GROUP BY track_id")
	if err != nil {
		return nil, fmt.Errorf("failed to count plays: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[string]int64)
	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan play count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate play counts: %w", err)
	}
	return counts, nil
}
