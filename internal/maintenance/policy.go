// Package maintenance decides how often the trend ledger is swept and runs
// the sweep. The schedule adapts to upload activity: busy catalogs are swept
// every 6 hours, quiet ones every 2 days.
package maintenance

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_upload_counter.go -package=mocks github.com/Git20254/ai-core-public/internal/maintenance UploadCounter

import (
	"context"
	"time"

	"github.com/Git20254/ai-core-public/internal/contextutil"
	"github.com/Git20254/ai-core-public/internal/metrics"
	"github.com/Git20254/ai-core-public/internal/trend"
)

// Level is an upload activity bucket.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ActivityWindow is the lookback used to count recent uploads.
const ActivityWindow = 24 * time.Hour

// ActivityLevelFor maps an upload count to a level:
// more than 10 is high, at least 1 is medium, otherwise low.
func ActivityLevelFor(recentUploads int) Level {
	switch {
	case recentUploads > 10:
		return LevelHigh
	case recentUploads >= 1:
		return LevelMedium
	default:
		return LevelLow
	}
}

// NextIntervalHours returns the hours until the next sweep for level.
func NextIntervalHours(level Level) int {
	switch level {
	case LevelHigh:
		return 6
	case LevelMedium:
		return 12
	default:
		return 48
	}
}

// NextInterval is NextIntervalHours as a duration.
func NextInterval(level Level) time.Duration {
	return time.Duration(NextIntervalHours(level)) * time.Hour
}

// UploadCounter reports how many tracks were uploaded since a point in time.
type UploadCounter interface {
	CountUploadsSince(ctx context.Context, since time.Time) (int, error)
}

// Sweeper is the trend ledger operation maintenance delegates to.
type Sweeper interface {
	DecayAndPrune(ctx context.Context, threshold float64) (trend.SweepResult, error)
}

// Report describes one maintenance run.
type Report struct {
	Threshold         float64 `json:"threshold"`
	Remaining         int     `json:"remaining"`
	Removed           int     `json:"removed"`
	ActivityLevel     Level   `json:"activity_level"`
	RecentUploads     int     `json:"recent_uploads"`
	NextIntervalHours int     `json:"next_interval_hours"`
}

// Policy runs trend maintenance and picks the next interval.
type Policy struct {
	ledger  Sweeper
	uploads UploadCounter
	now     func() time.Time
}

// NewPolicy creates a Policy. uploads may be nil, which always reads as low activity.
func NewPolicy(ledger Sweeper, uploads UploadCounter) *Policy {
	return &Policy{
		ledger:  ledger,
		uploads: uploads,
		now:     time.Now,
	}
}

// ActivityLevel counts uploads in the last ActivityWindow. A counter error is
// logged and read as low activity.
func (p *Policy) ActivityLevel(ctx context.Context) (Level, int) {
	if p.uploads == nil {
		return LevelLow, 0
	}
	count, err := p.uploads.CountUploadsSince(ctx, p.now().Add(-ActivityWindow))
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to count recent uploads", "error", err)
		return LevelLow, 0
	}
	return ActivityLevelFor(count), count
}

// RunMaintenance decays and prunes the ledger at threshold and reports the
// activity level that schedules the next run. The report is filled in even
// when persisting the ledger fails.
func (p *Policy) RunMaintenance(ctx context.Context, threshold float64) (Report, error) {
	logger := contextutil.LoggerFromContext(ctx)

	level, uploads := p.ActivityLevel(ctx)
	res, err := p.ledger.DecayAndPrune(ctx, threshold)

	report := Report{
		Threshold:         threshold,
		Remaining:         res.Remaining,
		Removed:           res.Removed,
		ActivityLevel:     level,
		RecentUploads:     uploads,
		NextIntervalHours: NextIntervalHours(level),
	}
	metrics.MaintenanceRuns.WithLabelValues(string(level)).Inc()

	logger.InfoContext(ctx, "trend maintenance complete",
		"activity_level", level,
		"recent_uploads", uploads,
		"remaining", report.Remaining,
		"removed", report.Removed,
		"next_interval_hours", report.NextIntervalHours,
	)
	return report, err
}
