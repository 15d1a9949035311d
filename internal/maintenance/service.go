package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/Git20254/ai-core-public/internal/contextutil"
)

// Service runs RunMaintenance on an adaptive schedule under a supervisor.
type Service struct {
	policy    *Policy
	threshold float64
	logger    *slog.Logger
	name      string

	// after is swapped in tests.
	after func(d time.Duration) <-chan time.Time
}

// NewService creates the scheduled sweep. The first sweep runs immediately.
func NewService(policy *Policy, threshold float64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		policy:    policy,
		threshold: threshold,
		logger:    logger,
		name:      "trend-maintenance",
		after:     time.After,
	}
}

// Serve implements suture.Service.
//
// Each iteration sweeps the ledger, then sleeps for the interval matching the
// current upload activity. A failed sweep is logged; the loop keeps going.
func (s *Service) Serve(ctx context.Context) error {
	ctx = contextutil.WithLogger(ctx, s.logger.With("service", s.name))

	for {
		report, err := s.policy.RunMaintenance(ctx, s.threshold)
		if err != nil {
			s.logger.WarnContext(ctx, "trend maintenance failed", "error", err)
		}

		wait := NextInterval(report.ActivityLevel)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(wait):
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *Service) String() string {
	return s.name
}
