package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Git20254/ai-core-public/internal/trend"
)

type countingSweeper struct {
	calls chan struct{}
}

func (c *countingSweeper) DecayAndPrune(context.Context, float64) (trend.SweepResult, error) {
	c.calls <- struct{}{}
	return trend.SweepResult{}, nil
}

type fixedCounter int

func (f fixedCounter) CountUploadsSince(context.Context, time.Time) (int, error) {
	return int(f), nil
}

func TestService_SweepsOnScheduleUntilCanceled(t *testing.T) {
	sweeper := &countingSweeper{calls: make(chan struct{}, 10)}
	svc := NewService(NewPolicy(sweeper, fixedCounter(3)), 0.3, nil)

	waits := make(chan time.Duration, 10)
	tick := make(chan time.Time)
	svc.after = func(d time.Duration) <-chan time.Time {
		waits <- d
		return tick
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	// First sweep runs immediately, then the medium-activity interval is used.
	<-sweeper.calls
	if d := <-waits; d != 12*time.Hour {
		t.Errorf("wait = %v, want 12h", d)
	}

	tick <- time.Now()
	<-sweeper.calls
	<-waits

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}

	if svc.String() != "trend-maintenance" {
		t.Errorf("String() = %q", svc.String())
	}
}
