package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ExpiryCloser closes every active survey whose end date has passed
type ExpiryCloser interface {
	CloseExpired(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs the expired-survey sweep on a cron schedule
type Scheduler struct {
	cron    *cron.Cron
	closer  ExpiryCloser
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// New registers the sweep under spec, which accepts standard five-field
// expressions and descriptors such as "@every 5m"
func New(closer ExpiryCloser, spec string, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		closer:  closer,
		logger:  logger,
		timeout: time.Minute,
		now:     time.Now,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid close-expired schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs one sweep immediately, then follows the schedule
func (s *Scheduler) Start() {
	go s.run()
	s.cron.Start()
	s.logger.Info("Survey expiry scheduler started")
}

// Stop waits for a running sweep to finish or for ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce closes every survey that has expired by now
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	return s.closer.CloseExpired(ctx, s.now().UTC())
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	closed, err := s.RunOnce(ctx)
	if err != nil {
		s.logger.Error("Failed to close expired surveys", "error", err, "closed", closed)
		return
	}
	if closed > 0 {
		s.logger.Info("Closed expired surveys", "count", closed)
	}
}
