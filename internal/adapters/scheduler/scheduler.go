package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mikey/llm-lead-responder/internal/core"
	"go.uber.org/zap"
)

// CycleRunner runs one poll cycle
type CycleRunner interface {
	RunCycle(ctx context.Context) (*core.CycleReport, error)
}

// Scheduler triggers a poll cycle on a fixed interval. Cycle errors are
// logged and never stop the schedule.
type Scheduler struct {
	runner     CycleRunner
	logger     *zap.Logger
	interval   time.Duration
	runOnStart bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler
func NewScheduler(runner CycleRunner, logger *zap.Logger, interval time.Duration, runOnStart bool) *Scheduler {
	return &Scheduler{
		runner:     runner,
		logger:     logger,
		interval:   interval,
		runOnStart: runOnStart,
	}
}

// Start starts the background ticker
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop stops the ticker and waits for an in-flight cycle to return
func (s *Scheduler) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.runOnStart {
		s.trigger(ctx)
	}

	for {
		select {
		case <-ticker.C:
			s.trigger(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) {
	report, err := s.runner.RunCycle(ctx)
	switch {
	case errors.Is(err, core.ErrCycleInProgress):
		s.logger.Info("Skipping scheduled cycle, another cycle is running")
	case err != nil:
		s.logger.Error("Scheduled poll cycle failed", zap.Error(err))
	default:
		s.logger.Debug("Scheduled poll cycle finished", zap.Int("processed", report.ProcessedCount))
	}
}
