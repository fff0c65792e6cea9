// Package scheduler runs background ledger maintenance.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	ErrInvalidConfig       = errors.New("invalid scheduler configuration")
)

// OverdueSweeper moves open invoices past their payment deadline to Overdue.
// The invoice service implements it.
type OverdueSweeper interface {
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

// OverdueSchedulerConfig holds configuration for the overdue sweep
type OverdueSchedulerConfig struct {
	Enabled bool
	// Interval between sweeps. The first sweep runs at start.
	Interval time.Duration
	// JobTimeout bounds a single sweep
	JobTimeout time.Duration
}

// OverdueScheduler periodically sweeps invoices to Overdue
type OverdueScheduler struct {
	sweeper OverdueSweeper
	logger  *zap.Logger
	config  OverdueSchedulerConfig
	now     func() time.Time

	trigger   chan struct{}
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
	lastCount int
}

// NewOverdueScheduler creates a new overdue scheduler
func NewOverdueScheduler(sweeper OverdueSweeper, logger *zap.Logger, config OverdueSchedulerConfig) (*OverdueScheduler, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("%w: sweeper is required", ErrInvalidConfig)
	}
	if config.Enabled && config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueScheduler{
		sweeper: sweeper,
		logger:  logger.Named("overdue_scheduler"),
		config:  config,
		now:     time.Now,
		trigger: make(chan struct{}, 1),
	}, nil
}

// Start starts the sweep loop
func (s *OverdueScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Overdue scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Overdue scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *OverdueScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow queues an immediate sweep. A sweep already queued absorbs the trigger.
func (s *OverdueScheduler) TriggerNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	select {
	case s.trigger <- struct{}{}:
	default:
	}
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *OverdueScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRun returns when the last sweep finished and how many invoices it marked
func (s *OverdueScheduler) LastRun() (time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastCount
}

func (s *OverdueScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Overdue sweep loop stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.trigger:
			s.sweep(ctx)
		}
	}
}

func (s *OverdueScheduler) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	startTime := time.Now()
	marked, err := s.sweeper.MarkOverdue(sweepCtx, s.now())
	duration := time.Since(startTime)
	if err != nil {
		s.logger.Error("Overdue sweep failed",
			zap.Duration("duration", duration),
			zap.Int("marked_before_failure", marked),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	s.lastRun, s.lastCount = s.now(), marked
	s.mu.Unlock()

	if marked > 0 {
		s.logger.Info("Overdue sweep completed",
			zap.Duration("duration", duration),
			zap.Int("marked", marked),
		)
	} else {
		s.logger.Debug("Overdue sweep found nothing", zap.Duration("duration", duration))
	}
}
