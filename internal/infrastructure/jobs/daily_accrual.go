package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"onec-traders.backend/internal/config"
	"onec-traders.backend/internal/domain/entities"
	"onec-traders.backend/pkg/logger"
	"onec-traders.backend/pkg/redis"
)

// RunLockPrefix namespaces the per-day sweep lock
const RunLockPrefix = "accrual:run:"

// AccrualRunner runs one daily sweep
type AccrualRunner interface {
	RunDailyAccrual(ctx context.Context, asOf time.Time) (*entities.AccrualRunResult, error)
}

// SweepObserver records finished sweeps
type SweepObserver interface {
	ObserveSweep(result *entities.AccrualRunResult, elapsed time.Duration)
}

// DailyAccrualJob triggers the accrual sweep on a cron schedule. A redis lock
// per calendar day keeps replicas from sweeping the same day twice.
type DailyAccrualJob struct {
	runner   AccrualRunner
	locks    *redis.Client
	observer SweepObserver
	schedule string
	location *time.Location
	lockTTL  time.Duration
	retries  int
	backoff  time.Duration
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// NewDailyAccrualJob creates the job. locks and observer may be nil.
func NewDailyAccrualJob(runner AccrualRunner, locks *redis.Client, observer SweepObserver, cfg config.AccrualConfig) *DailyAccrualJob {
	return &DailyAccrualJob{
		runner:   runner,
		locks:    locks,
		observer: observer,
		schedule: cfg.Schedule,
		location: cfg.Location(),
		lockTTL:  cfg.RunLockTTL,
		retries:  cfg.RetryAttempts,
		backoff:  cfg.RetryDelay,
		now:      time.Now,
	}
}

// RunLockKey returns the lock key for the calendar day of asOf
func RunLockKey(asOf time.Time) string {
	return RunLockPrefix + entities.CalendarDay(asOf).Format(time.DateOnly)
}

// Start registers the schedule and returns. The job stops when ctx is done or Stop is called.
func (j *DailyAccrualJob) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron != nil {
		return fmt.Errorf("daily accrual job already started")
	}

	c := cron.New(cron.WithLocation(j.location))
	if _, err := c.AddFunc(j.schedule, func() { j.runWithRetry(ctx) }); err != nil {
		return fmt.Errorf("invalid accrual schedule %q: %w", j.schedule, err)
	}
	c.Start()
	j.cron = c

	logger.Info(ctx, "Daily accrual job started",
		zap.String("schedule", j.schedule),
		zap.String("timezone", j.location.String()),
	)

	go func() {
		<-ctx.Done()
		j.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (j *DailyAccrualJob) Stop() {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	logger.Info(context.Background(), "Daily accrual job stopped")
}

// runWithRetry runs the sweep and reruns it after backoff while it fails or
// leaves investments unpaid, up to retries extra attempts.
func (j *DailyAccrualJob) runWithRetry(ctx context.Context) {
	for attempt := 0; ; attempt++ {
		result, ran, err := j.RunOnce(ctx)
		if err != nil {
			logger.Error(ctx, "Scheduled accrual failed", zap.Int("attempt", attempt+1), zap.Error(err))
		}
		if err == nil && (!ran || len(result.Errors) == 0) {
			return
		}
		if attempt >= j.retries {
			logger.Error(ctx, "Accrual retries exhausted", zap.Int("attempts", attempt+1))
			return
		}

		timer := time.NewTimer(j.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// RunOnce sweeps today in the job's timezone. ran is false when another
// holder owns today's lock. The lock is kept after a clean sweep and released
// when the sweep failed or left investments unpaid, so the next tick retries.
func (j *DailyAccrualJob) RunOnce(ctx context.Context) (result *entities.AccrualRunResult, ran bool, err error) {
	asOf := j.now().In(j.location)
	key := RunLockKey(asOf)

	var lock *redis.Lock
	if j.locks != nil {
		var ok bool
		lock, ok, err = j.locks.AcquireLock(ctx, key, j.lockTTL)
		if err != nil {
			return nil, false, fmt.Errorf("acquire %s: %w", key, err)
		}
		if !ok {
			logger.Info(ctx, "Accrual already claimed for today", zap.String("lock", key))
			return nil, false, nil
		}
	}

	started := time.Now()
	result, err = j.runner.RunDailyAccrual(ctx, asOf)
	if j.observer != nil && result != nil {
		j.observer.ObserveSweep(result, time.Since(started))
	}

	unpaid := result != nil && len(result.Errors) > 0
	if unpaid {
		logger.Warn(ctx, "Accrual left investments unpaid, releasing lock for retry",
			zap.String("lock", key),
			zap.Int("errors", len(result.Errors)),
		)
	}
	if (err != nil || unpaid) && lock != nil {
		if relErr := lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			logger.Warn(ctx, "Failed to release accrual lock", zap.String("lock", key), zap.Error(relErr))
		}
	}
	return result, true, err
}
