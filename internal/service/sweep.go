package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sweepLockKey    = "sweep:overdue:lock"
	sweepLastRunKey = "sweep:overdue:last_run"
)

// AdvisoryLocker provides the ephemeral lock and last-run marker the
// sweeper uses for at-most-once-per-day execution. Best effort: losing the
// lock means another process is sweeping, not an error.
type AdvisoryLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	LastRun(ctx context.Context, key string) (string, error)
	MarkRun(ctx context.Context, key, day string, ttl time.Duration) error
}

// RedisAdvisoryLocker implements AdvisoryLocker on Redis.
type RedisAdvisoryLocker struct {
	client *redis.Client
}

// NewRedisAdvisoryLocker wraps the client.
func NewRedisAdvisoryLocker(client *redis.Client) *RedisAdvisoryLocker {
	return &RedisAdvisoryLocker{client: client}
}

func (l *RedisAdvisoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, "1", ttl).Result()
}

func (l *RedisAdvisoryLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, key).Err()
}

func (l *RedisAdvisoryLocker) LastRun(ctx context.Context, key string) (string, error) {
	val, err := l.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (l *RedisAdvisoryLocker) MarkRun(ctx context.Context, key, day string, ttl time.Duration) error {
	return l.client.Set(ctx, key, day, ttl).Err()
}

// SweepTask performs one maintenance pass and reports how many records it
// touched.
type SweepTask func(ctx context.Context, now time.Time) (int64, error)

// Sweeper runs a maintenance task at most once per local day. The clock
// and locker are injected so tests can simulate time and contention.
type Sweeper struct {
	locker  AdvisoryLocker
	task    SweepTask
	logger  *zap.Logger
	now     func() time.Time
	lockTTL time.Duration
}

// NewSweeper builds a sweeper.
func NewSweeper(locker AdvisoryLocker, task SweepTask, logger *zap.Logger, lockTTL time.Duration) *Sweeper {
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &Sweeper{
		locker:  locker,
		task:    task,
		logger:  logger,
		now:     time.Now,
		lockTTL: lockTTL,
	}
}

// RunIfDue executes the task unless it already ran today or another
// process holds the lock. Force bypasses the daily marker and lock
// contention check. Lock acquisition failure is a silent no-op.
func (s *Sweeper) RunIfDue(ctx context.Context, force bool) (int64, error) {
	now := s.now()
	today := now.Format("2006-01-02")

	if !force {
		lastRun, err := s.locker.LastRun(ctx, sweepLastRunKey)
		if err != nil {
			s.logger.Warn("sweep last-run lookup failed; skipping", zap.Error(err))
			return 0, nil
		}
		if lastRun == today {
			return 0, nil
		}
	}

	got, err := s.locker.Acquire(ctx, sweepLockKey, s.lockTTL)
	if err != nil {
		s.logger.Warn("sweep lock acquisition failed; skipping", zap.Error(err))
		return 0, nil
	}
	if !got && !force {
		return 0, nil
	}
	defer func() {
		if err := s.locker.Release(ctx, sweepLockKey); err != nil {
			s.logger.Warn("sweep lock release failed", zap.Error(err))
		}
	}()

	updated, err := s.task(ctx, now)
	if err != nil {
		return 0, err
	}

	if err := s.locker.MarkRun(ctx, sweepLastRunKey, today, 24*time.Hour); err != nil {
		s.logger.Warn("sweep last-run marker write failed", zap.Error(err))
	}
	if updated > 0 {
		s.logger.Info("sweep completed", zap.Int64("updated", updated))
	}
	return updated, nil
}

// Start launches a background loop that invokes RunIfDue on the given
// interval until the context is canceled.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RunIfDue(ctx, false); err != nil {
					s.logger.Warn("sweep run failed", zap.Error(err))
				}
			}
		}
	}()
}
