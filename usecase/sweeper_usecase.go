package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"postpilot/domain/apperror"
	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/logger"

	"golang.org/x/sync/errgroup"
)

// SweeperOptions bounds the per-user worker pool and the historical window.
type SweeperOptions struct {
	RetentionDays int
	Concurrency   int
}

func (o SweeperOptions) withDefaults() SweeperOptions {
	if o.RetentionDays <= 0 {
		o.RetentionDays = 30
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 8
	}
	return o
}

type ISweeperUsecase interface {
	SweepDaily(ctx context.Context) (int, error)
	SweepWeekly(ctx context.Context) (int, error)
}

type sweeperUsecase struct {
	usageRepo repository.IUsageStats
	opts      SweeperOptions
	now       func() time.Time
}

func NewSweeperUsecase(usageRepo repository.IUsageStats, opts SweeperOptions) ISweeperUsecase {
	return &sweeperUsecase{usageRepo: usageRepo, opts: opts.withDefaults(), now: time.Now}
}

// NewSweeperUsecaseWithClock injects the clock; used by tests.
func NewSweeperUsecaseWithClock(usageRepo repository.IUsageStats, opts SweeperOptions, now func() time.Time) ISweeperUsecase {
	return &sweeperUsecase{usageRepo: usageRepo, opts: opts.withDefaults(), now: now}
}

// SweepDaily deletes every per-user usage record whose date key differs from
// today (UTC). Returns the number of users whose records changed.
func (u *sweeperUsecase) SweepDaily(ctx context.Context) (int, error) {
	today := u.now().UTC().Format(model.DateKeyLayout)
	return u.sweep(ctx, "daily_reset", func(date string) bool { return date != today })
}

// SweepWeekly deletes every per-user usage record strictly older than the
// retention cutoff (today minus RetentionDays, UTC).
func (u *sweeperUsecase) SweepWeekly(ctx context.Context) (int, error) {
	cutoff := u.now().UTC().AddDate(0, 0, -u.opts.RetentionDays).Format(model.DateKeyLayout)
	return u.sweep(ctx, "historical_cleanup", func(date string) bool { return date < cutoff })
}

// sweep iterates users independently: one user's failure is logged and skipped,
// never allowed to block the rest. Only the top-level user enumeration is fatal.
// Re-running on an already-clean set is a no-op (empty update).
func (u *sweeperUsecase) sweep(ctx context.Context, job string, stale func(date string) bool) (int, error) {
	lg := logger.GetLogger().WithField("job", job)

	userIDs, err := u.usageRepo.ListUserIDs(ctx)
	if err != nil {
		return 0, apperror.Wrap(apperror.TransientStorageError, err, "enumerating usage-stat users")
	}

	var affected atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(u.opts.Concurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			daily, err := u.usageRepo.GetDaily(ctx, userID)
			if err != nil {
				lg.WithField("user_id", userID).WithField("error", err).Warn("failed reading user records - continuing")
				return nil
			}
			var dates []string
			for date := range daily {
				if stale(date) {
					dates = append(dates, date)
				}
			}
			if len(dates) == 0 {
				return nil
			}
			if err := u.usageRepo.DeleteDaily(ctx, userID, dates); err != nil {
				lg.WithField("user_id", userID).WithField("error", err).Warn("failed deleting stale records - continuing")
				return nil
			}
			affected.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	count := int(affected.Load())
	lg.WithField("users_affected", count).Info("Retention sweep completed")
	return count, nil
}
