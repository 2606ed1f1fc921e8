package approval

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/internal/audit"
	"github.com/JayPadhiyar-42/scorepact/internal/common"
	"github.com/JayPadhiyar-42/scorepact/internal/notification"
	"github.com/JayPadhiyar-42/scorepact/pkg/apperr"
)

// Clock abstracts wall-clock time so sweep tests advance a fake clock
// instead of sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real clock.
func SystemClock() Clock { return systemClock{} }

// SweepStore is the narrow storage surface the sweeper needs.
type SweepStore interface {
	// DueRequests returns the IDs of pending requests whose auto-approval
	// deadline has passed.
	DueRequests(now time.Time) ([]uint, error)

	// AutoApprove resolves one due request as the opposing captain. The
	// transaction is bounded by ctx.
	AutoApprove(ctx context.Context, requestID uint, now time.Time) (*SweepResult, error)
}

// gormSweepStore adapts the approval Service and its DB to SweepStore.
type gormSweepStore struct {
	db  *gorm.DB
	svc *Service
}

// NewSweepStore builds the production SweepStore.
func NewSweepStore(db *gorm.DB, svc *Service) SweepStore {
	return &gormSweepStore{db: db, svc: svc}
}

func (s *gormSweepStore) DueRequests(now time.Time) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&ApprovalRequest{}).
		Where("status = ? AND auto_approve_enabled = ? AND auto_approve_at <= ?", StatusPending, true, now).
		Order("auto_approve_at asc").
		Pluck("id", &ids).Error
	return ids, err
}

func (s *gormSweepStore) AutoApprove(ctx context.Context, requestID uint, now time.Time) (*SweepResult, error) {
	return s.svc.AutoApprove(ctx, requestID, now)
}

// SweeperConfig bounds the sweep's resource usage. The transaction timeout
// is distinct from the auto-approval deadline: it limits worst-case lock
// hold time while resolving one request.
type SweeperConfig struct {
	Interval    time.Duration
	TxTimeout   time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// SweeperDefaults returns the production configuration: a deliberately
// coarse sweep interval to bound database load.
func SweeperDefaults() SweeperConfig {
	return SweeperConfig{
		Interval:    time.Minute,
		TxTimeout:   30 * time.Second,
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Sweeper periodically resolves expired approval requests unilaterally.
// Failures are isolated per request: an exhausted request is simply left
// pending for the next cycle.
type Sweeper struct {
	store     SweepStore
	clock     Clock
	notifier  notification.Notifier
	stats     StatsRecomputer
	auditRepo audit.Recorder
	cfg       SweeperConfig
	logger    *log.Logger

	// sleep is swappable in tests so retry backoff doesn't wait.
	sleep func(time.Duration)
}

// NewSweeper creates a sweeper.
func NewSweeper(store SweepStore, clock Clock, notifier notification.Notifier, stats StatsRecomputer, auditRepo audit.Recorder, cfg SweeperConfig, logger *log.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = SweeperDefaults().Interval
	}
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = SweeperDefaults().TxTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = SweeperDefaults().MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = SweeperDefaults().BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = SweeperDefaults().MaxDelay
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{
		store:     store,
		clock:     clock,
		notifier:  notifier,
		stats:     stats,
		auditRepo: auditRepo,
		cfg:       cfg,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// Run loops until ctx is cancelled, sweeping once per interval.
func (sw *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(sw.cfg.Interval)
	defer ticker.Stop()

	sw.logger.Printf("auto-approval sweeper started (interval %s)", sw.cfg.Interval)
	for {
		select {
		case <-ctx.Done():
			sw.logger.Printf("auto-approval sweeper stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			sw.Sweep(ctx)
		}
	}
}

// Sweep resolves every due request once. A failure on one request never
// aborts processing of the others.
func (sw *Sweeper) Sweep(ctx context.Context) {
	now := sw.clock.Now()
	ids, err := sw.store.DueRequests(now)
	if err != nil {
		sw.logger.Printf("sweep: failed to list due requests: %v", err)
		return
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		res, err := sw.resolveWithRetry(ctx, id, now)
		if err != nil {
			// Left pending for the next cycle (or already resolved by a
			// captain racing the sweep, which needs no action).
			sw.logger.Printf("sweep: request %d not auto-approved: %v", id, err)
			if apperr.IsTransient(err) {
				sw.auditRepo.AppendBestEffort(&audit.Entry{
					Action:       audit.ActionApprovalSweepFailed,
					ActorID:      common.SystemActorID,
					WasAutomatic: true,
					NewState: map[string]interface{}{
						"request_id": id,
						"error":      err.Error(),
					},
				})
			}
			continue
		}
		sw.afterAutoApprove(res)
	}
}

// resolveWithRetry retries transient failures with capped exponential
// backoff. Domain failures (already resolved, not due) fail immediately.
func (sw *Sweeper) resolveWithRetry(ctx context.Context, requestID uint, now time.Time) (*SweepResult, error) {
	var lastErr error
	delay := sw.cfg.BaseDelay

	for attempt := 1; attempt <= sw.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, sw.cfg.TxTimeout)
		res, err := sw.store.AutoApprove(attemptCtx, requestID, now)
		cancel()
		if err == nil {
			return res, nil
		}
		if !apperr.IsTransient(err) {
			return nil, err
		}

		lastErr = err
		if attempt < sw.cfg.MaxAttempts {
			sw.logger.Printf("sweep: transient failure on request %d (attempt %d/%d): %v",
				requestID, attempt, sw.cfg.MaxAttempts, err)
			sw.sleep(delay)
			delay *= 2
			if delay > sw.cfg.MaxDelay {
				delay = sw.cfg.MaxDelay
			}
		}
	}
	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

// afterAutoApprove runs post-commit side effects. The transition is already
// committed; nothing here may undo it.
func (sw *Sweeper) afterAutoApprove(res *SweepResult) {
	if res == nil {
		return
	}
	if res.ShouldNotify {
		sw.notifier.Notify(res.NotifyUserID, "auto_approved",
			fmt.Sprintf("Request %d on match %d was auto-approved on your behalf", res.RequestID, res.MatchID))
	}
	if res.MatchCompleted && sw.stats != nil {
		if err := sw.stats.Recompute(res.MatchID); err != nil {
			sw.logger.Printf("sweep: stats recompute for match %d failed (will run on demand): %v", res.MatchID, err)
		}
	}
}
