// Package worker runs the background jobs of the frontend service.
package worker

import (
	"context"
	"fmt"
	"time"

	"mykharche/internal/draft"
	applog "mykharche/internal/log"
)

// DraftJanitor purges drafts of drawers that were abandoned without closing.
type DraftJanitor struct {
	purger   draft.Purger
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *applog.Logger
}

func NewDraftJanitor(purger draft.Purger, ttl, interval time.Duration, logger *applog.Logger) *DraftJanitor {
	return &DraftJanitor{
		purger:   purger,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// WithClock replaces the clock used to compute the purge cutoff.
func (j *DraftJanitor) WithClock(now func() time.Time) *DraftJanitor {
	j.now = now
	return j
}

// RunOnce purges drafts untouched for longer than the TTL.
func (j *DraftJanitor) RunOnce(ctx context.Context) (int, error) {
	cutoff := j.now().Add(-j.ttl)
	n, err := j.purger.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge drafts: %w", err)
	}
	if n > 0 {
		j.logger.InfoContext(ctx, "Purged abandoned drafts",
			applog.FieldOperation, applog.OpPurge,
			"count", n,
			"cutoff", cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// Run purges once at startup and then on every tick until ctx is done.
// Failures are logged and the loop keeps going.
func (j *DraftJanitor) Run(ctx context.Context) error {
	j.logger.InfoContext(ctx, "Draft janitor started",
		"ttl", j.ttl.String(),
		"interval", j.interval.String())

	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.ErrorContext(ctx, "Startup purge failed", applog.FieldError, err)
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Draft janitor stopped")
			return nil
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil {
				j.logger.ErrorContext(ctx, "Periodic purge failed", applog.FieldError, err)
			}
		}
	}
}
