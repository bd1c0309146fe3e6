// Package maintenance runs background jobs that keep the durable stores
// tidy. Today that is one job: removing blacklist rows for tokens that
// expired on their own.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/recipevault/recipevault/pkg/observability"
	"github.com/recipevault/recipevault/pkg/storage"
)

// purgeTimeout bounds one purge run.
const purgeTimeout = 30 * time.Second

// Purger deletes blacklist entries older than the token lifetime on a cron
// schedule. A token that old is rejected by expiry alone, so the row only
// costs space.
type Purger struct {
	store    storage.BlacklistStore
	tokenTTL time.Duration
	logger   *observability.Logger
	metrics  *observability.Metrics
	cron     *cron.Cron
	now      func() time.Time
}

// NewPurger creates the purge job. metrics may be nil.
func NewPurger(store storage.BlacklistStore, tokenTTL time.Duration, logger *observability.Logger, metrics *observability.Metrics) *Purger {
	return &Purger{
		store:    store,
		tokenTTL: tokenTTL,
		logger:   logger,
		metrics:  metrics,
		cron:     cron.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the job and begins running it. schedule is a cron
// expression, e.g. "@hourly".
func (p *Purger) Start(schedule string) error {
	if _, err := p.cron.AddFunc(schedule, p.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule blacklist purge: %w", err)
	}
	p.cron.Start()
	p.logger.WithField("schedule", schedule).Info("blacklist purge job started")
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (p *Purger) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
}

// RunOnce performs a single purge pass.
func (p *Purger) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	cutoff := p.now().Add(-p.tokenTTL)
	purged, err := p.store.PurgeExpired(ctx, cutoff)
	if err != nil {
		p.logger.WithError(err).Error("blacklist purge failed")
		return
	}
	if p.metrics != nil {
		p.metrics.BlacklistPurgedTotal.Add(float64(purged))
	}
	if purged > 0 {
		p.logger.WithField("purged", purged).Info("blacklist entries purged")
	}
}
