package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/praxiscrm/praxis/internal/cache"
	"github.com/praxiscrm/praxis/internal/services"
	"github.com/praxiscrm/praxis/pkg/logger"
)

const (
	defaultAuditRetentionDays = 90
	defaultCacheSpec          = "@hourly"
	defaultAuditSpec          = "@daily"
)

// Cleaner coordinates background maintenance tasks: purging expired decision
// cache rows and pruning stale audit logs.
type Cleaner struct {
	store     *cache.DatabaseStore
	audit     *services.AuditService
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention int

	cacheSchedule string
	auditSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithCacheSchedule overrides the cron expression for cache purging.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron expression for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil dependency
// results in the corresponding cleanup job being skipped.
func NewCleaner(store *cache.DatabaseStore, audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		store:         store,
		audit:         audit,
		now:           time.Now,
		retention:     defaultAuditRetentionDays,
		cacheSchedule: defaultCacheSpec,
		auditSchedule: defaultAuditSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.store != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			ctx := context.Background()
			if _, err := c.store.PurgeExpired(ctx, c.now()); err != nil {
				c.log.Warn("cache purge failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.audit != nil && c.retention > 0 {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			ctx := context.Background()
			if _, err := c.audit.CleanupOlderThan(ctx, c.retention); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.store != nil {
		if _, err := c.store.PurgeExpired(ctx, c.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.audit != nil && c.retention > 0 {
		if _, err := c.audit.CleanupOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
