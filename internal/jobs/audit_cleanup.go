// Package jobs defines River Queue job types for background maintenance.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"promptdeck.io/promptdeck/internal/pkg/logger"
	"promptdeck.io/promptdeck/internal/store"
)

const (
	// DefaultAuditRetention is how long audit rows are kept when no
	// retention is configured.
	DefaultAuditRetention = 90 * 24 * time.Hour

	auditCleanupInterval = 24 * time.Hour
)

// AuditCleanupArgs is a periodic maintenance job that removes expired audit
// log rows.
type AuditCleanupArgs struct{}

// Kind returns the job kind identifier for periodic audit cleanup.
func (AuditCleanupArgs) Kind() string { return "audit_cleanup" }

// InsertOpts ensures at most one cleanup job is enqueued within the same day.
func (AuditCleanupArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       river.QueueDefault,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByPeriod: auditCleanupInterval,
			ByQueue:  true,
			ByArgs:   true,
		},
	}
}

// AuditCleanupWorker deletes audit rows older than the configured retention.
type AuditCleanupWorker struct {
	river.WorkerDefaults[AuditCleanupArgs]
	store     store.Audit
	retention time.Duration
	now       func() time.Time
}

// NewAuditCleanupWorker creates a cleanup worker. Non-positive retention
// falls back to the 90-day default.
func NewAuditCleanupWorker(s store.Audit, retention time.Duration) *AuditCleanupWorker {
	if retention <= 0 {
		retention = DefaultAuditRetention
	}
	return &AuditCleanupWorker{
		store:     s,
		retention: retention,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Work removes expired audit rows.
func (w *AuditCleanupWorker) Work(ctx context.Context, _ *river.Job[AuditCleanupArgs]) error {
	if w == nil || w.store == nil {
		return fmt.Errorf("audit cleanup worker is not initialized")
	}

	cutoff := w.now().Add(-w.retention)
	deleted, err := w.store.DeleteAuditBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete audit rows before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	logger.Info("audit cleanup completed",
		zap.Int("deleted_rows", deleted),
		zap.String("cutoff", cutoff.Format(time.RFC3339)),
		zap.Duration("retention", w.retention),
	)
	return nil
}

// AuditCleanupPeriodicJob schedules the cleanup daily and once at startup.
func AuditCleanupPeriodicJob() *river.PeriodicJob {
	return river.NewPeriodicJob(
		river.PeriodicInterval(auditCleanupInterval),
		func() (river.JobArgs, *river.InsertOpts) {
			return AuditCleanupArgs{}, nil
		},
		&river.PeriodicJobOpts{RunOnStart: true},
	)
}
