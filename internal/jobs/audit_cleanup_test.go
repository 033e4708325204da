package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptdeck.io/promptdeck/internal/domain"
	"promptdeck.io/promptdeck/internal/testutil"
)

func TestAuditCleanupArgsKind(t *testing.T) {
	t.Parallel()

	if got := (AuditCleanupArgs{}).Kind(); got != "audit_cleanup" {
		t.Fatalf("Kind() = %q, want %q", got, "audit_cleanup")
	}
}

func TestAuditCleanupArgsInsertOpts(t *testing.T) {
	t.Parallel()

	opts := (AuditCleanupArgs{}).InsertOpts()
	assert.Equal(t, river.QueueDefault, opts.Queue)
	assert.Equal(t, 1, opts.MaxAttempts)
	assert.Equal(t, 24*time.Hour, opts.UniqueOpts.ByPeriod)
	assert.True(t, opts.UniqueOpts.ByQueue)
	assert.True(t, opts.UniqueOpts.ByArgs)
}

func TestNewAuditCleanupWorkerRetention(t *testing.T) {
	t.Parallel()

	t.Run("defaults to ninety days when non-positive", func(t *testing.T) {
		w := NewAuditCleanupWorker(nil, 0)
		assert.Equal(t, DefaultAuditRetention, w.retention)
	})

	t.Run("uses explicit retention when provided", func(t *testing.T) {
		want := 7 * 24 * time.Hour
		w := NewAuditCleanupWorker(nil, want)
		assert.Equal(t, want, w.retention)
	})
}

func TestAuditCleanupWorkerWork_Uninitialized(t *testing.T) {
	t.Parallel()

	t.Run("nil receiver", func(t *testing.T) {
		var w *AuditCleanupWorker
		err := w.Work(context.Background(), nil)
		if err == nil || !strings.Contains(err.Error(), "not initialized") {
			t.Fatalf("Work() error = %v, want contains %q", err, "not initialized")
		}
	})

	t.Run("nil store", func(t *testing.T) {
		w := &AuditCleanupWorker{}
		err := w.Work(context.Background(), nil)
		if err == nil || !strings.Contains(err.Error(), "not initialized") {
			t.Fatalf("Work() error = %v, want contains %q", err, "not initialized")
		}
	})
}

func TestAuditCleanupWorkerWork_DeletesExpiredRows(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s := testutil.NewMemStore()
	ctx := context.Background()
	for i, age := range []time.Duration{100 * 24 * time.Hour, 91 * 24 * time.Hour, 10 * 24 * time.Hour, time.Hour} {
		require.NoError(t, s.InsertAudit(ctx, &domain.AuditEntry{
			ID:        "audit-" + string(rune('a'+i)),
			Action:    "team.create",
			CreatedAt: now.Add(-age),
		}))
	}

	w := NewAuditCleanupWorker(s, 0)
	w.now = func() time.Time { return now }
	require.NoError(t, w.Work(ctx, nil))

	remaining := s.AuditEntries()
	require.Len(t, remaining, 2)
	assert.Equal(t, "audit-c", remaining[0].ID)
	assert.Equal(t, "audit-d", remaining[1].ID)
}

func TestAuditCleanupWorkerWork_StoreError(t *testing.T) {
	t.Parallel()

	s := testutil.NewMemStore()
	s.FailOn("DeleteAuditBefore", errors.New("connection reset"))

	err := NewAuditCleanupWorker(s, time.Hour).Work(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestAuditCleanupPeriodicJob(t *testing.T) {
	t.Parallel()
	assert.NotNil(t, AuditCleanupPeriodicJob())
}
