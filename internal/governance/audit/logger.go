// Package audit records successful mutations as append-only audit entries.
package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"promptdeck.io/promptdeck/internal/domain"
	"promptdeck.io/promptdeck/internal/pkg/logger"
	"promptdeck.io/promptdeck/internal/pkg/worker"
	"promptdeck.io/promptdeck/internal/store"
)

// Resource types.
const (
	ResourceTeam       = "team"
	ResourceProject    = "project"
	ResourcePrompt     = "prompt"
	ResourceMembership = "membership"
)

// Logger writes audit records to the store.
type Logger struct {
	store store.Audit
	pools *worker.Pools
}

// NewLogger creates an audit Logger. When pools is nil, Record writes
// synchronously.
func NewLogger(s store.Audit, pools *worker.Pools) *Logger {
	return &Logger{store: s, pools: pools}
}

// LogAction writes one audit record and returns the store error, if any.
func (l *Logger) LogAction(ctx context.Context, action, resourceType, resourceID, actor string, details map[string]interface{}) error {
	entry := &domain.AuditEntry{
		ID:           generateAuditID(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Actor:        actor,
		Details:      details,
	}
	if err := l.store.InsertAudit(ctx, entry); err != nil {
		logger.Error("Failed to write audit log",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Record writes an audit record on the worker pool. Failures are logged and
// never reach the caller.
func (l *Logger) Record(ctx context.Context, action, resourceType, resourceID, actor string, details map[string]interface{}) {
	if l == nil {
		return
	}
	if l.pools == nil {
		_ = l.LogAction(ctx, action, resourceType, resourceID, actor, details)
		return
	}

	err := l.pools.SubmitDetached(func(ctx context.Context) {
		_ = l.LogAction(ctx, action, resourceType, resourceID, actor, details)
	})
	if err != nil {
		logger.Warn("Audit record dropped",
			zap.String("action", action),
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
	}
}

func generateAuditID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return fmt.Sprintf("audit-%s", id.String())
}
