package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"promptdeck.io/promptdeck/internal/domain"
)

// InsertAudit appends an audit entry.
func (s *Store) InsertAudit(ctx context.Context, e *domain.AuditEntry) error {
	var details []byte
	if len(e.Details) > 0 {
		var err error
		if details, err = json.Marshal(e.Details); err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	if _, err := s.exec(ctx, s.db, s.b.Insert(tableAudit).
		Columns("id", "action", "resource_type", "resource_id", "actor", "details", "created_at").
		Values(e.ID, e.Action, e.ResourceType, e.ResourceID, e.Actor, details, e.CreatedAt)); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// DeleteAuditBefore removes entries created before the cutoff.
func (s *Store) DeleteAuditBefore(ctx context.Context, before time.Time) (int, error) {
	n, err := s.exec(ctx, s.db, s.b.Delete(tableAudit).Where(entsql.LT("created_at", before)))
	if err != nil {
		return 0, fmt.Errorf("delete audit logs: %w", err)
	}
	return int(n), nil
}
