package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"promptdeck.io/promptdeck/internal/domain"
)

var promptColumns = []string{
	"id", "project_id", "name", "text", "status",
	"version_major", "version_minor", "created_by", "created_at", "updated_at",
}

func scanPrompt(row interface{ Scan(...any) error }) (*domain.Prompt, error) {
	var p domain.Prompt
	var status string
	if err := row.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Text, &status,
		&p.VersionMajor, &p.VersionMinor, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	return &p, nil
}

// CreatePrompt inserts p.
func (s *Store) CreatePrompt(ctx context.Context, p *domain.Prompt) error {
	query, args := s.b.Insert(tablePrompts).
		Columns("id", "project_id", "name", "text", "status", "version_major", "version_minor", "created_by").
		Values(p.ID, p.ProjectID, p.Name, p.Text, string(p.Status), p.VersionMajor, p.VersionMinor, p.CreatedBy).
		Returning("created_at", "updated_at").
		Query()

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert prompt: %w", mapError(err))
	}
	return nil
}

// GetPrompt loads a prompt by id.
func (s *Store) GetPrompt(ctx context.Context, id string) (*domain.Prompt, error) {
	query, args := s.b.Select(promptColumns...).
		From(s.b.Table(tablePrompts)).
		Where(entsql.EQ("id", id)).
		Query()

	p, err := scanPrompt(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("prompt", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get prompt %q: %w", id, err)
	}
	return p, nil
}

// ListPrompts returns a project's prompts ordered by name.
func (s *Store) ListPrompts(ctx context.Context, projectID string) ([]domain.Prompt, error) {
	query, args := s.b.Select(promptColumns...).
		From(s.b.Table(tablePrompts)).
		Where(entsql.EQ("project_id", projectID)).
		OrderBy("name").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Prompt, 0)
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}
	return out, nil
}

// UpdatePrompt writes every mutable column of p.
func (s *Store) UpdatePrompt(ctx context.Context, p *domain.Prompt) error {
	n, err := s.exec(ctx, s.db, s.b.Update(tablePrompts).
		Set("project_id", p.ProjectID).
		Set("name", p.Name).
		Set("text", p.Text).
		Set("status", string(p.Status)).
		Set("version_major", p.VersionMajor).
		Set("version_minor", p.VersionMinor).
		Set("updated_at", entsql.Expr("now()")).
		Where(entsql.EQ("id", p.ID)))
	if err != nil {
		return fmt.Errorf("update prompt %q: %w", p.ID, err)
	}
	if n == 0 {
		return notFound("prompt", p.ID)
	}
	return nil
}

// DeletePrompt removes a prompt.
func (s *Store) DeletePrompt(ctx context.Context, id string) error {
	n, err := s.exec(ctx, s.db, s.b.Delete(tablePrompts).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete prompt %q: %w", id, err)
	}
	if n == 0 {
		return notFound("prompt", id)
	}
	return nil
}
