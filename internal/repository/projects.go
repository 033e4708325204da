package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"promptdeck.io/promptdeck/internal/domain"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
)

var projectColumns = []string{"id", "team_id", "name", "api_key_hash", "api_key_prefix", "created_at", "updated_at"}

func scanProject(row interface{ Scan(...any) error }) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(&p.ID, &p.TeamID, &p.Name, &p.APIKeyHash, &p.APIKeyPrefix, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts p.
func (s *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	query, args := s.b.Insert(tableProjects).
		Columns("id", "team_id", "name", "api_key_hash", "api_key_prefix").
		Values(p.ID, p.TeamID, p.Name, p.APIKeyHash, p.APIKeyPrefix).
		Returning("created_at", "updated_at").
		Query()

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert project: %w", mapError(err))
	}
	return nil
}

// GetProject loads a project by id.
func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	query, args := s.b.Select(projectColumns...).
		From(s.b.Table(tableProjects)).
		Where(entsql.EQ("id", id)).
		Query()

	p, err := scanProject(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %q: %w", id, err)
	}
	return p, nil
}

// ListProjects returns a team's projects ordered by name.
func (s *Store) ListProjects(ctx context.Context, teamID string) ([]domain.Project, error) {
	query, args := s.b.Select(projectColumns...).
		From(s.b.Table(tableProjects)).
		Where(entsql.EQ("team_id", teamID)).
		OrderBy("name").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}

// RenameProject sets the project's name and returns the updated row.
func (s *Store) RenameProject(ctx context.Context, id, name string) (*domain.Project, error) {
	n, err := s.exec(ctx, s.db, s.b.Update(tableProjects).
		Set("name", name).
		Set("updated_at", entsql.Expr("now()")).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, fmt.Errorf("rename project %q: %w", id, err)
	}
	if n == 0 {
		return nil, notFound("project", id)
	}
	return s.GetProject(ctx, id)
}

// SetProjectAPIKey stores a new key hash and display prefix.
func (s *Store) SetProjectAPIKey(ctx context.Context, id, hash, prefix string) error {
	n, err := s.exec(ctx, s.db, s.b.Update(tableProjects).
		Set("api_key_hash", hash).
		Set("api_key_prefix", prefix).
		Set("updated_at", entsql.Expr("now()")).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("set project api key %q: %w", id, err)
	}
	if n == 0 {
		return notFound("project", id)
	}
	return nil
}

// DeleteProjectIfEmpty deletes a project that owns no prompts.
func (s *Store) DeleteProjectIfEmpty(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.lockRow(ctx, tx, tableProjects, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("project", id)
			}
			return fmt.Errorf("lock project %q: %w", id, err)
		}

		prompts, err := s.count(ctx, tx, tablePrompts, "project_id", id)
		if err != nil {
			return err
		}
		if prompts > 0 {
			return fmt.Errorf("project %q has %d prompts: %w", id, prompts, apperrors.ErrHasDependents)
		}

		if _, err := s.exec(ctx, tx, s.b.Delete(tableProjects).Where(entsql.EQ("id", id))); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}
