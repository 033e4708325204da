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

var teamColumns = []string{"id", "name", "api_key_hash", "api_key_prefix", "created_at", "updated_at"}

func scanTeam(row interface{ Scan(...any) error }) (*domain.Team, error) {
	var t domain.Team
	if err := row.Scan(&t.ID, &t.Name, &t.APIKeyHash, &t.APIKeyPrefix, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTeam inserts t and the owner's ADMIN membership atomically.
func (s *Store) CreateTeam(ctx context.Context, t *domain.Team, ownerID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		query, args := s.b.Insert(tableTeams).
			Columns("id", "name", "api_key_hash", "api_key_prefix").
			Values(t.ID, t.Name, t.APIKeyHash, t.APIKeyPrefix).
			Returning("created_at", "updated_at").
			Query()
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
			return fmt.Errorf("insert team: %w", mapError(err))
		}

		if _, err := s.exec(ctx, tx, s.b.Insert(tableMemberships).
			Columns("team_id", "user_id", "role").
			Values(t.ID, ownerID, string(domain.RoleAdmin))); err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}
		return nil
	})
}

// GetTeam loads a team by id.
func (s *Store) GetTeam(ctx context.Context, id string) (*domain.Team, error) {
	query, args := s.b.Select(teamColumns...).
		From(s.b.Table(tableTeams)).
		Where(entsql.EQ("id", id)).
		Query()

	t, err := scanTeam(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("team", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get team %q: %w", id, err)
	}
	return t, nil
}

// ListTeamsForUser returns every team userID belongs to, with the caller's
// role and the team's project count, ordered by name.
func (s *Store) ListTeamsForUser(ctx context.Context, userID string) ([]domain.TeamSummary, error) {
	t := s.b.Table(tableTeams).As("t")
	m := s.b.Table(tableMemberships).As("m")
	p := s.b.Table(tableProjects).As("p")

	sel := s.b.Select(
		t.C("id"), t.C("name"), t.C("api_key_hash"), t.C("api_key_prefix"),
		t.C("created_at"), t.C("updated_at"), m.C("role"),
		entsql.As(entsql.Count(p.C("id")), "project_count"),
	).
		From(t).
		Join(m).On(t.C("id"), m.C("team_id")).
		LeftJoin(p).On(t.C("id"), p.C("team_id")).
		Where(entsql.EQ(m.C("user_id"), userID)).
		GroupBy(t.C("id"), m.C("role")).
		OrderBy(t.C("name"))
	query, args := sel.Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TeamSummary, 0)
	for rows.Next() {
		var ts domain.TeamSummary
		var role string
		if err := rows.Scan(&ts.ID, &ts.Name, &ts.APIKeyHash, &ts.APIKeyPrefix,
			&ts.CreatedAt, &ts.UpdatedAt, &role, &ts.ProjectCount); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		ts.Permission = domain.Role(role)
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}
	return out, nil
}

// RenameTeam sets the team's name and returns the updated row.
func (s *Store) RenameTeam(ctx context.Context, id, name string) (*domain.Team, error) {
	n, err := s.exec(ctx, s.db, s.b.Update(tableTeams).
		Set("name", name).
		Set("updated_at", entsql.Expr("now()")).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, fmt.Errorf("rename team %q: %w", id, err)
	}
	if n == 0 {
		return nil, notFound("team", id)
	}
	return s.GetTeam(ctx, id)
}

// SetTeamAPIKey stores a new key hash and display prefix.
func (s *Store) SetTeamAPIKey(ctx context.Context, id, hash, prefix string) error {
	n, err := s.exec(ctx, s.db, s.b.Update(tableTeams).
		Set("api_key_hash", hash).
		Set("api_key_prefix", prefix).
		Set("updated_at", entsql.Expr("now()")).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("set team api key %q: %w", id, err)
	}
	if n == 0 {
		return notFound("team", id)
	}
	return nil
}

// DeleteTeamIfEmpty deletes a team and its memberships when it owns no
// projects. The team row is locked for the duration of the check.
func (s *Store) DeleteTeamIfEmpty(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.lockRow(ctx, tx, tableTeams, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("team", id)
			}
			return fmt.Errorf("lock team %q: %w", id, err)
		}

		projects, err := s.count(ctx, tx, tableProjects, "team_id", id)
		if err != nil {
			return err
		}
		if projects > 0 {
			return fmt.Errorf("team %q has %d projects: %w", id, projects, apperrors.ErrHasDependents)
		}

		if _, err := s.exec(ctx, tx, s.b.Delete(tableMemberships).Where(entsql.EQ("team_id", id))); err != nil {
			return fmt.Errorf("delete team memberships: %w", err)
		}
		if _, err := s.exec(ctx, tx, s.b.Delete(tableTeams).Where(entsql.EQ("id", id))); err != nil {
			return fmt.Errorf("delete team: %w", err)
		}
		return nil
	})
}

func (s *Store) lockRow(ctx context.Context, tx *sql.Tx, table, id string) error {
	query, args := s.b.Select("id").
		From(s.b.Table(table)).
		Where(entsql.EQ("id", id)).
		ForUpdate().
		Query()
	var got string
	return tx.QueryRowContext(ctx, query, args...).Scan(&got)
}
