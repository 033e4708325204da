package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"promptdeck.io/promptdeck/internal/domain"
)

var membershipColumns = []string{"team_id", "user_id", "role", "created_at", "updated_at"}

func scanMembership(row interface{ Scan(...any) error }) (*domain.Membership, error) {
	var m domain.Membership
	var role string
	if err := row.Scan(&m.TeamID, &m.UserID, &role, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Role = domain.Role(role)
	return &m, nil
}

// GetMembership loads the (team, user) membership.
func (s *Store) GetMembership(ctx context.Context, teamID, userID string) (*domain.Membership, error) {
	query, args := s.b.Select(membershipColumns...).
		From(s.b.Table(tableMemberships)).
		Where(entsql.And(
			entsql.EQ("team_id", teamID),
			entsql.EQ("user_id", userID),
		)).
		Query()

	m, err := scanMembership(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("membership", teamID+"/"+userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// ListMemberships returns a team's memberships joined with their users.
func (s *Store) ListMemberships(ctx context.Context, teamID string) ([]domain.Membership, error) {
	m := s.b.Table(tableMemberships).As("m")
	u := s.b.Table(tableUsers).As("u")

	query, args := s.b.Select(
		m.C("team_id"), m.C("user_id"), m.C("role"), m.C("created_at"), m.C("updated_at"),
		u.C("email"), u.C("name"), u.C("created_at"),
	).
		From(m).
		Join(u).On(m.C("user_id"), u.C("id")).
		Where(entsql.EQ(m.C("team_id"), teamID)).
		OrderBy(u.C("email")).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Membership, 0)
	for rows.Next() {
		var mb domain.Membership
		var role string
		user := &domain.User{}
		if err := rows.Scan(&mb.TeamID, &mb.UserID, &role, &mb.CreatedAt, &mb.UpdatedAt,
			&user.Email, &user.Name, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		mb.Role = domain.Role(role)
		user.ID = mb.UserID
		mb.User = user
		out = append(out, mb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return out, nil
}

// InsertMembership adds a new membership. An existing (team, user) pair
// yields apperrors.ErrAlreadyExists.
func (s *Store) InsertMembership(ctx context.Context, m *domain.Membership) error {
	query, args := s.b.Insert(tableMemberships).
		Columns("team_id", "user_id", "role").
		Values(m.TeamID, m.UserID, string(m.Role)).
		Returning("created_at", "updated_at").
		Query()

	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&m.CreatedAt, &m.UpdatedAt); err != nil {
		return fmt.Errorf("insert membership: %w", mapError(err))
	}
	return nil
}

// UpdateMembershipRole changes the role of an existing (team, user) pair.
// A missing pair yields apperrors.ErrNotFound; no row is ever created.
func (s *Store) UpdateMembershipRole(ctx context.Context, teamID, userID string, role domain.Role) (*domain.Membership, error) {
	query, args := s.b.Update(tableMemberships).
		Set("role", string(role)).
		Set("updated_at", entsql.Expr("now()")).
		Where(entsql.And(
			entsql.EQ("team_id", teamID),
			entsql.EQ("user_id", userID),
		)).
		Returning(membershipColumns...).
		Query()

	m, err := scanMembership(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("membership", teamID+"/"+userID)
	}
	if err != nil {
		return nil, fmt.Errorf("update membership role: %w", mapError(err))
	}
	return m, nil
}

// DeleteMembership removes the (team, user) pair.
func (s *Store) DeleteMembership(ctx context.Context, teamID, userID string) error {
	n, err := s.exec(ctx, s.db, s.b.Delete(tableMemberships).Where(entsql.And(
		entsql.EQ("team_id", teamID),
		entsql.EQ("user_id", userID),
	)))
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if n == 0 {
		return notFound("membership", teamID+"/"+userID)
	}
	return nil
}
