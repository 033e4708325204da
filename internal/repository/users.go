package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"

	"promptdeck.io/promptdeck/internal/domain"
)

var userColumns = []string{"id", "email", "name", "created_at"}

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUser inserts u or refreshes the email of an existing id. The stored
// name is only replaced by a non-empty one.
func (s *Store) UpsertUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	query, args := s.b.Insert(tableUsers).
		Columns("id", "email", "name").
		Values(u.ID, strings.TrimSpace(u.Email), u.Name).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(set *entsql.UpdateSet) {
				set.SetExcluded("email")
				if u.Name != "" {
					set.SetExcluded("name")
				}
			}),
		).
		Returning(userColumns...).
		Query()

	out, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("upsert user %q: %w", u.ID, mapError(err))
	}
	return out, nil
}

// GetUser loads a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	query, args := s.b.Select(userColumns...).
		From(s.b.Table(tableUsers)).
		Where(entsql.EQ("id", id)).
		Query()

	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail loads a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query, args := s.b.Select(userColumns...).
		From(s.b.Table(tableUsers)).
		Where(entsql.EQ("lower(email)", strings.ToLower(strings.TrimSpace(email)))).
		Query()

	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", email)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}
