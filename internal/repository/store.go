// Package repository implements store.Store on PostgreSQL.
//
// Statements are built with ent's dialect/sql builder and executed over a
// *sql.DB that shares the application's pgxpool.
package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
	"promptdeck.io/promptdeck/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Table names.
const (
	tableUsers       = "users"
	tableTeams       = "teams"
	tableMemberships = "team_memberships"
	tableProjects    = "projects"
	tablePrompts     = "prompts"
	tableAudit       = "audit_logs"
)

const pgUniqueViolation = "23505"

var _ store.Store = (*Store)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the PostgreSQL store.
type Store struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

// New creates a store over db.
func New(db *sql.DB) *Store {
	return &Store{db: db, b: entsql.Dialect(dialect.Postgres)}
}

// Migrate creates the application tables when they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// withTx runs fn in a transaction, rolling back when fn fails.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type querierBuilder interface {
	Query() (string, []any)
}

func (s *Store) exec(ctx context.Context, q querier, qb querierBuilder) (int64, error) {
	query, args := qb.Query()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (s *Store) count(ctx context.Context, q querier, table, column, value string) (int, error) {
	query, args := s.b.Select(entsql.Count("*")).
		From(s.b.Table(table)).
		Where(entsql.EQ(column, value)).
		Query()
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// mapError translates driver errors into the sentinel errors services match on.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, apperrors.ErrAlreadyExists)
	}
	return err
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, apperrors.ErrNotFound)
}
