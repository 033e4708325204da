// Package store declares the persistence contract used by the services.
//
// Lookups return an error wrapping apperrors.ErrNotFound when the row is
// missing. Inserts that collide with a unique key return an error wrapping
// apperrors.ErrAlreadyExists. The *IfEmpty deletes run their child count and
// delete in one transaction and return apperrors.ErrHasDependents without
// mutating anything when children remain.
package store

import (
	"context"
	"time"

	"promptdeck.io/promptdeck/internal/domain"
)

// Users persists identities registered at sign-in.
type Users interface {
	UpsertUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Teams persists teams. CreateTeam also inserts the creator's ADMIN
// membership in the same transaction.
type Teams interface {
	CreateTeam(ctx context.Context, t *domain.Team, ownerID string) error
	GetTeam(ctx context.Context, id string) (*domain.Team, error)
	ListTeamsForUser(ctx context.Context, userID string) ([]domain.TeamSummary, error)
	RenameTeam(ctx context.Context, id, name string) (*domain.Team, error)
	SetTeamAPIKey(ctx context.Context, id, hash, prefix string) error
	DeleteTeamIfEmpty(ctx context.Context, id string) error
}

// Memberships persists (team, user, role) rows.
type Memberships interface {
	GetMembership(ctx context.Context, teamID, userID string) (*domain.Membership, error)
	ListMemberships(ctx context.Context, teamID string) ([]domain.Membership, error)
	InsertMembership(ctx context.Context, m *domain.Membership) error
	UpdateMembershipRole(ctx context.Context, teamID, userID string, role domain.Role) (*domain.Membership, error)
	DeleteMembership(ctx context.Context, teamID, userID string) error
}

// Projects persists projects.
type Projects interface {
	CreateProject(ctx context.Context, p *domain.Project) error
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	ListProjects(ctx context.Context, teamID string) ([]domain.Project, error)
	RenameProject(ctx context.Context, id, name string) (*domain.Project, error)
	SetProjectAPIKey(ctx context.Context, id, hash, prefix string) error
	DeleteProjectIfEmpty(ctx context.Context, id string) error
}

// Prompts persists prompts. UpdatePrompt writes every mutable column.
type Prompts interface {
	CreatePrompt(ctx context.Context, p *domain.Prompt) error
	GetPrompt(ctx context.Context, id string) (*domain.Prompt, error)
	ListPrompts(ctx context.Context, projectID string) ([]domain.Prompt, error)
	UpdatePrompt(ctx context.Context, p *domain.Prompt) error
	DeletePrompt(ctx context.Context, id string) error
}

// Audit persists audit entries.
type Audit interface {
	InsertAudit(ctx context.Context, e *domain.AuditEntry) error
	DeleteAuditBefore(ctx context.Context, before time.Time) (int, error)
}

// Store is the full persistence surface.
type Store interface {
	Users
	Teams
	Memberships
	Projects
	Prompts
	Audit
}
