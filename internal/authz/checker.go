package authz

import (
	"context"
	"errors"
	"net/http"

	"promptdeck.io/promptdeck/internal/domain"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
)

// ChainReader loads the records an authorization decision walks.
// Implementations return an error wrapping apperrors.ErrNotFound for
// missing rows.
type ChainReader interface {
	GetTeam(ctx context.Context, id string) (*domain.Team, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	GetPrompt(ctx context.Context, id string) (*domain.Prompt, error)
	GetMembership(ctx context.Context, teamID, userID string) (*domain.Membership, error)
}

// Grant is the outcome of a successful check. Project and Prompt are set
// only when the check started at that level.
type Grant struct {
	Role    domain.Role
	Team    *domain.Team
	Project *domain.Project
	Prompt  *domain.Prompt
}

// Checker resolves a caller's role by walking prompt -> project -> team ->
// membership. Nothing is cached; every call reads the store.
type Checker struct {
	store ChainReader
}

// NewChecker creates a checker over store.
func NewChecker(store ChainReader) *Checker {
	return &Checker{store: store}
}

// Team checks action on a team.
func (c *Checker) Team(ctx context.Context, userID, teamID string, action Action) (*Grant, error) {
	if userID == "" {
		return nil, errUnauthenticated()
	}
	notFound := func() error { return apperrors.NotFound(apperrors.CodeTeamNotFound, "team not found") }

	team, err := c.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, mapLookup(err, notFound)
	}
	return c.authorize(ctx, &Grant{Team: team}, userID, action, notFound)
}

// Project checks action on a project through its owning team.
func (c *Checker) Project(ctx context.Context, userID, projectID string, action Action) (*Grant, error) {
	if userID == "" {
		return nil, errUnauthenticated()
	}
	notFound := func() error { return apperrors.NotFound(apperrors.CodeProjectNotFound, "project not found") }

	project, err := c.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, mapLookup(err, notFound)
	}
	team, err := c.store.GetTeam(ctx, project.TeamID)
	if err != nil {
		return nil, mapLookup(err, notFound)
	}
	return c.authorize(ctx, &Grant{Team: team, Project: project}, userID, action, notFound)
}

// Prompt checks action on a prompt through its project and team.
func (c *Checker) Prompt(ctx context.Context, userID, promptID string, action Action) (*Grant, error) {
	if userID == "" {
		return nil, errUnauthenticated()
	}
	notFound := func() error { return apperrors.NotFound(apperrors.CodePromptNotFound, "prompt not found") }

	prompt, err := c.store.GetPrompt(ctx, promptID)
	if err != nil {
		return nil, mapLookup(err, notFound)
	}
	project, err := c.store.GetProject(ctx, prompt.ProjectID)
	if err != nil {
		return nil, mapLookup(err, notFound)
	}
	team, err := c.store.GetTeam(ctx, project.TeamID)
	if err != nil {
		return nil, mapLookup(err, notFound)
	}
	return c.authorize(ctx, &Grant{Team: team, Project: project, Prompt: prompt}, userID, action, notFound)
}

// authorize reads the caller's membership on g.Team. Non-members get the
// same not-found error as a missing resource.
func (c *Checker) authorize(ctx context.Context, g *Grant, userID string, action Action, notFound func() error) (*Grant, error) {
	m, err := c.store.GetMembership(ctx, g.Team.ID, userID)
	if err != nil {
		return nil, mapLookup(err, notFound)
	}
	if !Allows(m.Role, action) {
		return nil, apperrors.ErrForbiddenAction(string(action))
	}
	g.Role = m.Role
	return g, nil
}

func mapLookup(err error, notFound func() error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return notFound()
	}
	return apperrors.Wrap(err, apperrors.CodeInternal, "permission check failed", http.StatusInternalServerError)
}

func errUnauthenticated() error {
	return apperrors.Unauthorized(apperrors.CodeUnauthorized, "authentication required")
}
