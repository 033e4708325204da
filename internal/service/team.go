package service

import (
	"context"
	"errors"

	"promptdeck.io/promptdeck/internal/authz"
	"promptdeck.io/promptdeck/internal/domain"
	"promptdeck.io/promptdeck/internal/governance/audit"
	"promptdeck.io/promptdeck/internal/pkg/apikey"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
)

// TeamService manages teams.
type TeamService struct {
	*base
}

// TeamView is a team together with the caller's role in it.
type TeamView struct {
	domain.Team
	Permission domain.Role `json:"permission"`
}

// CreatedTeam carries the one-time plaintext API key of a new team.
type CreatedTeam struct {
	TeamView
	APIKey string `json:"api_key"`
}

// Create makes a team with the caller as its ADMIN.
func (s *TeamService) Create(ctx context.Context, callerID, name string) (*CreatedTeam, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized(apperrors.CodeUnauthorized, "authentication required")
	}
	name, err := validateName("name", name)
	if err != nil {
		return nil, err
	}

	key, err := s.keys.Generate(apikey.TeamPrefix)
	if err != nil {
		return nil, internalError(err, "generate api key")
	}

	team := &domain.Team{
		ID:           newID(),
		Name:         name,
		APIKeyHash:   key.Hash,
		APIKeyPrefix: key.Display,
	}
	if err := s.store.CreateTeam(ctx, team, callerID); err != nil {
		return nil, storeError(err, "", "create team")
	}

	s.record(ctx, "team.create", audit.ResourceTeam, team.ID, callerID, map[string]interface{}{"name": name})
	return &CreatedTeam{
		TeamView: TeamView{Team: *team, Permission: domain.RoleAdmin},
		APIKey:   key.Plaintext,
	}, nil
}

// List returns the caller's teams, each with the caller's role.
func (s *TeamService) List(ctx context.Context, callerID string) ([]domain.TeamSummary, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized(apperrors.CodeUnauthorized, "authentication required")
	}
	teams, err := s.store.ListTeamsForUser(ctx, callerID)
	if err != nil {
		return nil, storeError(err, "", "list teams")
	}
	return teams, nil
}

// Get returns one team the caller belongs to.
func (s *TeamService) Get(ctx context.Context, callerID, teamID string) (*TeamView, error) {
	g, err := s.checker.Team(ctx, callerID, teamID, authz.TeamRead)
	if err != nil {
		return nil, err
	}
	return &TeamView{Team: *g.Team, Permission: g.Role}, nil
}

// Rename changes a team's name. Last write wins.
func (s *TeamService) Rename(ctx context.Context, callerID, teamID, name string) (*TeamView, error) {
	name, err := validateName("name", name)
	if err != nil {
		return nil, err
	}
	g, err := s.checker.Team(ctx, callerID, teamID, authz.TeamUpdate)
	if err != nil {
		return nil, err
	}

	team, err := s.store.RenameTeam(ctx, teamID, name)
	if err != nil {
		return nil, storeError(err, apperrors.CodeTeamNotFound, "rename team")
	}

	s.record(ctx, "team.rename", audit.ResourceTeam, teamID, callerID, map[string]interface{}{
		"from": g.Team.Name, "to": name,
	})
	return &TeamView{Team: *team, Permission: g.Role}, nil
}

// Delete removes a team that has no projects, together with its memberships.
func (s *TeamService) Delete(ctx context.Context, callerID, teamID string) error {
	if _, err := s.checker.Team(ctx, callerID, teamID, authz.TeamDelete); err != nil {
		return err
	}

	if err := s.store.DeleteTeamIfEmpty(ctx, teamID); err != nil {
		if errors.Is(err, apperrors.ErrHasDependents) {
			return apperrors.BadRequest(apperrors.CodeTeamHasProjects, "delete all projects before deleting the team")
		}
		return storeError(err, apperrors.CodeTeamNotFound, "delete team")
	}

	s.record(ctx, "team.delete", audit.ResourceTeam, teamID, callerID, nil)
	return nil
}
