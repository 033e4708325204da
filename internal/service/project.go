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

// ProjectService manages projects within teams.
type ProjectService struct {
	*base
}

// ProjectView is a project together with the caller's role on its team.
type ProjectView struct {
	domain.Project
	Permission domain.Role `json:"permission"`
}

// CreatedProject carries the one-time plaintext API key of a new project.
type CreatedProject struct {
	ProjectView
	APIKey string `json:"api_key"`
}

// Create adds a project to a team.
func (s *ProjectService) Create(ctx context.Context, callerID, teamID, name string) (*CreatedProject, error) {
	name, err := validateName("name", name)
	if err != nil {
		return nil, err
	}
	g, err := s.checker.Team(ctx, callerID, teamID, authz.ProjectCreate)
	if err != nil {
		return nil, err
	}

	key, err := s.keys.Generate(apikey.ProjectPrefix)
	if err != nil {
		return nil, internalError(err, "generate api key")
	}

	project := &domain.Project{
		ID:           newID(),
		TeamID:       teamID,
		Name:         name,
		APIKeyHash:   key.Hash,
		APIKeyPrefix: key.Display,
	}
	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, storeError(err, apperrors.CodeTeamNotFound, "create project")
	}

	s.record(ctx, "project.create", audit.ResourceProject, project.ID, callerID, map[string]interface{}{
		"team_id": teamID, "name": name,
	})
	return &CreatedProject{
		ProjectView: ProjectView{Project: *project, Permission: g.Role},
		APIKey:      key.Plaintext,
	}, nil
}

// List returns a team's projects.
func (s *ProjectService) List(ctx context.Context, callerID, teamID string) ([]domain.Project, error) {
	if _, err := s.checker.Team(ctx, callerID, teamID, authz.TeamRead); err != nil {
		return nil, err
	}
	projects, err := s.store.ListProjects(ctx, teamID)
	if err != nil {
		return nil, storeError(err, "", "list projects")
	}
	return projects, nil
}

// Get returns one project.
func (s *ProjectService) Get(ctx context.Context, callerID, projectID string) (*ProjectView, error) {
	g, err := s.checker.Project(ctx, callerID, projectID, authz.ProjectRead)
	if err != nil {
		return nil, err
	}
	return &ProjectView{Project: *g.Project, Permission: g.Role}, nil
}

// Rename changes a project's name. Last write wins.
func (s *ProjectService) Rename(ctx context.Context, callerID, projectID, name string) (*ProjectView, error) {
	name, err := validateName("name", name)
	if err != nil {
		return nil, err
	}
	g, err := s.checker.Project(ctx, callerID, projectID, authz.ProjectUpdate)
	if err != nil {
		return nil, err
	}

	project, err := s.store.RenameProject(ctx, projectID, name)
	if err != nil {
		return nil, storeError(err, apperrors.CodeProjectNotFound, "rename project")
	}

	s.record(ctx, "project.rename", audit.ResourceProject, projectID, callerID, map[string]interface{}{
		"from": g.Project.Name, "to": name,
	})
	return &ProjectView{Project: *project, Permission: g.Role}, nil
}

// Delete removes a project that has no prompts.
func (s *ProjectService) Delete(ctx context.Context, callerID, projectID string) error {
	g, err := s.checker.Project(ctx, callerID, projectID, authz.ProjectDelete)
	if err != nil {
		return err
	}

	if err := s.store.DeleteProjectIfEmpty(ctx, projectID); err != nil {
		if errors.Is(err, apperrors.ErrHasDependents) {
			return apperrors.BadRequest(apperrors.CodeProjectHasPrompts, "delete all prompts before deleting the project")
		}
		return storeError(err, apperrors.CodeProjectNotFound, "delete project")
	}

	s.record(ctx, "project.delete", audit.ResourceProject, projectID, callerID, map[string]interface{}{
		"team_id": g.Team.ID,
	})
	return nil
}
