package service

import (
	"context"

	"promptdeck.io/promptdeck/internal/authz"
	"promptdeck.io/promptdeck/internal/governance/audit"
	"promptdeck.io/promptdeck/internal/pkg/apikey"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
	"promptdeck.io/promptdeck/internal/variables"
)

// APIKeyService rotates keys and serves prompts to key holders.
type APIKeyService struct {
	*base
	verifier *authz.KeyVerifier
}

// RotatedKey is returned once, right after rotation.
type RotatedKey struct {
	APIKey       string `json:"api_key"`
	APIKeyPrefix string `json:"api_key_prefix"`
}

// ResolvedPrompt is the view served to API-key holders.
type ResolvedPrompt struct {
	ID        string   `json:"id"`
	ProjectID string   `json:"project_id"`
	Name      string   `json:"name"`
	Text      string   `json:"text"`
	Rendered  string   `json:"rendered"`
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Variables []string `json:"variables"`
}

// RotateTeamKey replaces a team's API key. The old key stops working.
func (s *APIKeyService) RotateTeamKey(ctx context.Context, callerID, teamID string) (*RotatedKey, error) {
	if _, err := s.checker.Team(ctx, callerID, teamID, authz.TeamRotateKey); err != nil {
		return nil, err
	}
	key, err := s.keys.Generate(apikey.TeamPrefix)
	if err != nil {
		return nil, internalError(err, "generate api key")
	}
	if err := s.store.SetTeamAPIKey(ctx, teamID, key.Hash, key.Display); err != nil {
		return nil, storeError(err, apperrors.CodeTeamNotFound, "rotate team key")
	}

	s.record(ctx, "team.rotate_key", audit.ResourceTeam, teamID, callerID, nil)
	return &RotatedKey{APIKey: key.Plaintext, APIKeyPrefix: key.Display}, nil
}

// RotateProjectKey replaces a project's API key.
func (s *APIKeyService) RotateProjectKey(ctx context.Context, callerID, projectID string) (*RotatedKey, error) {
	if _, err := s.checker.Project(ctx, callerID, projectID, authz.ProjectRotateKey); err != nil {
		return nil, err
	}
	key, err := s.keys.Generate(apikey.ProjectPrefix)
	if err != nil {
		return nil, internalError(err, "generate api key")
	}
	if err := s.store.SetProjectAPIKey(ctx, projectID, key.Hash, key.Display); err != nil {
		return nil, storeError(err, apperrors.CodeProjectNotFound, "rotate project key")
	}

	s.record(ctx, "project.rotate_key", audit.ResourceProject, projectID, callerID, nil)
	return &RotatedKey{APIKey: key.Plaintext, APIKeyPrefix: key.Display}, nil
}

// ResolvePrompt returns a prompt to the holder of its project's or team's
// key, rendered with values.
func (s *APIKeyService) ResolvePrompt(ctx context.Context, promptID, key string, values map[string]string) (*ResolvedPrompt, error) {
	g, err := s.verifier.Verify(ctx, promptID, key)
	if err != nil {
		return nil, err
	}
	p := g.Prompt
	return &ResolvedPrompt{
		ID:        p.ID,
		ProjectID: p.ProjectID,
		Name:      p.Name,
		Text:      p.Text,
		Rendered:  variables.Render(p.Text, values),
		Status:    string(p.Status),
		Version:   p.Version(),
		Variables: variables.Detect(p.Text),
	}, nil
}
