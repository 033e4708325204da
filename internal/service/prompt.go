package service

import (
	"context"

	"promptdeck.io/promptdeck/internal/authz"
	"promptdeck.io/promptdeck/internal/domain"
	"promptdeck.io/promptdeck/internal/governance/audit"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
	"promptdeck.io/promptdeck/internal/variables"
)

// PromptService manages prompts within projects.
type PromptService struct {
	*base
}

// PromptView is a prompt with its detected variables and the caller's role.
type PromptView struct {
	domain.Prompt
	Version    string      `json:"version"`
	Permission domain.Role `json:"permission,omitempty"`
	Variables  []string    `json:"variables"`
}

func newPromptView(p *domain.Prompt, role domain.Role) *PromptView {
	return &PromptView{
		Prompt:     *p,
		Version:    p.Version(),
		Permission: role,
		Variables:  variables.Detect(p.Text),
	}
}

// PromptUpdate holds the optional fields of an update. Nil fields are kept.
type PromptUpdate struct {
	Name      *string
	Text      *string
	Status    *string
	ProjectID *string
}

// Create adds a DRAFT prompt at version 1.0.
func (s *PromptService) Create(ctx context.Context, callerID, projectID, name, text string) (*PromptView, error) {
	name, err := validateName("name", name)
	if err != nil {
		return nil, err
	}
	g, err := s.checker.Project(ctx, callerID, projectID, authz.PromptCreate)
	if err != nil {
		return nil, err
	}

	prompt := &domain.Prompt{
		ID:           newID(),
		ProjectID:    projectID,
		Name:         name,
		Text:         text,
		Status:       domain.StatusDraft,
		VersionMajor: 1,
		VersionMinor: 0,
		CreatedBy:    callerID,
	}
	if err := s.store.CreatePrompt(ctx, prompt); err != nil {
		return nil, storeError(err, apperrors.CodeProjectNotFound, "create prompt")
	}

	s.record(ctx, "prompt.create", audit.ResourcePrompt, prompt.ID, callerID, map[string]interface{}{
		"project_id": projectID, "name": name,
	})
	return newPromptView(prompt, g.Role), nil
}

// List returns a project's prompts.
func (s *PromptService) List(ctx context.Context, callerID, projectID string) ([]PromptView, error) {
	g, err := s.checker.Project(ctx, callerID, projectID, authz.ProjectRead)
	if err != nil {
		return nil, err
	}
	prompts, err := s.store.ListPrompts(ctx, projectID)
	if err != nil {
		return nil, storeError(err, "", "list prompts")
	}

	out := make([]PromptView, 0, len(prompts))
	for i := range prompts {
		out = append(out, *newPromptView(&prompts[i], g.Role))
	}
	return out, nil
}

// Get returns one prompt.
func (s *PromptService) Get(ctx context.Context, callerID, promptID string) (*PromptView, error) {
	g, err := s.checker.Prompt(ctx, callerID, promptID, authz.PromptRead)
	if err != nil {
		return nil, err
	}
	return newPromptView(g.Prompt, g.Role), nil
}

// Update applies in. Moving a prompt to another project also requires
// prompt:update on the target project.
func (s *PromptService) Update(ctx context.Context, callerID, promptID string, in PromptUpdate) (*PromptView, error) {
	var changes domain.PromptChanges
	if in.Name != nil {
		name, err := validateName("name", *in.Name)
		if err != nil {
			return nil, err
		}
		changes.Name = &name
	}
	if in.Status != nil {
		status, ok := domain.ParseStatus(*in.Status)
		if !ok {
			return nil, apperrors.BadRequest(apperrors.CodeInvalidStatus, "status must be one of DRAFT, STAGING, PRODUCTION").
				WithParams(map[string]interface{}{"status": *in.Status})
		}
		changes.Status = &status
	}
	changes.Text = in.Text

	g, err := s.checker.Prompt(ctx, callerID, promptID, authz.PromptUpdate)
	if err != nil {
		return nil, err
	}
	prompt := g.Prompt
	from := *prompt

	if in.ProjectID != nil && *in.ProjectID != prompt.ProjectID {
		if _, err := s.checker.Project(ctx, callerID, *in.ProjectID, authz.PromptUpdate); err != nil {
			return nil, err
		}
		changes.ProjectID = in.ProjectID
	}

	changes.Apply(prompt)
	if err := s.store.UpdatePrompt(ctx, prompt); err != nil {
		return nil, storeError(err, apperrors.CodePromptNotFound, "update prompt")
	}

	s.record(ctx, "prompt.update", audit.ResourcePrompt, promptID, callerID, promptDiff(&from, prompt))
	return newPromptView(prompt, g.Role), nil
}

// Delete removes a prompt.
func (s *PromptService) Delete(ctx context.Context, callerID, promptID string) error {
	g, err := s.checker.Prompt(ctx, callerID, promptID, authz.PromptDelete)
	if err != nil {
		return err
	}
	if err := s.store.DeletePrompt(ctx, promptID); err != nil {
		return storeError(err, apperrors.CodePromptNotFound, "delete prompt")
	}

	s.record(ctx, "prompt.delete", audit.ResourcePrompt, promptID, callerID, map[string]interface{}{
		"project_id": g.Project.ID,
	})
	return nil
}

func promptDiff(from, to *domain.Prompt) map[string]interface{} {
	d := map[string]interface{}{"version": to.Version()}
	if from.Name != to.Name {
		d["name"] = to.Name
	}
	if from.Text != to.Text {
		d["text_changed"] = true
	}
	if from.Status != to.Status {
		d["status"] = string(to.Status)
	}
	if from.ProjectID != to.ProjectID {
		d["project_id"] = to.ProjectID
	}
	return d
}
