// Package service implements the team, project, prompt, membership and
// API-key operations. Every operation authorizes through authz.Checker
// before touching the store and returns *apperrors.AppError on failure.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"promptdeck.io/promptdeck/internal/authz"
	"promptdeck.io/promptdeck/internal/domain"
	"promptdeck.io/promptdeck/internal/pkg/apikey"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
	"promptdeck.io/promptdeck/internal/store"
)

// MaxNameLength bounds team, project and prompt names, in characters.
const MaxNameLength = 128

// Auditor records successful mutations.
type Auditor interface {
	Record(ctx context.Context, action, resourceType, resourceID, actor string, details map[string]interface{})
}

// Deps holds the collaborators shared by all services.
type Deps struct {
	Store store.Store
	Keys  *apikey.Generator
	Audit Auditor
}

// Services bundles every service over one set of dependencies.
type Services struct {
	Teams    *TeamService
	Projects *ProjectService
	Prompts  *PromptService
	Members  *MembershipService
	APIKeys  *APIKeyService
	Users    *UserService
}

// New wires the services.
func New(deps Deps) *Services {
	if deps.Keys == nil {
		deps.Keys = apikey.NewGenerator(0)
	}
	b := &base{
		store:   deps.Store,
		checker: authz.NewChecker(deps.Store),
		keys:    deps.Keys,
		audit:   deps.Audit,
	}
	return &Services{
		Teams:    &TeamService{base: b},
		Projects: &ProjectService{base: b},
		Prompts:  &PromptService{base: b},
		Members:  &MembershipService{base: b},
		APIKeys:  &APIKeyService{base: b, verifier: authz.NewKeyVerifier(deps.Store)},
		Users:    &UserService{base: b},
	}
}

type base struct {
	store   store.Store
	checker *authz.Checker
	keys    *apikey.Generator
	audit   Auditor
}

func (b *base) record(ctx context.Context, action, resourceType, resourceID, actor string, details map[string]interface{}) {
	if b.audit == nil {
		return
	}
	b.audit.Record(ctx, action, resourceType, resourceID, actor, details)
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// validateName trims raw and checks its length.
func validateName(field, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return "", apperrors.ErrValidationf(field, "required", field+" is required")
	case n > MaxNameLength:
		return "", apperrors.ErrValidationf(field, "max", fmt.Sprintf("%s must be at most %d characters", field, MaxNameLength))
	}
	return name, nil
}

func parseRole(raw string) (domain.Role, error) {
	role, ok := domain.ParseRole(raw)
	if !ok {
		return "", apperrors.BadRequest(apperrors.CodeInvalidRole, "role must be one of ADMIN, MANAGER, WRITER, VIEWER").
			WithParams(map[string]interface{}{"role": raw})
	}
	return role, nil
}

var notFoundMessages = map[string]string{
	apperrors.CodeTeamNotFound:    "team not found",
	apperrors.CodeProjectNotFound: "project not found",
	apperrors.CodePromptNotFound:  "prompt not found",
	apperrors.CodeUserNotFound:    "user not found",
	apperrors.CodeMemberNotFound:  "member not found",
}

// storeError converts a store failure into an AppError. ErrNotFound maps to
// a 404 with notFoundCode; anything unrecognized is a 500.
func storeError(err error, notFoundCode, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.IsAppError(err); ok {
		return err
	}
	if errors.Is(err, apperrors.ErrNotFound) && notFoundCode != "" {
		return apperrors.NotFound(notFoundCode, notFoundMessages[notFoundCode])
	}
	return internalError(err, op)
}

func internalError(err error, op string) error {
	return apperrors.Wrap(err, apperrors.CodeInternal, op+" failed", http.StatusInternalServerError)
}
