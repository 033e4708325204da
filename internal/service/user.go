package service

import (
	"context"
	"strings"

	"github.com/badoux/checkmail"

	"promptdeck.io/promptdeck/internal/domain"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
)

// UserService exposes the identities registered at sign-in.
type UserService struct {
	*base
}

// Register records an authenticated identity so it can later be added to
// teams by email.
func (s *UserService) Register(ctx context.Context, userID, email, name string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if userID == "" {
		return nil, apperrors.Unauthorized(apperrors.CodeUnauthorized, "authentication required")
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidEmail, "email address is not valid")
	}
	u, err := s.store.UpsertUser(ctx, &domain.User{ID: userID, Email: email, Name: strings.TrimSpace(name)})
	if err != nil {
		return nil, storeError(err, "", "register user")
	}
	return u, nil
}

// Current returns the caller's user record.
func (s *UserService) Current(ctx context.Context, callerID string) (*domain.User, error) {
	if callerID == "" {
		return nil, apperrors.Unauthorized(apperrors.CodeUnauthorized, "authentication required")
	}
	u, err := s.store.GetUser(ctx, callerID)
	if err != nil {
		return nil, storeError(err, apperrors.CodeUserNotFound, "get user")
	}
	return u, nil
}
