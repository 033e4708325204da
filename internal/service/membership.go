package service

import (
	"context"
	"errors"
	"strings"

	"github.com/badoux/checkmail"

	"promptdeck.io/promptdeck/internal/authz"
	"promptdeck.io/promptdeck/internal/domain"
	"promptdeck.io/promptdeck/internal/governance/audit"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
)

// MembershipService manages team permissions.
type MembershipService struct {
	*base
}

// List returns a team's members with their users.
func (s *MembershipService) List(ctx context.Context, callerID, teamID string) ([]domain.Membership, error) {
	if _, err := s.checker.Team(ctx, callerID, teamID, authz.PermissionList); err != nil {
		return nil, err
	}
	members, err := s.store.ListMemberships(ctx, teamID)
	if err != nil {
		return nil, storeError(err, "", "list members")
	}
	return members, nil
}

// Add grants role on the team to the registered user with email.
func (s *MembershipService) Add(ctx context.Context, callerID, teamID, email, role string) (*domain.Membership, error) {
	email = strings.TrimSpace(email)
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, apperrors.BadRequest(apperrors.CodeInvalidEmail, "email address is not valid").
			WithParams(map[string]interface{}{"email": email})
	}
	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}
	if _, err := s.checker.Team(ctx, callerID, teamID, authz.PermissionManage); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, apperrors.CodeUserNotFound, "find user")
	}

	m := &domain.Membership{TeamID: teamID, UserID: user.ID, Role: r}
	if err := s.store.InsertMembership(ctx, m); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.BadRequest(apperrors.CodeMemberExists, "user is already a member of this team")
		}
		return nil, storeError(err, apperrors.CodeTeamNotFound, "add member")
	}
	m.User = user

	s.record(ctx, "membership.add", audit.ResourceMembership, teamID+"/"+user.ID, callerID, map[string]interface{}{
		"role": string(r),
	})
	return m, nil
}

// UpdateRole changes the role of an existing member. Callers cannot change
// their own membership.
func (s *MembershipService) UpdateRole(ctx context.Context, callerID, teamID, userID, role string) (*domain.Membership, error) {
	if callerID != "" && userID == callerID {
		return nil, apperrors.ErrCannotModifySelf()
	}
	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}
	if _, err := s.checker.Team(ctx, callerID, teamID, authz.PermissionManage); err != nil {
		return nil, err
	}

	current, err := s.store.GetMembership(ctx, teamID, userID)
	if err != nil {
		return nil, storeError(err, apperrors.CodeMemberNotFound, "find member")
	}

	m, err := s.store.UpdateMembershipRole(ctx, teamID, userID, r)
	if err != nil {
		return nil, storeError(err, apperrors.CodeMemberNotFound, "update member")
	}

	s.record(ctx, "membership.update", audit.ResourceMembership, teamID+"/"+userID, callerID, map[string]interface{}{
		"from": string(current.Role), "to": string(r),
	})
	return m, nil
}

// Remove deletes a member from the team. Callers cannot remove themselves.
func (s *MembershipService) Remove(ctx context.Context, callerID, teamID, userID string) error {
	if callerID != "" && userID == callerID {
		return apperrors.ErrCannotModifySelf()
	}
	if _, err := s.checker.Team(ctx, callerID, teamID, authz.PermissionManage); err != nil {
		return err
	}

	if err := s.store.DeleteMembership(ctx, teamID, userID); err != nil {
		return storeError(err, apperrors.CodeMemberNotFound, "remove member")
	}

	s.record(ctx, "membership.remove", audit.ResourceMembership, teamID+"/"+userID, callerID, nil)
	return nil
}
