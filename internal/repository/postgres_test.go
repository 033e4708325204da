package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"promptdeck.io/promptdeck/internal/domain"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
	"promptdeck.io/promptdeck/internal/testutil"
)

func TestPostgres_TeamLifecycle(t *testing.T) {
	db := testutil.OpenSQLDB(t, "repo_team_lifecycle")
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "schema must apply twice")

	s := New(db)
	_, err := s.UpsertUser(ctx, &domain.User{ID: "u-admin", Email: "admin@example.com"})
	require.NoError(t, err)
	_, err = s.UpsertUser(ctx, &domain.User{ID: "u-view", Email: "viewer@example.com"})
	require.NoError(t, err)

	team := &domain.Team{ID: "team-1", Name: "Core"}
	require.NoError(t, s.CreateTeam(ctx, team, "u-admin"))

	m, err := s.GetMembership(ctx, "team-1", "u-admin")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, m.Role)

	require.NoError(t, s.InsertMembership(ctx, &domain.Membership{TeamID: "team-1", UserID: "u-view", Role: domain.RoleViewer}))
	err = s.InsertMembership(ctx, &domain.Membership{TeamID: "team-1", UserID: "u-view", Role: domain.RoleViewer})
	require.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	up, err := s.UpdateMembershipRole(ctx, "team-1", "u-view", domain.RoleWriter)
	require.NoError(t, err)
	require.Equal(t, domain.RoleWriter, up.Role)

	_, err = s.UpdateMembershipRole(ctx, "team-1", "u-missing", domain.RoleWriter)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	members, err := s.ListMemberships(ctx, "team-1")
	require.NoError(t, err)
	require.Len(t, members, 2)

	require.NoError(t, s.CreateProject(ctx, &domain.Project{ID: "proj-1", TeamID: "team-1", Name: "Bot"}))
	require.ErrorIs(t, s.DeleteTeamIfEmpty(ctx, "team-1"), apperrors.ErrHasDependents)

	require.NoError(t, s.CreatePrompt(ctx, &domain.Prompt{
		ID: "prompt-1", ProjectID: "proj-1", Name: "greet", Text: "Hi {name}",
		Status: domain.StatusDraft, VersionMajor: 1, CreatedBy: "u-admin",
	}))
	require.ErrorIs(t, s.DeleteProjectIfEmpty(ctx, "proj-1"), apperrors.ErrHasDependents)

	teams, err := s.ListTeamsForUser(ctx, "u-view")
	require.NoError(t, err)
	require.Len(t, teams, 1)
	require.Equal(t, 1, teams[0].ProjectCount)

	require.NoError(t, s.DeletePrompt(ctx, "prompt-1"))
	require.NoError(t, s.DeleteProjectIfEmpty(ctx, "proj-1"))
	require.NoError(t, s.DeleteTeamIfEmpty(ctx, "team-1"))

	_, err = s.GetMembership(ctx, "team-1", "u-view")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, s.InsertAudit(ctx, &domain.AuditEntry{
		ID: "audit-1", Action: "team.delete", ResourceType: "team", ResourceID: "team-1", Actor: "u-admin",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}))
	n, err := s.DeleteAuditBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
