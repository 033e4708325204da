package authz

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"promptdeck.io/promptdeck/internal/domain"
	"promptdeck.io/promptdeck/internal/pkg/apikey"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
	"promptdeck.io/promptdeck/internal/testutil"
)

func seedChain(t *testing.T) *testutil.MemStore {
	t.Helper()

	s := testutil.NewMemStore()
	s.AddTeam(domain.Team{ID: "team-1", Name: "Core"})
	s.AddProject(domain.Project{ID: "proj-1", TeamID: "team-1", Name: "Bot"})
	s.AddPrompt(domain.Prompt{ID: "prompt-1", ProjectID: "proj-1", Name: "greet", Status: domain.StatusDraft, VersionMajor: 1})
	s.AddMember("team-1", "admin", domain.RoleAdmin)
	s.AddMember("team-1", "manager", domain.RoleManager)
	s.AddMember("team-1", "writer", domain.RoleWriter)
	s.AddMember("team-1", "viewer", domain.RoleViewer)
	return s
}

func requireAppError(t *testing.T, err error, status int, code string) {
	t.Helper()
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.HTTPStatus)
	assert.Equal(t, code, appErr.Code)
}

func TestChecker_Team(t *testing.T) {
	c := NewChecker(seedChain(t))
	ctx := context.Background()

	g, err := c.Team(ctx, "viewer", "team-1", TeamRead)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, g.Role)
	assert.Equal(t, "team-1", g.Team.ID)
	assert.Nil(t, g.Project)

	_, err = c.Team(ctx, "manager", "team-1", TeamDelete)
	requireAppError(t, err, http.StatusForbidden, apperrors.CodeForbidden)

	_, err = c.Team(ctx, "stranger", "team-1", TeamRead)
	requireAppError(t, err, http.StatusNotFound, apperrors.CodeTeamNotFound)

	_, err = c.Team(ctx, "admin", "missing", TeamRead)
	requireAppError(t, err, http.StatusNotFound, apperrors.CodeTeamNotFound)

	_, err = c.Team(ctx, "", "team-1", TeamRead)
	requireAppError(t, err, http.StatusUnauthorized, apperrors.CodeUnauthorized)
}

func TestChecker_ProjectAndPrompt(t *testing.T) {
	c := NewChecker(seedChain(t))
	ctx := context.Background()

	g, err := c.Project(ctx, "manager", "proj-1", ProjectDelete)
	require.NoError(t, err)
	assert.Equal(t, "proj-1", g.Project.ID)
	assert.Equal(t, "team-1", g.Team.ID)

	_, err = c.Project(ctx, "writer", "proj-1", ProjectDelete)
	requireAppError(t, err, http.StatusForbidden, apperrors.CodeForbidden)

	_, err = c.Project(ctx, "stranger", "proj-1", ProjectRead)
	requireAppError(t, err, http.StatusNotFound, apperrors.CodeProjectNotFound)

	g, err = c.Prompt(ctx, "writer", "prompt-1", PromptUpdate)
	require.NoError(t, err)
	assert.Equal(t, "prompt-1", g.Prompt.ID)
	assert.Equal(t, domain.RoleWriter, g.Role)

	_, err = c.Prompt(ctx, "viewer", "prompt-1", PromptUpdate)
	requireAppError(t, err, http.StatusForbidden, apperrors.CodeForbidden)

	_, err = c.Prompt(ctx, "writer", "prompt-1", PromptDelete)
	requireAppError(t, err, http.StatusForbidden, apperrors.CodeForbidden)

	_, err = c.Prompt(ctx, "admin", "missing", PromptRead)
	requireAppError(t, err, http.StatusNotFound, apperrors.CodePromptNotFound)
}

func TestChecker_BrokenChainIsNotFound(t *testing.T) {
	s := seedChain(t)
	s.AddPrompt(domain.Prompt{ID: "orphan", ProjectID: "gone"})
	c := NewChecker(s)

	_, err := c.Prompt(context.Background(), "admin", "orphan", PromptRead)
	requireAppError(t, err, http.StatusNotFound, apperrors.CodePromptNotFound)
}

func TestChecker_StoreFailureIsInternal(t *testing.T) {
	s := seedChain(t)
	s.FailOn("GetMembership", errors.New("connection reset"))
	c := NewChecker(s)

	_, err := c.Team(context.Background(), "admin", "team-1", TeamRead)
	requireAppError(t, err, http.StatusInternalServerError, apperrors.CodeInternal)
}

func TestKeyVerifier(t *testing.T) {
	s := seedChain(t)
	gen := apikey.NewGenerator(bcrypt.MinCost)

	teamKey, err := gen.Generate(apikey.TeamPrefix)
	require.NoError(t, err)
	projectKey, err := gen.Generate(apikey.ProjectPrefix)
	require.NoError(t, err)
	otherKey, err := gen.Generate(apikey.ProjectPrefix)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.SetTeamAPIKey(ctx, "team-1", teamKey.Hash, teamKey.Display))
	require.NoError(t, s.SetProjectAPIKey(ctx, "proj-1", projectKey.Hash, projectKey.Display))

	v := NewKeyVerifier(s)

	g, err := v.Verify(ctx, "prompt-1", projectKey.Plaintext)
	require.NoError(t, err)
	assert.Equal(t, "prompt-1", g.Prompt.ID)

	_, err = v.Verify(ctx, "prompt-1", teamKey.Plaintext)
	require.NoError(t, err)

	_, err = v.Verify(ctx, "prompt-1", otherKey.Plaintext)
	requireAppError(t, err, http.StatusUnauthorized, apperrors.CodeInvalidAPIKey)

	_, err = v.Verify(ctx, "missing", projectKey.Plaintext)
	requireAppError(t, err, http.StatusUnauthorized, apperrors.CodeInvalidAPIKey)

	_, err = v.Verify(ctx, "prompt-1", "not-a-key")
	requireAppError(t, err, http.StatusUnauthorized, apperrors.CodeInvalidAPIKey)
}

func TestKeyVerifier_MissCostsSameComparisons(t *testing.T) {
	s := seedChain(t)
	gen := apikey.NewGenerator(bcrypt.MinCost)
	ctx := context.Background()

	projectKey, err := gen.Generate(apikey.ProjectPrefix)
	require.NoError(t, err)
	require.NoError(t, s.SetProjectAPIKey(ctx, "proj-1", projectKey.Hash, projectKey.Display))
	wrongKey, err := gen.Generate(apikey.ProjectPrefix)
	require.NoError(t, err)

	var hashes []string
	v := NewKeyVerifier(s)
	v.compare = func(hash, plain string) bool {
		hashes = append(hashes, hash)
		return apikey.Verify(hash, plain)
	}

	_, err = v.Verify(ctx, "prompt-1", wrongKey.Plaintext)
	requireAppError(t, err, http.StatusUnauthorized, apperrors.CodeInvalidAPIKey)
	wrongKeyCompares := len(hashes)
	require.Equal(t, 2, wrongKeyCompares)

	hashes = nil
	_, err = v.Verify(ctx, "missing", wrongKey.Plaintext)
	requireAppError(t, err, http.StatusUnauthorized, apperrors.CodeInvalidAPIKey)
	require.Len(t, hashes, wrongKeyCompares)
	for _, h := range hashes {
		assert.Equal(t, dummyHash(), h)
	}
	assert.NotEmpty(t, dummyHash())
	assert.False(t, apikey.Verify(dummyHash(), wrongKey.Plaintext))
}
