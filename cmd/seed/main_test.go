package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"promptdeck.io/promptdeck/internal/api/middleware"
	"promptdeck.io/promptdeck/internal/app/modules"
	"promptdeck.io/promptdeck/internal/config"
	"promptdeck.io/promptdeck/internal/testutil"
)

func newTestSeeder(t *testing.T) (*seeder, *testutil.MemStore, *bytes.Buffer) {
	t.Helper()
	s := testutil.NewMemStore()
	cfg := &config.Config{Security: config.SecurityConfig{APIKeyCost: bcrypt.MinCost}}
	out := &bytes.Buffer{}
	return newSeeder(modules.NewServices(cfg, s, nil), out), s, out
}

func TestExampleFixtureParses(t *testing.T) {
	data, err := os.ReadFile("seed.example.yaml")
	require.NoError(t, err)

	fx, err := parseFixture(data)
	require.NoError(t, err)
	require.Len(t, fx.Users, 2)
	require.Len(t, fx.Teams, 1)
	assert.Equal(t, "dev-admin", fx.Teams[0].Owner)
	assert.Equal(t, "WRITER", fx.Teams[0].Members[0].Role)
}

func TestParseFixture_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "users: [\n"},
		{"user without email", "users:\n  - id: a\n"},
		{"unknown owner", "users:\n  - id: a\n    email: a@example.com\nteams:\n  - name: T\n    owner: b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFixture([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestSeederApply_Idempotent(t *testing.T) {
	data, err := os.ReadFile("seed.example.yaml")
	require.NoError(t, err)
	fx, err := parseFixture(data)
	require.NoError(t, err)

	sd, store, out := newTestSeeder(t)
	ctx := context.Background()

	first, err := sd.apply(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, summary{Users: 2, Teams: 1, Members: 1, Projects: 1, Prompts: 1}, first)
	assert.Contains(t, out.String(), "api_key=pdt_")
	assert.Contains(t, out.String(), "api_key=pdp_")

	second, err := sd.apply(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, summary{Users: 2}, second)

	teams, memberships, projects, prompts := store.Counts()
	assert.Equal(t, 1, teams)
	assert.Equal(t, 2, memberships)
	assert.Equal(t, 1, projects)
	assert.Equal(t, 1, prompts)

	writer, err := store.GetUserByEmail(ctx, "writer@promptdeck.local")
	require.NoError(t, err)
	assert.Equal(t, "dev-writer", writer.ID)
	assert.Equal(t, "Dev Writer", writer.Name)
}

func TestSeederApply_InvalidRole(t *testing.T) {
	sd, _, _ := newTestSeeder(t)
	fx := &Fixture{
		Users: []UserFixture{
			{ID: "a", Email: "a@example.com"},
			{ID: "b", Email: "b@example.com"},
		},
		Teams: []TeamFixture{{
			Name: "T", Owner: "a",
			Members: []MemberFixture{{Email: "b@example.com", Role: "OWNER"}},
		}},
	}
	_, err := sd.apply(context.Background(), fx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b@example.com")
}

func TestPrintTokens(t *testing.T) {
	cfg := middleware.JWTConfig{
		SigningKey: []byte("seed-test-secret-0123456789abcdef"),
		Issuer:     "promptdeck",
		ExpiresIn:  time.Hour,
	}
	var out bytes.Buffer
	require.NoError(t, printTokens(&out, cfg, []UserFixture{{ID: "u1", Email: "u1@example.com"}}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "token u1 (u1@example.com"))

	claims, err := cfg.ValidateToken(strings.TrimSpace(lines[1]))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}
