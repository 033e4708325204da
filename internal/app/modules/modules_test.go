package modules

import (
	"context"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"promptdeck.io/promptdeck/internal/config"
	"promptdeck.io/promptdeck/internal/domain"
	"promptdeck.io/promptdeck/internal/pkg/logger"
	"promptdeck.io/promptdeck/internal/testutil"
)

var fastKeys = &config.Config{Security: config.SecurityConfig{APIKeyCost: bcrypt.MinCost}}

func init() {
	_ = logger.Init("error", "json")
}

func TestGovernanceModule_Disabled(t *testing.T) {
	m := newGovernanceModule(testutil.NewMemStore(), nil, false, time.Hour)

	assert.Equal(t, "governance", m.Name())
	assert.Empty(t, m.PeriodicJobs())
	assert.NoError(t, m.Shutdown(context.Background()))

	s := testutil.NewMemStore()
	services := NewServices(fastKeys, s, []Module{m})
	s.AddUser(domain.User{ID: "u1", Email: "u1@example.com"})
	_, err := services.Teams.Create(context.Background(), "u1", "Core")
	require.NoError(t, err)
	assert.Empty(t, s.AuditEntries())
}

func TestGovernanceModule_EnabledRecordsMutations(t *testing.T) {
	s := testutil.NewMemStore()
	s.AddUser(domain.User{ID: "u1", Email: "u1@example.com"})
	m := newGovernanceModule(s, nil, true, 24*time.Hour)

	require.Len(t, m.PeriodicJobs(), 1)
	assert.NotPanics(t, func() { m.RegisterWorkers(river.NewWorkers()) })

	services := NewServices(fastKeys, s, []Module{nil, m})
	_, err := services.Teams.Create(context.Background(), "u1", "Core")
	require.NoError(t, err)

	entries := s.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].Actor)
}

func TestNewJWTConfig(t *testing.T) {
	cfg := &config.Config{
		Security: config.SecurityConfig{
			SessionSecret:       "0123456789abcdef0123456789abcdef",
			JWTVerificationKeys: []string{" old-key ", "", "  "},
		},
		Session: config.SessionConfig{Lifetime: time.Hour, Issuer: "promptdeck"},
	}

	got := NewJWTConfig(cfg)
	assert.Equal(t, []byte(cfg.Security.SessionSecret), got.SigningKey)
	assert.Equal(t, [][]byte{[]byte("old-key")}, got.VerificationKeys)
	assert.Equal(t, "promptdeck", got.Issuer)
	assert.Equal(t, time.Hour, got.ExpiresIn)
}

func TestInfrastructure_NilSafety(t *testing.T) {
	var infra *Infrastructure
	assert.NotPanics(t, infra.Close)
	assert.Error(t, infra.InitRiver(nil))
}
