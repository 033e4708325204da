package authz

import (
	"context"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"promptdeck.io/promptdeck/internal/pkg/apikey"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
)

// dummyHash is compared against on lookup misses so an unknown prompt costs
// the same bcrypt work as a wrong key.
var dummyHash = sync.OnceValue(func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("promptdeck-unused-key"), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(h)
})

// KeyVerifier authorizes API-key access to a single prompt. A key is
// accepted when it matches the owning project's key or the owning team's key.
type KeyVerifier struct {
	store   ChainReader
	compare func(hash, plain string) bool
}

// NewKeyVerifier creates a verifier over store.
func NewKeyVerifier(store ChainReader) *KeyVerifier {
	return &KeyVerifier{store: store, compare: apikey.Verify}
}

// Verify returns the prompt's chain when key grants access. Every failure,
// including an unknown prompt, yields INVALID_API_KEY.
func (v *KeyVerifier) Verify(ctx context.Context, promptID, key string) (*Grant, error) {
	if promptID == "" || !apikey.HasKnownPrefix(key) {
		return nil, apperrors.ErrInvalidAPIKey()
	}
	prompt, err := v.store.GetPrompt(ctx, promptID)
	if err != nil {
		return nil, v.reject(key)
	}
	project, err := v.store.GetProject(ctx, prompt.ProjectID)
	if err != nil {
		return nil, v.reject(key)
	}
	team, err := v.store.GetTeam(ctx, project.TeamID)
	if err != nil {
		return nil, v.reject(key)
	}

	if !v.matches(project.APIKeyHash, key) && !v.matches(team.APIKeyHash, key) {
		return nil, apperrors.ErrInvalidAPIKey()
	}
	return &Grant{Team: team, Project: project, Prompt: prompt}, nil
}

// matches compares key against hash. A missing hash still pays for one
// comparison.
func (v *KeyVerifier) matches(hash, key string) bool {
	if hash == "" {
		v.compare(dummyHash(), key)
		return false
	}
	return v.compare(hash, key)
}

// reject spends the two comparisons a wrong key would on a resolved chain.
func (v *KeyVerifier) reject(key string) error {
	v.matches("", key)
	v.matches("", key)
	return apperrors.ErrInvalidAPIKey()
}
