// Package apikey generates and verifies the secrets used for programmatic
// prompt retrieval.
package apikey

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Key prefixes identify the owner kind of a key.
const (
	TeamPrefix    = "pdt_"
	ProjectPrefix = "pdp_"
)

// DisplayLen is the number of leading plaintext characters kept for display.
const DisplayLen = 12

const secretBytes = 32

// Key is a freshly generated API key. Plaintext is never persisted.
type Key struct {
	Plaintext string
	Hash      string
	Display   string
}

// Generator creates API keys hashed at a fixed bcrypt cost.
type Generator struct {
	cost int
}

// NewGenerator returns a generator using cost, or bcrypt.DefaultCost when
// cost is outside bcrypt's accepted range.
func NewGenerator(cost int) *Generator {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Generator{cost: cost}
}

// Generate creates a new key with the given prefix.
func (g *Generator) Generate(prefix string) (*Key, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	plain := prefix + base64.RawURLEncoding.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), g.cost)
	if err != nil {
		return nil, fmt.Errorf("hash api key: %w", err)
	}
	return &Key{
		Plaintext: plain,
		Hash:      string(hash),
		Display:   plain[:DisplayLen],
	}, nil
}

// Verify reports whether plain matches hash. An empty hash never matches.
func Verify(hash, plain string) bool {
	if hash == "" || plain == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HasKnownPrefix reports whether plain starts with a team or project prefix.
func HasKnownPrefix(plain string) bool {
	return strings.HasPrefix(plain, TeamPrefix) || strings.HasPrefix(plain, ProjectPrefix)
}
