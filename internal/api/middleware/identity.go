package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"promptdeck.io/promptdeck/internal/domain"
	"promptdeck.io/promptdeck/internal/pkg/logger"
)

// IdentityRegistrar records an authenticated identity.
type IdentityRegistrar interface {
	Register(ctx context.Context, userID, email, name string) (*domain.User, error)
}

// registrationTTL bounds how often the same identity is written back.
const registrationTTL = 10 * time.Minute

// maxRegisteredIdentities caps the cache between sweeps.
const maxRegisteredIdentities = 10000

// registrationCache remembers recently registered identities. Entries older
// than ttl are swept at most once per ttl, or sooner when the cache is full.
type registrationCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	max       int
	seen      map[string]time.Time
	lastSweep time.Time
}

func newRegistrationCache(ttl time.Duration, limit int) *registrationCache {
	return &registrationCache{ttl: ttl, max: limit, seen: make(map[string]time.Time)}
}

// due reports whether key has not been registered within ttl of now.
func (r *registrationCache) due(key string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	last, ok := r.seen[key]
	return !ok || now.Sub(last) > r.ttl
}

func (r *registrationCache) mark(key string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if now.Sub(r.lastSweep) > r.ttl || len(r.seen) >= r.max {
		r.sweep(now)
	}
	if len(r.seen) >= r.max {
		// Every entry is fresh; start over rather than grow past the cap.
		r.seen = make(map[string]time.Time)
	}
	r.seen[key] = now
}

func (r *registrationCache) sweep(now time.Time) {
	for key, last := range r.seen {
		if now.Sub(last) > r.ttl {
			delete(r.seen, key)
		}
	}
	r.lastSweep = now
}

func (r *registrationCache) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// RegisterIdentity upserts the session subject into the user directory so
// later lookups by email find it. Failures are logged and the request
// proceeds; handlers that depend on the user report their own errors.
func RegisterIdentity(reg IdentityRegistrar) gin.HandlerFunc {
	return registerIdentity(reg, newRegistrationCache(registrationTTL, maxRegisteredIdentities), time.Now)
}

func registerIdentity(reg IdentityRegistrar, cache *registrationCache, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(KeyUserID)
		email := c.GetString(KeyEmail)
		if userID == "" || email == "" {
			c.Next()
			return
		}

		key := userID + "\x00" + email
		ts := now()
		if cache.due(key, ts) {
			if _, err := reg.Register(c.Request.Context(), userID, email, c.GetString(KeyName)); err != nil {
				logger.Warn("identity registration failed",
					zap.String("request_id", GetRequestID(c.Request.Context())),
					zap.String("user_id", userID),
					zap.Error(err),
				)
			} else {
				cache.mark(key, ts)
			}
		}
		c.Next()
	}
}
