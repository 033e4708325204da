package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptdeck.io/promptdeck/internal/domain"
)

type fakeRegistrar struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeRegistrar) Register(_ context.Context, userID, email, name string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID+"|"+email+"|"+name)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: userID, Email: email, Name: name}, nil
}

func identityRouter(reg IdentityRegistrar, userID, email string) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(KeyUserID, userID)
			c.Set(KeyEmail, email)
			c.Set(KeyName, "Ada")
		}
		c.Next()
	})
	router.Use(RegisterIdentity(reg))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return router
}

func TestRegisterIdentity_RegistersOnce(t *testing.T) {
	reg := &fakeRegistrar{}
	router := identityRouter(reg, "u-1", "ada@example.com")

	for i := 0; i < 3; i++ {
		w := serve(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	assert.Equal(t, []string{"u-1|ada@example.com|Ada"}, reg.calls)
}

func TestRegisterIdentity_FailureDoesNotBlock(t *testing.T) {
	reg := &fakeRegistrar{err: errors.New("db down")}
	router := identityRouter(reg, "u-1", "ada@example.com")

	for i := 0; i < 2; i++ {
		w := serve(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	// Failed registrations are retried on the next request.
	assert.Len(t, reg.calls, 2)
}

func TestRegisterIdentity_SkipsAnonymous(t *testing.T) {
	reg := &fakeRegistrar{}
	router := identityRouter(reg, "", "")

	w := serve(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, reg.calls)
}

func TestRegisterIdentity_RegistersAgainAfterTTL(t *testing.T) {
	reg := &fakeRegistrar{}
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(KeyUserID, "u-1")
		c.Set(KeyEmail, "ada@example.com")
		c.Next()
	})
	router.Use(registerIdentity(reg, newRegistrationCache(time.Minute, 100), func() time.Time { return clock }))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
	clock = clock.Add(30 * time.Second)
	serve(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
	clock = clock.Add(time.Minute)
	serve(t, router, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, reg.calls, 2)
}

func TestRegistrationCache_DropsExpiredEntries(t *testing.T) {
	cache := newRegistrationCache(time.Minute, 100)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 50; i++ {
		cache.mark(fmt.Sprintf("user-%d", i), start)
	}
	require.Equal(t, 50, cache.size())

	later := start.Add(2 * time.Minute)
	cache.mark("fresh", later)

	assert.Equal(t, 1, cache.size())
	assert.False(t, cache.due("fresh", later))
	assert.True(t, cache.due("user-0", later))
}

func TestRegistrationCache_NeverExceedsLimit(t *testing.T) {
	cache := newRegistrationCache(time.Hour, 10)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		cache.mark(fmt.Sprintf("user-%d", i), now.Add(time.Duration(i)*time.Second))
		assert.LessOrEqual(t, cache.size(), 10)
	}
	assert.False(t, cache.due("user-24", now.Add(25*time.Second)))
}
