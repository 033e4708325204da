package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	var seen string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	t.Run("generated", func(t *testing.T) {
		w := serve(t, router, httptest.NewRequest(http.MethodGet, "/", nil))
		rid := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, rid)
		assert.Equal(t, rid, seen)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "rid-123")
		w := serve(t, router, req)
		assert.Equal(t, "rid-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "rid-123", seen)
	})
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetUserEmail(ctx))
	assert.Empty(t, GetRequestID(ctx))

	ctx = SetUserContext(ctx, "u-1", "ada@example.com")
	assert.Equal(t, "u-1", GetUserID(ctx))
	assert.Equal(t, "ada@example.com", GetUserEmail(ctx))
}
