package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// recordingServer implements the operations under test; the embedded nil
// interface panics if any other operation is dispatched.
type recordingServer struct {
	ServerInterface
	calls [][]string
}

func (r *recordingServer) ListTeams(c *gin.Context) {
	r.calls = append(r.calls, []string{"ListTeams"})
	c.Status(http.StatusOK)
}

func (r *recordingServer) GetTeam(c *gin.Context, teamID string) {
	r.calls = append(r.calls, []string{"GetTeam", teamID})
	c.Status(http.StatusOK)
}

func (r *recordingServer) UpdateTeamPermission(c *gin.Context, teamID, userID string) {
	r.calls = append(r.calls, []string{"UpdateTeamPermission", teamID, userID})
	c.Status(http.StatusOK)
}

func (r *recordingServer) GetPrompt(c *gin.Context, promptID string) {
	r.calls = append(r.calls, []string{"GetPrompt", promptID})
	c.Status(http.StatusOK)
}

func newTestRouter(srv ServerInterface, mws ...MiddlewareFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterHandlersWithOptions(router, srv, GinServerOptions{BaseURL: "/api/v1", Middlewares: mws})
	return router
}

func TestRegisterHandlersDispatch(t *testing.T) {
	srv := &recordingServer{}
	router := newTestRouter(srv)

	requests := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/teams"},
		{http.MethodGet, "/api/v1/teams/team-1"},
		{http.MethodPatch, "/api/v1/teams/team-1/permissions/user-9"},
		{http.MethodGet, "/api/v1/prompts/p%201"},
	}
	for _, r := range requests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(r.method, r.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, r.path)
	}

	assert.Equal(t, [][]string{
		{"ListTeams"},
		{"GetTeam", "team-1"},
		{"UpdateTeamPermission", "team-1", "user-9"},
		{"GetPrompt", "p 1"},
	}, srv.calls)
}

func TestRegisterHandlersMiddlewareAbort(t *testing.T) {
	srv := &recordingServer{}
	deny := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusTeapot)
	}
	router := newTestRouter(srv, deny)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/teams/team-1", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Empty(t, srv.calls)
}

func TestRegisterHandlersUnknownRoute(t *testing.T) {
	router := newTestRouter(&recordingServer{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
