// Package handlers implements routes.ServerInterface on top of the service
// layer. Handlers bind input, call one service method and render the result;
// failures are pushed with c.Error and rendered by middleware.ErrorHandler.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"promptdeck.io/promptdeck/internal/api/middleware"
	"promptdeck.io/promptdeck/internal/api/routes"
	"promptdeck.io/promptdeck/internal/service"
)

// Compile-time check: Server must implement routes.ServerInterface.
var _ routes.ServerInterface = (*Server)(nil)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server implements all API handlers.
type Server struct {
	teams    *service.TeamService
	projects *service.ProjectService
	prompts  *service.PromptService
	members  *service.MembershipService
	apiKeys  *service.APIKeyService
	users    *service.UserService
	db       Pinger
}

// ServerDeps holds all dependencies for creating a Server.
type ServerDeps struct {
	Services *service.Services
	// DB is pinged by the readiness probe. Nil reports ready.
	DB Pinger
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	svc := deps.Services
	return &Server{
		teams:    svc.Teams,
		projects: svc.Projects,
		prompts:  svc.Prompts,
		members:  svc.Members,
		apiKeys:  svc.APIKeys,
		users:    svc.Users,
		db:       deps.DB,
	}
}

// callerID returns the authenticated user, or "" for anonymous requests.
// Services reject "" with UNAUTHORIZED.
func callerID(c *gin.Context) string {
	if uid := c.GetString(middleware.KeyUserID); uid != "" {
		return uid
	}
	return middleware.GetUserID(c.Request.Context())
}

// fail hands err to the error middleware and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items}
}
