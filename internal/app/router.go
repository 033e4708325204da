package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"promptdeck.io/promptdeck/internal/api/handlers"
	"promptdeck.io/promptdeck/internal/api/middleware"
	"promptdeck.io/promptdeck/internal/api/routes"
	"promptdeck.io/promptdeck/internal/config"
)

const apiBasePath = "/api/v1"

// Public routes that do NOT require a session token. Prompt resolution
// authenticates with an API key instead.
var publicPrefixes = []string{
	apiBasePath + "/health/",
	apiBasePath + "/public/",
}

// defaultAllowedOrigins are used when no origins are configured.
var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

func newRouter(cfg *config.Config, server routes.ServerInterface, users middleware.IdentityRegistrar, jwtCfg middleware.JWTConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		cors.New(buildCORSConfig(cfg)),
	)
	router.Use(jwtSkipPublic(jwtCfg))
	router.Use(middleware.MustOpenAPIValidator(middleware.OpenAPIValidatorOptions{
		BasePath:          apiBasePath,
		ValidateResponses: cfg.Server.ValidateResponses,
	}))
	// Registered after the validator so rendered errors pass through its
	// response buffer.
	router.Use(middleware.ErrorHandler())
	router.Use(skipPublic(middleware.RegisterIdentity(users)))

	routes.RegisterHandlersWithOptions(router, server, routes.GinServerOptions{
		BaseURL: apiBasePath,
	})
	return router
}

func isPublic(path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// jwtSkipPublic returns middleware that applies JWT auth only on non-public routes.
func jwtSkipPublic(cfg middleware.JWTConfig) gin.HandlerFunc {
	return skipPublic(middleware.JWTAuth(cfg))
}

func skipPublic(mw gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isPublic(c.Request.URL.Path) {
			c.Next()
			return
		}
		mw(c)
	}
}

// buildCORSConfig derives the CORS policy. A wildcard origin is honoured
// only with the unsafe flag, and then never with credentials.
func buildCORSConfig(cfg *config.Config) cors.Config {
	out := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch,
			http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			middleware.RequestIDHeader, handlers.APIKeyHeader,
		},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if cfg.Server.UnsafeAllowAllOrigins {
		out.AllowAllOrigins = true
		out.AllowCredentials = false
		return out
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, origin := range cfg.Server.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" || origin == "*" {
			continue
		}
		origins = append(origins, origin)
	}
	if len(origins) == 0 {
		origins = append(origins, defaultAllowedOrigins...)
	}
	out.AllowOrigins = origins
	out.AllowCredentials = cfg.Server.AllowCredentials
	return out
}
