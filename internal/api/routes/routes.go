// Package routes binds the operations of the OpenAPI contract to gin.
//
// Handlers implement ServerInterface; RegisterHandlersWithOptions resolves
// path parameters and dispatches. Handlers never register their own routes.
package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
)

// ServerInterface lists every operation of the HTTP contract.
type ServerInterface interface {
	// (GET /health/live)
	GetLiveness(c *gin.Context)
	// (GET /health/ready)
	GetReadiness(c *gin.Context)
	// (GET /me)
	GetCurrentUser(c *gin.Context)

	// (GET /teams)
	ListTeams(c *gin.Context)
	// (POST /teams)
	CreateTeam(c *gin.Context)
	// (GET /teams/{team_id})
	GetTeam(c *gin.Context, teamID string)
	// (PATCH /teams/{team_id})
	UpdateTeam(c *gin.Context, teamID string)
	// (DELETE /teams/{team_id})
	DeleteTeam(c *gin.Context, teamID string)
	// (POST /teams/{team_id}/api-key)
	RotateTeamAPIKey(c *gin.Context, teamID string)

	// (GET /teams/{team_id}/projects)
	ListProjects(c *gin.Context, teamID string)
	// (POST /teams/{team_id}/projects)
	CreateProject(c *gin.Context, teamID string)

	// (GET /teams/{team_id}/permissions)
	ListTeamPermissions(c *gin.Context, teamID string)
	// (POST /teams/{team_id}/permissions)
	AddTeamPermission(c *gin.Context, teamID string)
	// (PATCH /teams/{team_id}/permissions/{user_id})
	UpdateTeamPermission(c *gin.Context, teamID, userID string)
	// (DELETE /teams/{team_id}/permissions/{user_id})
	RemoveTeamPermission(c *gin.Context, teamID, userID string)

	// (GET /projects/{project_id})
	GetProject(c *gin.Context, projectID string)
	// (PATCH /projects/{project_id})
	UpdateProject(c *gin.Context, projectID string)
	// (DELETE /projects/{project_id})
	DeleteProject(c *gin.Context, projectID string)
	// (POST /projects/{project_id}/api-key)
	RotateProjectAPIKey(c *gin.Context, projectID string)

	// (GET /projects/{project_id}/prompts)
	ListPrompts(c *gin.Context, projectID string)
	// (POST /projects/{project_id}/prompts)
	CreatePrompt(c *gin.Context, projectID string)
	// (GET /prompts/{prompt_id})
	GetPrompt(c *gin.Context, promptID string)
	// (PATCH /prompts/{prompt_id})
	UpdatePrompt(c *gin.Context, promptID string)
	// (DELETE /prompts/{prompt_id})
	DeletePrompt(c *gin.Context, promptID string)

	// (POST /variables/detect)
	DetectVariables(c *gin.Context)
	// (POST /variables/render)
	RenderVariables(c *gin.Context)
	// (POST /public/prompts/resolve)
	ResolvePrompt(c *gin.Context)
}

// MiddlewareFunc runs after parameter binding and before the handler.
type MiddlewareFunc func(c *gin.Context)

// GinServerOptions configures RegisterHandlersWithOptions.
type GinServerOptions struct {
	BaseURL      string
	Middlewares  []MiddlewareFunc
	ErrorHandler func(c *gin.Context, err error, statusCode int)
}

// ServerInterfaceWrapper adapts ServerInterface methods to gin handlers.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandler       func(c *gin.Context, err error, statusCode int)
}

func defaultErrorHandler(c *gin.Context, err error, statusCode int) {
	_ = c.Error(apperrors.Wrap(err, apperrors.CodeInvalidRequest, err.Error(), statusCode))
	c.Abort()
}

// bindPath decodes a simple-style path parameter.
func (siw *ServerInterfaceWrapper) bindPath(c *gin.Context, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("invalid format for parameter %s: %w", name, err), http.StatusBadRequest)
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) runMiddlewares(c *gin.Context) bool {
	for _, middleware := range siw.HandlerMiddlewares {
		middleware(c)
		if c.IsAborted() {
			return false
		}
	}
	return true
}

// noParams wraps an operation without path parameters.
func (siw *ServerInterfaceWrapper) noParams(op func(*gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !siw.runMiddlewares(c) {
			return
		}
		op(c)
	}
}

// oneParam wraps an operation with a single path parameter.
func (siw *ServerInterfaceWrapper) oneParam(name string, op func(*gin.Context, string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var value string
		if !siw.bindPath(c, name, &value) || !siw.runMiddlewares(c) {
			return
		}
		op(c, value)
	}
}

// twoParams wraps an operation with two path parameters.
func (siw *ServerInterfaceWrapper) twoParams(first, second string, op func(*gin.Context, string, string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var a, b string
		if !siw.bindPath(c, first, &a) || !siw.bindPath(c, second, &b) || !siw.runMiddlewares(c) {
			return
		}
		op(c, a, b)
	}
}

// RegisterHandlers registers every operation on router without a base URL.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, GinServerOptions{})
}

// RegisterHandlersWithOptions registers every operation on router.
func RegisterHandlersWithOptions(router gin.IRouter, si ServerInterface, options GinServerOptions) {
	errorHandler := options.ErrorHandler
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandler:       errorHandler,
	}
	base := options.BaseURL

	router.GET(base+"/health/live", wrapper.noParams(si.GetLiveness))
	router.GET(base+"/health/ready", wrapper.noParams(si.GetReadiness))
	router.GET(base+"/me", wrapper.noParams(si.GetCurrentUser))

	router.GET(base+"/teams", wrapper.noParams(si.ListTeams))
	router.POST(base+"/teams", wrapper.noParams(si.CreateTeam))
	router.GET(base+"/teams/:team_id", wrapper.oneParam("team_id", si.GetTeam))
	router.PATCH(base+"/teams/:team_id", wrapper.oneParam("team_id", si.UpdateTeam))
	router.DELETE(base+"/teams/:team_id", wrapper.oneParam("team_id", si.DeleteTeam))
	router.POST(base+"/teams/:team_id/api-key", wrapper.oneParam("team_id", si.RotateTeamAPIKey))
	router.GET(base+"/teams/:team_id/projects", wrapper.oneParam("team_id", si.ListProjects))
	router.POST(base+"/teams/:team_id/projects", wrapper.oneParam("team_id", si.CreateProject))
	router.GET(base+"/teams/:team_id/permissions", wrapper.oneParam("team_id", si.ListTeamPermissions))
	router.POST(base+"/teams/:team_id/permissions", wrapper.oneParam("team_id", si.AddTeamPermission))
	router.PATCH(base+"/teams/:team_id/permissions/:user_id", wrapper.twoParams("team_id", "user_id", si.UpdateTeamPermission))
	router.DELETE(base+"/teams/:team_id/permissions/:user_id", wrapper.twoParams("team_id", "user_id", si.RemoveTeamPermission))

	router.GET(base+"/projects/:project_id", wrapper.oneParam("project_id", si.GetProject))
	router.PATCH(base+"/projects/:project_id", wrapper.oneParam("project_id", si.UpdateProject))
	router.DELETE(base+"/projects/:project_id", wrapper.oneParam("project_id", si.DeleteProject))
	router.POST(base+"/projects/:project_id/api-key", wrapper.oneParam("project_id", si.RotateProjectAPIKey))
	router.GET(base+"/projects/:project_id/prompts", wrapper.oneParam("project_id", si.ListPrompts))
	router.POST(base+"/projects/:project_id/prompts", wrapper.oneParam("project_id", si.CreatePrompt))

	router.GET(base+"/prompts/:prompt_id", wrapper.oneParam("prompt_id", si.GetPrompt))
	router.PATCH(base+"/prompts/:prompt_id", wrapper.oneParam("prompt_id", si.UpdatePrompt))
	router.DELETE(base+"/prompts/:prompt_id", wrapper.oneParam("prompt_id", si.DeletePrompt))

	router.POST(base+"/variables/detect", wrapper.noParams(si.DetectVariables))
	router.POST(base+"/variables/render", wrapper.noParams(si.RenderVariables))
	router.POST(base+"/public/prompts/resolve", wrapper.noParams(si.ResolvePrompt))
}
