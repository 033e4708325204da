package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProjects handles GET /teams/{team_id}/projects.
func (s *Server) ListProjects(c *gin.Context, teamID string) {
	projects, err := s.projects.List(c.Request.Context(), callerID(c), teamID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(projects))
}

// CreateProject handles POST /teams/{team_id}/projects.
func (s *Server) CreateProject(c *gin.Context, teamID string) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	project, err := s.projects.Create(c.Request.Context(), callerID(c), teamID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GetProject handles GET /projects/{project_id}.
func (s *Server) GetProject(c *gin.Context, projectID string) {
	project, err := s.projects.Get(c.Request.Context(), callerID(c), projectID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProject handles PATCH /projects/{project_id}.
func (s *Server) UpdateProject(c *gin.Context, projectID string) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	project, err := s.projects.Rename(c.Request.Context(), callerID(c), projectID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// DeleteProject handles DELETE /projects/{project_id}.
func (s *Server) DeleteProject(c *gin.Context, projectID string) {
	if err := s.projects.Delete(c.Request.Context(), callerID(c), projectID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RotateProjectAPIKey handles POST /projects/{project_id}/api-key.
func (s *Server) RotateProjectAPIKey(c *gin.Context, projectID string) {
	key, err := s.apiKeys.RotateProjectKey(c.Request.Context(), callerID(c), projectID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, key)
}
