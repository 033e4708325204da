package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListTeamPermissions handles GET /teams/{team_id}/permissions.
func (s *Server) ListTeamPermissions(c *gin.Context, teamID string) {
	members, err := s.members.List(c.Request.Context(), callerID(c), teamID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(members))
}

// AddTeamPermission handles POST /teams/{team_id}/permissions.
func (s *Server) AddTeamPermission(c *gin.Context, teamID string) {
	var req addPermissionRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := s.members.Add(c.Request.Context(), callerID(c), teamID, req.Email, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// UpdateTeamPermission handles PATCH /teams/{team_id}/permissions/{user_id}.
func (s *Server) UpdateTeamPermission(c *gin.Context, teamID, userID string) {
	var req updatePermissionRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := s.members.UpdateRole(c.Request.Context(), callerID(c), teamID, userID, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// RemoveTeamPermission handles DELETE /teams/{team_id}/permissions/{user_id}.
func (s *Server) RemoveTeamPermission(c *gin.Context, teamID, userID string) {
	if err := s.members.Remove(c.Request.Context(), callerID(c), teamID, userID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
