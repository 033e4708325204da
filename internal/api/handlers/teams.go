package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListTeams handles GET /teams.
func (s *Server) ListTeams(c *gin.Context) {
	teams, err := s.teams.List(c.Request.Context(), callerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(teams))
}

// CreateTeam handles POST /teams. The response carries the only copy of the
// team's plaintext API key.
func (s *Server) CreateTeam(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	team, err := s.teams.Create(c.Request.Context(), callerID(c), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, team)
}

// GetTeam handles GET /teams/{team_id}.
func (s *Server) GetTeam(c *gin.Context, teamID string) {
	team, err := s.teams.Get(c.Request.Context(), callerID(c), teamID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// UpdateTeam handles PATCH /teams/{team_id}.
func (s *Server) UpdateTeam(c *gin.Context, teamID string) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	team, err := s.teams.Rename(c.Request.Context(), callerID(c), teamID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// DeleteTeam handles DELETE /teams/{team_id}.
func (s *Server) DeleteTeam(c *gin.Context, teamID string) {
	if err := s.teams.Delete(c.Request.Context(), callerID(c), teamID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RotateTeamAPIKey handles POST /teams/{team_id}/api-key.
func (s *Server) RotateTeamAPIKey(c *gin.Context, teamID string) {
	key, err := s.apiKeys.RotateTeamKey(c.Request.Context(), callerID(c), teamID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, key)
}
