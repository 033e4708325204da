package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promptdeck.io/promptdeck/internal/service"
)

// ListPrompts handles GET /projects/{project_id}/prompts.
func (s *Server) ListPrompts(c *gin.Context, projectID string) {
	prompts, err := s.prompts.List(c.Request.Context(), callerID(c), projectID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newList(prompts))
}

// CreatePrompt handles POST /projects/{project_id}/prompts. New prompts are
// always DRAFT at version 1.0.
func (s *Server) CreatePrompt(c *gin.Context, projectID string) {
	var req createPromptRequest
	if !bindJSON(c, &req) {
		return
	}
	prompt, err := s.prompts.Create(c.Request.Context(), callerID(c), projectID, req.Name, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, prompt)
}

// GetPrompt handles GET /prompts/{prompt_id}.
func (s *Server) GetPrompt(c *gin.Context, promptID string) {
	prompt, err := s.prompts.Get(c.Request.Context(), callerID(c), promptID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prompt)
}

// UpdatePrompt handles PATCH /prompts/{prompt_id}.
func (s *Server) UpdatePrompt(c *gin.Context, promptID string) {
	var req updatePromptRequest
	if !bindJSON(c, &req) {
		return
	}
	prompt, err := s.prompts.Update(c.Request.Context(), callerID(c), promptID, service.PromptUpdate{
		Name:      req.Name,
		Text:      req.Text,
		Status:    req.Status,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prompt)
}

// DeletePrompt handles DELETE /prompts/{prompt_id}.
func (s *Server) DeletePrompt(c *gin.Context, promptID string) {
	if err := s.prompts.Delete(c.Request.Context(), callerID(c), promptID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
