package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
	"promptdeck.io/promptdeck/internal/variables"
)

// DetectVariables handles POST /variables/detect.
func (s *Server) DetectVariables(c *gin.Context) {
	var req textRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"variables": variables.Detect(req.Text)})
}

// RenderVariables handles POST /variables/render.
func (s *Server) RenderVariables(c *gin.Context) {
	var req renderRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"text":      variables.Render(req.Text, req.Values),
		"variables": variables.Detect(req.Text),
	})
}

// ResolvePrompt handles POST /public/prompts/resolve. It is authenticated by
// API key only.
func (s *Server) ResolvePrompt(c *gin.Context) {
	var req resolveRequest
	if !bindJSON(c, &req) {
		return
	}
	key := strings.TrimSpace(c.GetHeader(APIKeyHeader))
	if key == "" {
		key = strings.TrimSpace(req.APIKey)
	}
	if key == "" {
		fail(c, apperrors.ErrInvalidAPIKey())
		return
	}
	resolved, err := s.apiKeys.ResolvePrompt(c.Request.Context(), req.PromptID, key, req.Values)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}
