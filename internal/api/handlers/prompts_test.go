package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
)

func TestCreatePrompt(t *testing.T) {
	h := newHarness(t, nil)

	requireError(t, h.do(t, http.MethodPost, "/projects/proj-1/prompts", "viewer", `{"name":"bye","text":"Bye {name}"}`),
		http.StatusForbidden, apperrors.CodeForbidden)

	w := h.do(t, http.MethodPost, "/projects/proj-1/prompts", "writer", `{"name":"bye","text":"Bye {name}, see you {when}"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "DRAFT", body["status"])
	assert.Equal(t, "1.0", body["version"])
	assert.Equal(t, []interface{}{"name", "when"}, body["variables"])

	w = h.do(t, http.MethodGet, "/projects/proj-1/prompts", "viewer", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["items"], 2)
}

func TestUpdatePromptVersioning(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodPatch, "/prompts/prompt-1", "writer", `{"text":"Hi {who}"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "1.1", body["version"])
	assert.Equal(t, []interface{}{"who"}, body["variables"])

	w = h.do(t, http.MethodPatch, "/prompts/prompt-1", "writer", `{"status":"PRODUCTION"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Equal(t, "2.0", body["version"])
	assert.Equal(t, "PRODUCTION", body["status"])

	requireError(t, h.do(t, http.MethodPatch, "/prompts/prompt-1", "writer", `{"status":"LIVE"}`),
		http.StatusBadRequest, apperrors.CodeInvalidStatus)
	requireError(t, h.do(t, http.MethodPatch, "/prompts/prompt-1", "viewer", `{"name":"x"}`),
		http.StatusForbidden, apperrors.CodeForbidden)
}

func TestUpdatePromptMoveProject(t *testing.T) {
	h := newHarness(t, nil)

	requireError(t, h.do(t, http.MethodPatch, "/prompts/prompt-1", "writer", `{"project_id":"nope"}`),
		http.StatusNotFound, apperrors.CodeProjectNotFound)

	w := h.do(t, http.MethodPost, "/teams/team-1/projects", "manager", `{"name":"Other"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	target := decode(t, w)["id"].(string)

	w = h.do(t, http.MethodPatch, "/prompts/prompt-1", "writer", `{"project_id":"`+target+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, target, decode(t, w)["project_id"])
}

func TestGetDeletePrompt(t *testing.T) {
	h := newHarness(t, nil)

	requireError(t, h.do(t, http.MethodGet, "/prompts/prompt-1", "outsider", ""),
		http.StatusNotFound, apperrors.CodePromptNotFound)
	w := h.do(t, http.MethodGet, "/prompts/prompt-1", "viewer", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "VIEWER", decode(t, w)["permission"])

	requireError(t, h.do(t, http.MethodDelete, "/prompts/prompt-1", "writer", ""),
		http.StatusForbidden, apperrors.CodeForbidden)
	require.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/prompts/prompt-1", "manager", "").Code)
	requireError(t, h.do(t, http.MethodGet, "/prompts/prompt-1", "viewer", ""),
		http.StatusNotFound, apperrors.CodePromptNotFound)
}
