package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
)

func TestListTeamPermissions(t *testing.T) {
	h := newHarness(t, nil)

	requireError(t, h.do(t, http.MethodGet, "/teams/team-1/permissions", "manager", ""),
		http.StatusForbidden, apperrors.CodeForbidden)

	w := h.do(t, http.MethodGet, "/teams/team-1/permissions", "admin", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["items"], 4)
}

func TestAddTeamPermission(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(t, http.MethodPost, "/teams/team-1/permissions", "admin", `{"email":"OUTSIDER@example.com","role":"viewer"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "outsider", body["user_id"])
	assert.Equal(t, "VIEWER", body["role"])

	requireError(t, h.do(t, http.MethodPost, "/teams/team-1/permissions", "admin", `{"email":"outsider@example.com","role":"VIEWER"}`),
		http.StatusBadRequest, apperrors.CodeMemberExists)
	requireError(t, h.do(t, http.MethodPost, "/teams/team-1/permissions", "admin", `{"email":"not-an-email","role":"VIEWER"}`),
		http.StatusBadRequest, apperrors.CodeInvalidEmail)
	requireError(t, h.do(t, http.MethodPost, "/teams/team-1/permissions", "admin", `{"email":"ghost@example.com","role":"VIEWER"}`),
		http.StatusNotFound, apperrors.CodeUserNotFound)
	requireError(t, h.do(t, http.MethodPost, "/teams/team-1/permissions", "admin", `{"email":"writer@example.com","role":"OWNER"}`),
		http.StatusBadRequest, apperrors.CodeInvalidRole)
	requireError(t, h.do(t, http.MethodPost, "/teams/team-1/permissions", "admin", `{"email":"writer@example.com"}`),
		http.StatusBadRequest, apperrors.CodeValidationFailed)
}

func TestUpdateAndRemoveTeamPermission(t *testing.T) {
	h := newHarness(t, nil)

	for _, caller := range []string{"admin", "viewer"} {
		requireError(t, h.do(t, http.MethodDelete, "/teams/team-1/permissions/"+caller, caller, ""),
			http.StatusBadRequest, apperrors.CodeCannotModifySelf)
		requireError(t, h.do(t, http.MethodPatch, "/teams/team-1/permissions/"+caller, caller, `{"role":"ADMIN"}`),
			http.StatusBadRequest, apperrors.CodeCannotModifySelf)
	}

	requireError(t, h.do(t, http.MethodPatch, "/teams/team-1/permissions/writer", "manager", `{"role":"MANAGER"}`),
		http.StatusForbidden, apperrors.CodeForbidden)

	w := h.do(t, http.MethodPatch, "/teams/team-1/permissions/writer", "admin", `{"role":"MANAGER"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "MANAGER", decode(t, w)["role"])

	requireError(t, h.do(t, http.MethodPatch, "/teams/team-1/permissions/outsider", "admin", `{"role":"VIEWER"}`),
		http.StatusNotFound, apperrors.CodeMemberNotFound)

	require.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/teams/team-1/permissions/viewer", "admin", "").Code)
	requireError(t, h.do(t, http.MethodGet, "/teams/team-1", "viewer", ""),
		http.StatusNotFound, apperrors.CodeTeamNotFound)
}
