// Package authz decides whether a team member may act on a team, project or
// prompt. Every decision walks the ownership chain up to the team and reads
// the caller's membership role there.
package authz

import (
	"slices"

	"promptdeck.io/promptdeck/internal/domain"
)

// Action names a gated operation.
type Action string

const (
	TeamRead      Action = "team:read"
	TeamUpdate    Action = "team:update"
	TeamDelete    Action = "team:delete"
	TeamRotateKey Action = "team:rotate_key"

	ProjectCreate    Action = "project:create"
	ProjectRead      Action = "project:read"
	ProjectUpdate    Action = "project:update"
	ProjectDelete    Action = "project:delete"
	ProjectRotateKey Action = "project:rotate_key"

	PromptCreate Action = "prompt:create"
	PromptRead   Action = "prompt:read"
	PromptUpdate Action = "prompt:update"
	PromptDelete Action = "prompt:delete"

	PermissionList   Action = "permission:list"
	PermissionManage Action = "permission:manage"
)

var (
	anyMember = []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleWriter, domain.RoleViewer}
	writers   = []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleWriter}
	managers  = []domain.Role{domain.RoleAdmin, domain.RoleManager}
	admins    = []domain.Role{domain.RoleAdmin}
)

// policy is the single table of per-action allow-lists.
var policy = map[Action][]domain.Role{
	TeamRead:      anyMember,
	TeamUpdate:    admins,
	TeamDelete:    admins,
	TeamRotateKey: admins,

	ProjectCreate:    managers,
	ProjectRead:      anyMember,
	ProjectUpdate:    admins,
	ProjectDelete:    managers,
	ProjectRotateKey: managers,

	PromptCreate: writers,
	PromptRead:   anyMember,
	PromptUpdate: writers,
	PromptDelete: managers,

	PermissionList:   admins,
	PermissionManage: admins,
}

// Allows reports whether role may perform action. Unknown actions and roles
// are denied.
func Allows(role domain.Role, action Action) bool {
	roles, ok := policy[action]
	if !ok {
		return false
	}
	return slices.Contains(roles, role)
}

// AllowedRoles returns a copy of the allow-list for action.
func AllowedRoles(action Action) []domain.Role {
	return slices.Clone(policy[action])
}
