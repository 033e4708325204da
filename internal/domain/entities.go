package domain

import (
	"fmt"
	"time"
)

// User is an identity registered at first sign-in.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Team is the tenant boundary that owns projects and memberships.
type Team struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	APIKeyHash   string    `json:"-"`
	APIKeyPrefix string    `json:"api_key_prefix"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TeamSummary is a team as seen by one of its members.
type TeamSummary struct {
	Team
	Permission   Role `json:"permission"`
	ProjectCount int  `json:"project_count"`
}

// Membership binds a user to a team with exactly one role.
type Membership struct {
	TeamID    string    `json:"team_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// User is populated by listings that join the users table.
	User *User `json:"user,omitempty"`
}

// Project belongs to exactly one team.
type Project struct {
	ID           string    `json:"id"`
	TeamID       string    `json:"team_id"`
	Name         string    `json:"name"`
	APIKeyHash   string    `json:"-"`
	APIKeyPrefix string    `json:"api_key_prefix"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Prompt is a versioned text template belonging to exactly one project.
type Prompt struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Name         string    `json:"name"`
	Text         string    `json:"text"`
	Status       Status    `json:"status"`
	VersionMajor int       `json:"version_major"`
	VersionMinor int       `json:"version_minor"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Version renders the major/minor pair as "major.minor".
func (p *Prompt) Version() string {
	return fmt.Sprintf("%d.%d", p.VersionMajor, p.VersionMinor)
}

// PromptChanges carries the optional fields of a prompt update.
// A nil field is left unchanged.
type PromptChanges struct {
	Name      *string
	Text      *string
	Status    *Status
	ProjectID *string
}

// Apply writes the changes onto p and advances the version: a text change
// bumps the minor version, a move into PRODUCTION bumps the major version.
func (c PromptChanges) Apply(p *Prompt) {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Text != nil && *c.Text != p.Text {
		p.Text = *c.Text
		p.VersionMinor++
	}
	if c.Status != nil {
		if *c.Status == StatusProduction && p.Status != StatusProduction {
			p.VersionMajor++
			p.VersionMinor = 0
		}
		p.Status = *c.Status
	}
	if c.ProjectID != nil {
		p.ProjectID = *c.ProjectID
	}
}

// AuditEntry is one append-only record of a successful mutation.
type AuditEntry struct {
	ID           string                 `json:"id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Actor        string                 `json:"actor"`
	Details      map[string]interface{} `json:"details,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}
