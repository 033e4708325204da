package domain

import "strings"

// Status is the lifecycle tag of a prompt. Any status may be set by an
// authorized writer; transitions are not restricted.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusStaging    Status = "STAGING"
	StatusProduction Status = "PRODUCTION"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusStaging, StatusProduction:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts a status name in any case.
func ParseStatus(v string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(v)))
	return s, s.Valid()
}
