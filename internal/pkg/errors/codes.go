package errors

import "net/http"

// Error codes returned to API clients.
// Messages are short English strings; clients key their behavior off Code.

// Resource lookup codes.
const (
	CodeTeamNotFound    = "TEAM_NOT_FOUND"
	CodeProjectNotFound = "PROJECT_NOT_FOUND"
	CodePromptNotFound  = "PROMPT_NOT_FOUND"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeMemberNotFound  = "MEMBER_NOT_FOUND"
)

// Invariant violation codes.
const (
	CodeMemberExists      = "MEMBER_ALREADY_EXISTS"
	CodeTeamHasProjects   = "TEAM_HAS_PROJECTS"
	CodeProjectHasPrompts = "PROJECT_HAS_PROMPTS"
	CodeCannotModifySelf  = "CANNOT_MODIFY_SELF"
)

// Authorization codes.
const (
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeInvalidAPIKey = "INVALID_API_KEY"
)

// Validation codes.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInvalidRole      = "INVALID_ROLE"
	CodeInvalidStatus    = "INVALID_STATUS"
	CodeInvalidEmail     = "INVALID_EMAIL"
)

// CodeInternal is used for every unclassified failure.
const CodeInternal = "INTERNAL_ERROR"

// ErrForbiddenAction creates the 403 returned when a member's role is not allowed to act.
func ErrForbiddenAction(action string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    "insufficient role for " + action,
		HTTPStatus: http.StatusForbidden,
		Params:     map[string]interface{}{"action": action},
	}
}

// ErrCannotModifySelf creates the 400 returned when a member targets their own membership.
func ErrCannotModifySelf() *AppError {
	return &AppError{
		Code:       CodeCannotModifySelf,
		Message:    "you cannot change or remove your own team permission",
		HTTPStatus: http.StatusBadRequest,
	}
}

// ErrInvalidAPIKey creates the 401 returned by API-key authenticated endpoints.
func ErrInvalidAPIKey() *AppError {
	return &AppError{
		Code:       CodeInvalidAPIKey,
		Message:    "api key is not valid for this prompt",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// ErrValidationf creates a 400 carrying one field-level error.
func ErrValidationf(field, code, message string) *AppError {
	return BadRequest(CodeValidationFailed, "request validation failed").
		WithFieldErrors([]FieldError{{Field: field, Code: code, Message: message}})
}
