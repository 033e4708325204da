package handlers

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

type createPromptRequest struct {
	Name string `json:"name" binding:"required"`
	Text string `json:"text"`
}

type updatePromptRequest struct {
	Name      *string `json:"name"`
	Text      *string `json:"text"`
	Status    *string `json:"status"`
	ProjectID *string `json:"project_id"`
}

type addPermissionRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

type updatePermissionRequest struct {
	Role string `json:"role" binding:"required"`
}

type textRequest struct {
	Text string `json:"text"`
}

type renderRequest struct {
	Text   string            `json:"text"`
	Values map[string]string `json:"values"`
}

// resolveRequest may also carry the key in the X-API-Key header.
type resolveRequest struct {
	PromptID string            `json:"prompt_id" binding:"required"`
	APIKey   string            `json:"api_key"`
	Values   map[string]string `json:"values"`
}

// APIKeyHeader carries the API key for the public endpoints.
const APIKeyHeader = "X-API-Key"
