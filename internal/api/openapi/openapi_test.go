package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)
	require.NotNil(t, doc)

	for _, path := range []string{
		"/teams",
		"/teams/{team_id}",
		"/teams/{team_id}/permissions/{user_id}",
		"/projects/{project_id}/prompts",
		"/prompts/{prompt_id}",
		"/variables/detect",
		"/public/prompts/resolve",
	} {
		assert.NotNil(t, doc.Paths.Value(path), path)
	}

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, doc, again)
	assert.NotEmpty(t, Raw())
}
