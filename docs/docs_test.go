package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocIsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc()
	require.NoError(t, err)

	var spec map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &spec))
	assert.Equal(t, "LendLens API", spec["info"].(map[string]any)["title"])
	paths := spec["paths"].(map[string]any)
	for _, p := range []string{"/login", "/defaulters", "/defaulters/stream", "/admin/defaulters", "/admin/assets"} {
		assert.Contains(t, paths, p)
	}
}
