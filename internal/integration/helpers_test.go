package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile writes contents to name inside dir and returns the path.
func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

// readResources returns the Resources section of a JSON template file.
func readResources(t *testing.T, path string) map[string]map[string]any {
	t.Helper()

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Resources map[string]map[string]any `json:"Resources"`
	}
	require.NoError(t, json.Unmarshal(contents, &doc))

	return doc.Resources
}

// properties returns the Properties mapping of one resource.
func properties(t *testing.T, resources map[string]map[string]any, key string) map[string]any {
	t.Helper()

	res, ok := resources[key]
	require.True(t, ok, "resource %s is missing", key)

	props, ok := res["Properties"].(map[string]any)
	require.True(t, ok)

	return props
}
