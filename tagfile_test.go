package camfov

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTagFile_List(t *testing.T) {
	path := writeFile(t, "tags.json", `[
		{"sid": "t1", "label": "Security Camera - 2-017 Outside", "anchorPosition": {"x": 1, "y": 2, "z": 3}, "roomId": "r1"},
		{"sid": "t2", "label": "Exit", "description": "", "anchorPosition": {"x": 0, "y": 0, "z": 0}}
	]`)

	tags, err := LoadTagFile(path)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "t1", tags[0].SID)
	assert.Equal(t, Point{1, 2, 3}, tags[0].AnchorPosition)
	assert.Equal(t, "r1", tags[0].ResolvedRoom())
}

func TestLoadTagFile_Object(t *testing.T) {
	path := writeFile(t, "tags.json", `{
		"b": {"label": "B", "anchorPosition": {"x": 0, "y": 0, "z": 0}},
		"a": {"label": "A", "anchorPosition": {"x": 0, "y": 0, "z": 0}, "roomInfo": {"id": "r"}}
	}`)

	tags, err := LoadTagFile(path)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "a", tags[0].SID)
	assert.Equal(t, "r", tags[0].ResolvedRoom())
}

func TestValidateTagJSON_ReportsViolations(t *testing.T) {
	err := ValidateTagJSON([]byte(`[{"sid": 5, "anchorPosition": {"x": "left"}}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	assert.Error(t, ValidateTagJSON([]byte(`"just a string"`)))
	assert.Error(t, ValidateTagJSON([]byte(`not json`)))
	assert.NoError(t, ValidateTagJSON([]byte(`[]`)))
}

func TestLoadTagFile_Missing(t *testing.T) {
	_, err := LoadTagFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
