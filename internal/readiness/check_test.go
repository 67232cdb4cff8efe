package readiness

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func completeSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "css/style.css", "body{}")
	writeFile(t, root, "css/themes.css", ":root{}")
	writeFile(t, root, "js/main.js", "const API_URL = 'https://makxsensi-api.onrender.com';")
	writeFile(t, root, "index.html", "<html></html>")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets"), 0o755))
	return root
}

func TestRun_CompleteSite(t *testing.T) {
	r, err := Run(completeSite(t), Options{})
	require.NoError(t, err)

	assert.True(t, r.AllPassed())
	assert.Equal(t, []string{"API URL: Production URL configured"}, r.Notes)
	assert.Empty(t, r.Warnings)
}

func TestRun_MissingPieces(t *testing.T) {
	tests := []struct {
		name   string
		remove string
		check  string
	}{
		{"themes css", "css/themes.css", "CSS files"},
		{"main js", "js/main.js", "JavaScript files"},
		{"index", "index.html", "Index file"},
		{"assets", "assets", "Assets folder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := completeSite(t)
			require.NoError(t, os.RemoveAll(filepath.Join(root, tt.remove)))

			r, err := Run(root, Options{})
			require.NoError(t, err)

			assert.False(t, r.AllPassed())
			for _, c := range r.Checks {
				assert.Equal(t, c.Name != tt.check, c.Passed, c.Name)
			}
		})
	}
}

func TestRun_Warnings(t *testing.T) {
	root := completeSite(t)
	writeFile(t, root, "js/main.js", "const API_URL = 'http://localhost:3000';")
	writeFile(t, root, "css/style.css.map", "{}")
	writeFile(t, root, "index.html", "<script>console.log('hi')</script>")

	r, err := Run(root, Options{})
	require.NoError(t, err)

	assert.True(t, r.AllPassed(), "warnings do not fail the check")
	assert.Len(t, r.Warnings, 3)
	assert.Empty(t, r.Notes)
}

func TestRun_EmptyDirDoesNotError(t *testing.T) {
	r, err := Run(t.TempDir(), Options{})
	require.NoError(t, err)
	assert.False(t, r.AllPassed())
}

func TestReport_Print(t *testing.T) {
	r, err := Run(completeSite(t), Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	r.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "=== Production Readiness Check ===")
	assert.Contains(t, out, "✓ CSS files: Present")
	assert.Contains(t, out, "5. Test modal on different screen sizes")
}
