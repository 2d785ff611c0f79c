package relay

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSPA(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "app.js"), []byte("console.log(1)"), 0o600))

	s := New(&fakeRelay{}, Options{StaticDir: dir})
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/static/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/chats/42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>app</html>", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/", "")
	assert.JSONEq(t, `{"status":"Taskify.ai relay is running"}`, rec.Body.String())
}

func TestSPA_Disabled(t *testing.T) {
	s := New(&fakeRelay{}, Options{})

	rec := do(t, s.Handler(), http.MethodGet, "/chats/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
