package relay

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// spa serves files from dir and falls back to index.html for GET requests
// that match no file, so client-side routes resolve. API paths are never
// rewritten.
func spa(dir string) gin.HandlerFunc {
	fs := http.Dir(dir)
	files := http.FileServer(fs)
	index := filepath.Join(dir, "index.html")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, ErrorBody{Error: "Not found", Message: c.Request.URL.Path})
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, ErrorBody{Error: "Not found", Message: c.Request.URL.Path})
			return
		}

		name := path.Clean("/" + c.Request.URL.Path)
		if f, err := fs.Open(name); err == nil {
			st, statErr := f.Stat()
			_ = f.Close()
			if statErr == nil && !st.IsDir() {
				files.ServeHTTP(c.Writer, c.Request)
				return
			}
		}

		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, ErrorBody{Error: "Not found", Message: c.Request.URL.Path})
			return
		}
		c.File(index)
	}
}
