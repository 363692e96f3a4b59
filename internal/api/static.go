package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const indexFile = "index.html"

// noRoute serves the static frontend for non-API GETs and a JSON 404 for
// everything else
func (h *Handler) noRoute(c *gin.Context) {
	if file, ok := h.staticFile(c.Request); ok {
		c.File(file)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
}

func (h *Handler) staticFile(r *http.Request) (string, bool) {
	if h.opts.StaticDir == "" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		return "", false
	}
	p := path.Clean("/" + r.URL.Path)
	if p == "/api" || strings.HasPrefix(p, "/api/") {
		return "", false
	}
	if p == "/" {
		p = "/" + indexFile
	}

	file := filepath.Join(h.opts.StaticDir, filepath.FromSlash(p))
	info, err := os.Stat(file)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		file = filepath.Join(file, indexFile)
		if info, err = os.Stat(file); err != nil || info.IsDir() {
			return "", false
		}
	}
	return file, true
}

func (h *Handler) methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}
