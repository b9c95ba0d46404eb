package httpapi

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
)

const msgBadPage = "limit and offset must be non-negative integers"

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, envelope{"message": orDefault(h.opts.PingMessage, "ping")})
}

// health reports 503 when the database cannot be reached.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.requestLogger(r).Warn(r.Context(), "health check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"status": "ok"})
}

// notFound answers unknown API paths with JSON and everything else from
// the static directory, falling back to index.html for client-side routes.
func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) || h.opts.StaticDir == "" ||
		(r.Method != http.MethodGet && r.Method != http.MethodHead) {
		writeError(w, http.StatusNotFound, "API endpoint not found")
		return
	}
	h.serveStatic(w, r)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (h *Handler) serveStatic(w http.ResponseWriter, r *http.Request) {
	root := h.opts.StaticDir
	name := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))

	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		http.ServeFile(w, r, name)
		return
	}
	http.ServeFile(w, r, filepath.Join(root, "index.html"))
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/") ||
		p == "/health" || strings.HasPrefix(p, "/health/")
}

// parsePage reads limit and offset from the query string. Absent values
// are zero and get defaults from ListPage.Normalize.
func parsePage(w http.ResponseWriter, r *http.Request) (models.ListPage, bool) {
	var page models.ListPage
	q := r.URL.Query()

	for _, f := range []struct {
		key string
		dst *int
	}{{"limit", &page.Limit}, {"offset", &page.Offset}} {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, msgBadPage)
			return page, false
		}
		*f.dst = n
	}
	return page, true
}
