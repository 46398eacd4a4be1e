package api

import (
	"net/http"

	"github.com/lee-lou2/aws-ses-sender/internal/pkg/httputil"
)

// HandleHealth always reports ok; it never touches the store.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReady reports ok only when the store responds to a ping.
func (h *Handlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(); err != nil {
		httputil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "db": "disconnected"})
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "connected"})
}
