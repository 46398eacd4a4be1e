package api

import (
	"net/http"
	"strconv"

	"github.com/lee-lou2/aws-ses-sender/internal/apperr"
	"github.com/lee-lou2/aws-ses-sender/internal/domain"
	"github.com/lee-lou2/aws-ses-sender/internal/pixel"
)

// HandleOpen always returns the transparent pixel, regardless of
// whether request_id was present or parseable, so a broken or missing
// id never shows a client a broken image.
func (h *Handlers) HandleOpen(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("request_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if _, err := h.store.SaveResult(domain.Result{RequestID: id, Status: domain.ResultOpen}); err != nil {
				apperr.Report("api.open", err)
			}
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(pixel.PNG)
}
