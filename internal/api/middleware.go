package api

import (
	"net/http"

	"github.com/lee-lou2/aws-ses-sender/internal/pkg/httputil"
)

// requireAPIKey rejects requests that don't carry a matching
// X-API-KEY header. Missing, empty, or non-matching all map to the
// same 401 response.
func (h *Handlers) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-KEY")
		if key == "" || key != h.apiKey {
			httputil.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
