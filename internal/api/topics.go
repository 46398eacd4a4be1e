package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lee-lou2/aws-ses-sender/internal/pkg/httputil"
	"golang.org/x/sync/errgroup"
)

// HandleTopicRead fetches request and result counts for a topic from
// two concurrent goroutines. The store runs every statement on one
// connection, so the two queries still execute one after the other.
func (h *Handlers) HandleTopicRead(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "id")
	if topicID == "" {
		httputil.Error(w, http.StatusBadRequest, "topic id is required")
		return
	}

	var requestCounts, resultCounts map[string]int
	g := new(errgroup.Group)
	g.Go(func() error {
		counts, err := h.store.RequestCountsByTopic(topicID)
		if err != nil {
			return err
		}
		requestCounts = counts
		return nil
	})
	g.Go(func() error {
		counts, err := h.store.ResultCountsByTopic(topicID)
		if err != nil {
			return err
		}
		resultCounts = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		respondAppError(w, "api.topics", err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"request_counts": requestCounts,
		"result_counts":  resultCounts,
	})
}

// HandleTopicStop transitions every Created request in a topic to
// Stopped.
func (h *Handlers) HandleTopicStop(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "id")
	if topicID == "" {
		httputil.Error(w, http.StatusBadRequest, "topic id is required")
		return
	}
	if err := h.store.StopTopic(topicID); err != nil {
		respondAppError(w, "api.topics", err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleSentCount reports how many requests reached Sent within the
// last `hours` hours (default 24).
func (h *Handlers) HandleSentCount(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			hours = parsed
		}
	}
	count, err := h.store.SentCountSince(hours)
	if err != nil {
		respondAppError(w, "api.topics", err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]int{"count": count})
}
