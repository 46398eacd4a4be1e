package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lee-lou2/aws-ses-sender/internal/apperr"
	"github.com/lee-lou2/aws-ses-sender/internal/dispatch"
	"github.com/lee-lou2/aws-ses-sender/internal/domain"
	"github.com/lee-lou2/aws-ses-sender/internal/pkg/httputil"
	"github.com/lee-lou2/aws-ses-sender/internal/pkg/logger"
)

const maxRecipientsPerCreate = 10000

// createMessageItem is one entry in a create request: one Content
// fanned out to a list of recipients.
type createMessageItem struct {
	Emails      []string `json:"emails"`
	Subject     string   `json:"subject"`
	Content     string   `json:"content"`
	TopicID     string   `json:"topic_id"`
	ScheduledAt string   `json:"scheduled_at"`
}

type createRequestBody struct {
	Messages []createMessageItem `json:"messages"`
}

type createResponse struct {
	BatchID    string `json:"batch_id"`
	Total      int    `json:"total"`
	Success    int    `json:"success"`
	Errors     int    `json:"errors"`
	DurationMs int64  `json:"duration_ms"`
	Scheduled  bool   `json:"scheduled"`
}

// HandleCreate accepts a batch of messages, each with one Content and
// a recipient list, persists a Content and one Request per recipient,
// and hands immediate (non-scheduled) requests to the dispatcher. Every
// call is tagged with a batch id so its log lines can be correlated
// without joining on recipient data.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	batchID := uuid.NewString()

	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	total := 0
	for _, m := range body.Messages {
		total += len(m.Emails)
	}
	if total == 0 {
		httputil.Error(w, http.StatusBadRequest, "message list is empty")
		return
	}
	if total > maxRecipientsPerCreate {
		httputil.Error(w, http.StatusBadRequest, "recipient count exceeds 10000")
		return
	}

	contents := make([]domain.Content, len(body.Messages))
	for i, m := range body.Messages {
		contents[i] = domain.Content{Subject: m.Subject, Body: m.Content}
	}
	contents, err := h.store.SaveContents(contents)
	if err != nil {
		respondAppError(w, "api.create", err)
		return
	}

	anyScheduled := false
	requests := make([]domain.Request, 0, total)
	for i, m := range body.Messages {
		scheduledAt, hadExplicit := domain.ParseScheduledAt(m.ScheduledAt)
		immediate := m.ScheduledAt == "" || !hadExplicit || !scheduledAt.After(time.Now().UTC())
		status := domain.StatusProcessed
		if !immediate {
			status = domain.StatusCreated
			anyScheduled = true
		}
		for _, email := range m.Emails {
			requests = append(requests, domain.Request{
				TopicID:     m.TopicID,
				ContentID:   contents[i].ID,
				Email:       email,
				ScheduledAt: scheduledAt,
				Status:      status,
			})
		}
	}

	requests, err = h.store.SaveRequests(requests)
	if err != nil {
		respondAppError(w, "api.create", err)
		return
	}

	failed := h.publishImmediate(requests, contents)
	if len(failed) > 0 {
		if err := h.store.RollbackToCreated(failed); err != nil {
			apperr.Report("api.create", err)
		}
	}

	resp := createResponse{
		BatchID:    batchID,
		Total:      total,
		Success:    total - len(failed),
		Errors:     len(failed),
		DurationMs: time.Since(start).Milliseconds(),
		Scheduled:  anyScheduled,
	}
	logger.Info("batch created", "batch_id", batchID, "total", total, "errors", len(failed))
	httputil.JSON(w, http.StatusOK, resp)
}

// publishImmediate publishes every request saved with status Processed
// onto the send queue using a two-phase publish (non-blocking try,
// then blocking), returning the ids that could not be published
// because the queue was closed.
func (h *Handlers) publishImmediate(requests []domain.Request, contents []domain.Content) []int64 {
	contentByID := make(map[int64]domain.Content, len(contents))
	for _, c := range contents {
		contentByID[c.ID] = c
	}

	var failed []int64
	for _, r := range requests {
		if r.Status != domain.StatusProcessed {
			continue
		}
		c := contentByID[r.ContentID]
		msg := dispatch.Message{
			ID:        r.ID,
			TopicID:   r.TopicID,
			ContentID: r.ContentID,
			Email:     r.Email,
			Subject:   c.Subject,
			Body:      c.Body,
		}
		if !twoPhasePublish(h.sendQueue, msg) {
			failed = append(failed, r.ID)
		}
	}
	return failed
}

// twoPhasePublish tries a non-blocking send first; if the buffer is
// full it falls back to a blocking send. A send on a closed channel
// panics, which is caught and reported as a failed publish.
func twoPhasePublish(sendQueue chan<- dispatch.Message, msg dispatch.Message) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case sendQueue <- msg:
		return true
	default:
	}

	sendQueue <- msg
	return true
}
