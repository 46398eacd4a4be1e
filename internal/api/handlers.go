// Package api implements the thin HTTP ingress layer: message
// creation, the tracking pixel, the provider webhook, and topic
// read/stop.
package api

import (
	"net/http"

	"github.com/lee-lou2/aws-ses-sender/internal/apperr"
	"github.com/lee-lou2/aws-ses-sender/internal/dispatch"
	"github.com/lee-lou2/aws-ses-sender/internal/domain"
	"github.com/lee-lou2/aws-ses-sender/internal/pkg/httputil"
)

// Store is the subset of *store.Store the HTTP layer depends on.
type Store interface {
	SaveContents(contents []domain.Content) ([]domain.Content, error)
	SaveRequests(requests []domain.Request) ([]domain.Request, error)
	RollbackToCreated(ids []int64) error
	SaveResult(r domain.Result) (domain.Result, error)
	LookupRequestIDByProviderMessageID(providerMessageID string) (int64, error)
	RequestCountsByTopic(topicID string) (map[string]int, error)
	ResultCountsByTopic(topicID string) (map[string]int, error)
	StopTopic(topicID string) error
	SentCountSince(hours int) (int, error)
	Ping() error
}

// Handlers holds everything the ingress layer needs to serve requests.
type Handlers struct {
	store     Store
	sendQueue chan<- dispatch.Message
	apiKey    string
}

// NewHandlers builds a Handlers.
func NewHandlers(store Store, sendQueue chan<- dispatch.Message, apiKey string) *Handlers {
	return &Handlers{
		store:     store,
		sendQueue: sendQueue,
		apiKey:    apiKey,
	}
}

// respondAppError maps an apperr.Kind to its fixed HTTP status and
// writes a sanitized error response: 4xx kinds surface err's message
// verbatim, everything else logs the real error and returns a generic
// message.
func respondAppError(w http.ResponseWriter, component string, err error) {
	status := statusForKind(apperr.KindOf(err))
	if apperr.Surfaceable(err) {
		httputil.Error(w, status, err.Error())
		return
	}
	apperr.Report(component, err)
	httputil.Error(w, status, "an internal error occurred")
}

func statusForKind(k apperr.Kind) int {
	switch k {
	case apperr.BadRequest, apperr.Validation:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
