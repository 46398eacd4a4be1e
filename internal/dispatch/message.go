// Package dispatch implements the rate-limited submission loop: it
// paces outbound provider calls through a token bucket, bounds
// in-flight submissions with a counting semaphore, and injects the
// tracking pixel into each body before send.
package dispatch

import (
	"time"

	"github.com/lee-lou2/aws-ses-sender/internal/domain"
)

// Message is one claimed Request, hydrated with enough content to
// build and submit the outbound email. It is the sole payload type
// carried over the send queue and the result queue.
type Message struct {
	ID                int64
	TopicID           string
	ContentID         int64
	Email             string
	Subject           string
	Body              string
	ScheduledAt       time.Time
	Status            domain.Status
	ProviderMessageID string
	Error             string
}
