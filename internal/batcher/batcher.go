// Package batcher amortizes the write cost of per-request completions
// into bulk updates, falling back to per-row writes when a batch fails
// to apply as a whole.
package batcher

import (
	"time"

	"github.com/lee-lou2/aws-ses-sender/internal/apperr"
	"github.com/lee-lou2/aws-ses-sender/internal/dispatch"
	"github.com/lee-lou2/aws-ses-sender/internal/domain"
)

const (
	flushSize     = 100
	flushInterval = 500 * time.Millisecond
	receiveWait   = 100 * time.Millisecond
)

// Store is the subset of *store.Store the batcher depends on.
type Store interface {
	BulkUpdate(requests []domain.Request) error
	UpdateRequest(r domain.Request) error
}

// Batcher accumulates dispatch results and flushes them in bulk.
type Batcher struct {
	store       Store
	resultQueue <-chan dispatch.Message
}

// New builds a Batcher that consumes resultQueue.
func New(s Store, resultQueue <-chan dispatch.Message) *Batcher {
	return &Batcher{store: s, resultQueue: resultQueue}
}

// Run drains resultQueue until it is closed, flushing at 100 items or
// every 500ms, whichever comes first, and flushing whatever remains
// once the queue closes. No completion is dropped: every message
// either reaches the store, is logged as failed-to-persist, or stays
// in the batch buffer across loop iterations.
func (b *Batcher) Run() {
	batch := make([]domain.Request, 0, flushSize)
	lastFlush := time.Now()

	for {
		select {
		case msg, ok := <-b.resultQueue:
			if !ok {
				if len(batch) > 0 {
					b.flush(batch)
				}
				return
			}
			batch = append(batch, toRequest(msg))
			if len(batch) >= flushSize || time.Since(lastFlush) >= flushInterval {
				b.flush(batch)
				batch = batch[:0]
				lastFlush = time.Now()
			}
		case <-time.After(receiveWait):
			if len(batch) > 0 && time.Since(lastFlush) >= flushInterval {
				b.flush(batch)
				batch = batch[:0]
				lastFlush = time.Now()
			}
		}
	}
}

func (b *Batcher) flush(batch []domain.Request) {
	err := b.store.BulkUpdate(batch)
	if err == nil {
		return
	}
	apperr.Report("batcher", err)

	for _, r := range batch {
		if err := b.store.UpdateRequest(r); err != nil {
			apperr.Report("batcher", err)
		}
	}
}

func toRequest(msg dispatch.Message) domain.Request {
	return domain.Request{
		ID:                msg.ID,
		TopicID:           msg.TopicID,
		ContentID:         msg.ContentID,
		Email:             msg.Email,
		Status:            msg.Status,
		ProviderMessageID: msg.ProviderMessageID,
		Error:             msg.Error,
	}
}
