// Package scheduler implements the single long-running task that keeps
// the send queue fed from the due subset of persistent requests. Its
// poll+claim shape is adapted from a campaign-batch claim loop to the
// fixed-size ClaimDue contract this store exposes.
package scheduler

import (
	"time"

	"github.com/lee-lou2/aws-ses-sender/internal/apperr"
	"github.com/lee-lou2/aws-ses-sender/internal/dispatch"
	"github.com/lee-lou2/aws-ses-sender/internal/store"
)

const (
	claimBatch          = 1000
	emptyPollShort      = 10 * time.Second
	emptyPollLong       = 20 * time.Second
	emptyPollLongAfter  = 5
	iterationDelay      = 100 * time.Millisecond
	storeErrorBackoff   = 5 * time.Second
)

// Store is the subset of *store.Store the scheduler depends on.
type Store interface {
	ClaimDue(limit int) ([]store.ClaimedRequest, error)
}

// Scheduler polls Store.ClaimDue and publishes due requests onto
// sendQueue.
type Scheduler struct {
	store     Store
	sendQueue chan<- dispatch.Message
}

// New builds a Scheduler that publishes onto sendQueue.
func New(s Store, sendQueue chan<- dispatch.Message) *Scheduler {
	return &Scheduler{store: s, sendQueue: sendQueue}
}

// Run executes the claim loop until a publish fails (the send queue
// was closed for shutdown) or stop is closed. One claim cycle happens
// per iteration.
func (s *Scheduler) Run(stop <-chan struct{}) {
	consecutiveEmpty := 0

	for {
		select {
		case <-stop:
			return
		default:
		}

		rows, err := s.store.ClaimDue(claimBatch)
		if err != nil {
			apperr.Report("scheduler", err)
			if !sleepOrStop(storeErrorBackoff, stop) {
				return
			}
			continue
		}

		if len(rows) == 0 {
			consecutiveEmpty++
			delay := emptyPollShort
			if consecutiveEmpty > emptyPollLongAfter {
				delay = emptyPollLong
			}
			if !sleepOrStop(delay, stop) {
				return
			}
			continue
		}
		consecutiveEmpty = 0

		for _, r := range rows {
			msg := dispatch.Message{
				ID:        r.ID,
				TopicID:   r.TopicID,
				ContentID: r.ContentID,
				Email:     r.Email,
				Subject:   r.Subject,
				Body:      r.Content,
			}
			if !publish(s.sendQueue, msg, stop) {
				return
			}
		}

		if !sleepOrStop(iterationDelay, stop) {
			return
		}
	}
}

// publish sends msg on sendQueue, reporting false if the queue is
// closed or stop fires first.
func publish(sendQueue chan<- dispatch.Message, msg dispatch.Message, stop <-chan struct{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	select {
	case sendQueue <- msg:
		return true
	case <-stop:
		return false
	}
}

// sleepOrStop waits d or until stop fires, returning false in the
// latter case so the caller can exit promptly on shutdown.
func sleepOrStop(d time.Duration, stop <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-stop:
		return false
	}
}
