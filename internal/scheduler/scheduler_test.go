package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/lee-lou2/aws-ses-sender/internal/dispatch"
	"github.com/lee-lou2/aws-ses-sender/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClaimStore struct {
	mu    sync.Mutex
	calls int
	block chan struct{}
}

func (f *fakeClaimStore) ClaimDue(limit int) ([]store.ClaimedRequest, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if n == 1 {
		return []store.ClaimedRequest{{ID: 1, Email: "a@example.com", Subject: "hi", Content: "<p>hi</p>"}}, nil
	}
	<-f.block
	return nil, nil
}

func TestScheduler_PublishesClaimedRows(t *testing.T) {
	fake := &fakeClaimStore{block: make(chan struct{})}
	sendQueue := make(chan dispatch.Message, 1)
	stop := make(chan struct{})
	sched := New(fake, sendQueue)

	done := make(chan struct{})
	go func() {
		sched.Run(stop)
		close(done)
	}()

	select {
	case msg := <-sendQueue:
		assert.Equal(t, int64(1), msg.ID)
		assert.Equal(t, "a@example.com", msg.Email)
		assert.Equal(t, "hi", msg.Subject)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not publish claimed row")
	}

	close(stop)
	close(fake.block)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stop was closed")
	}
}

func TestPublish_ReturnsFalseWhenStopFiresFirst(t *testing.T) {
	sendQueue := make(chan dispatch.Message) // unbuffered, no receiver
	stop := make(chan struct{})
	close(stop)

	ok := publish(sendQueue, dispatch.Message{ID: 1}, stop)
	assert.False(t, ok)
}

func TestPublish_SwallowsSendOnClosedChannel(t *testing.T) {
	sendQueue := make(chan dispatch.Message)
	close(sendQueue)
	stop := make(chan struct{})

	require.NotPanics(t, func() {
		publish(sendQueue, dispatch.Message{ID: 1}, stop)
	})
}

func TestSleepOrStop_ReturnsFalseWhenStopCloses(t *testing.T) {
	stop := make(chan struct{})
	close(stop)
	assert.False(t, sleepOrStop(time.Minute, stop))
}

func TestSleepOrStop_ReturnsTrueAfterDuration(t *testing.T) {
	stop := make(chan struct{})
	assert.True(t, sleepOrStop(time.Millisecond, stop))
}
