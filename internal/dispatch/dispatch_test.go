package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/lee-lou2/aws-ses-sender/internal/domain"
	"github.com/lee-lou2/aws-ses-sender/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	result provider.Result
}

func (f fakeSubmitter) Submit(ctx context.Context, from, to, subject, htmlBody string) provider.Result {
	return f.result
}

func TestDispatcher_Run_PublishesSentResult(t *testing.T) {
	sendQueue := make(chan Message, 1)
	resultQueue := make(chan Message, 1)

	d := New(fakeSubmitter{result: provider.Result{Ok: true, ID: "provider-id"}}, 10, sendQueue, resultQueue, "from@example.com", "http://localhost:8080")

	sendQueue <- Message{ID: 1, Email: "to@example.com", Subject: "hi", Body: "<p>hi</p>"}
	close(sendQueue)

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()

	select {
	case msg := <-resultQueue:
		assert.Equal(t, domain.StatusSent, msg.Status)
		assert.Equal(t, "provider-id", msg.ProviderMessageID)
		assert.Contains(t, msg.Body, "/v1/events/open?request_id=1")
	case <-time.After(time.Second):
		t.Fatal("no result published")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after sendQueue closed")
	}
}

func TestDispatcher_Run_PublishesFailedResultWithError(t *testing.T) {
	sendQueue := make(chan Message, 1)
	resultQueue := make(chan Message, 1)

	d := New(fakeSubmitter{result: provider.Result{Ok: false, Err: assertErr{}}}, 10, sendQueue, resultQueue, "from@example.com", "http://localhost:8080")

	sendQueue <- Message{ID: 2, Email: "to@example.com"}
	close(sendQueue)

	go d.Run()

	select {
	case msg := <-resultQueue:
		assert.Equal(t, domain.StatusFailed, msg.Status)
		assert.Equal(t, "boom", msg.Error)
	case <-time.After(time.Second):
		t.Fatal("no result published")
	}
}

func TestInjectPixel_AppendsImgTag(t *testing.T) {
	body := injectPixel("<p>hello</p>", "http://host", 42)
	assert.Contains(t, body, "<p>hello</p>")
	assert.Contains(t, body, `src="http://host/v1/events/open?request_id=42"`)
}

func TestPublishResult_SwallowsSendOnClosedChannel(t *testing.T) {
	resultQueue := make(chan Message)
	close(resultQueue)

	require.NotPanics(t, func() {
		publishResult(resultQueue, Message{ID: 1})
	})
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
