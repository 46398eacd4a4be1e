package provider

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/stretchr/testify/assert"
)

type fakeTimeoutErr struct{}

func (fakeTimeoutErr) Error() string   { return "timeout" }
func (fakeTimeoutErr) Timeout() bool   { return true }
func (fakeTimeoutErr) Temporary() bool { return true }

var _ net.Error = fakeTimeoutErr{}

func TestRetryable_ThrottlingIsRetryable(t *testing.T) {
	assert.True(t, retryable(&types.TooManyRequestsException{}))
	assert.True(t, retryable(&types.LimitExceededException{}))
}

func TestRetryable_DeadlineExceededIsRetryable(t *testing.T) {
	assert.True(t, retryable(context.DeadlineExceeded))
}

func TestRetryable_NetErrorIsRetryable(t *testing.T) {
	assert.True(t, retryable(fakeTimeoutErr{}))
}

func TestRetryable_OtherErrorsAreNotRetried(t *testing.T) {
	assert.False(t, retryable(errors.New("validation error: bad recipient")))
}
