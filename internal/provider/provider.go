// Package provider submits outbound messages to the external email
// service and reports a normalized, retried-to-completion result.
package provider

import "context"

// Result is the outcome of one Submit call: either Ok is true and ID
// holds the provider's message id, or Ok is false and Err describes
// why the submission failed.
type Result struct {
	Ok bool
	ID string
	Err error
}

// Submitter sends a single email and returns a Result. Implementations
// are expected to retry transient failures internally so the caller
// never needs a second attempt.
type Submitter interface {
	Submit(ctx context.Context, from, to, subject, htmlBody string) Result
}
