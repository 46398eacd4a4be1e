package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SES submits mail through the AWS SES v2 SendEmail API.
type SES struct {
	client *sesv2.Client
}

// NewSES builds an SES client from static credentials. If
// accessKey/secretKey are empty the default credential chain (instance
// role, env vars, shared config) is used instead.
func NewSES(ctx context.Context, region, accessKey, secretKey string) (*SES, error) {
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("provider: load aws config: %w", err)
	}
	return &SES{client: sesv2.NewFromConfig(cfg)}, nil
}

const (
	maxAttempts  = 3
	initialDelay = 100 * time.Millisecond
)

// Submit sends one HTML email, retrying throttling, timeout, and
// transport dispatch failures for up to maxAttempts attempts in total
// with a fixed 100ms-doubling backoff. Any other failure surfaces immediately
// without retry.
func (s *SES) Submit(ctx context.Context, from, to, subject, htmlBody string) Result {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	delay := initialDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return Result{Ok: false, Err: ctx.Err()}
			}
			delay *= 2
		}

		out, err := s.client.SendEmail(ctx, input)
		if err == nil {
			id := ""
			if out.MessageId != nil {
				id = *out.MessageId
			}
			return Result{Ok: true, ID: id}
		}

		lastErr = err
		if !retryable(err) {
			return Result{Ok: false, Err: err}
		}
	}
	return Result{Ok: false, Err: lastErr}
}

// retryable reports whether err is a provider throttling response, a
// context timeout, or a network dispatch failure.
func retryable(err error) bool {
	var throttled *types.TooManyRequestsException
	if errors.As(err, &throttled) {
		return true
	}
	var limitExceeded *types.LimitExceededException
	if errors.As(err, &limitExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
