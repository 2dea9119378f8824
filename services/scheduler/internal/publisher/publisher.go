package publisher

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"postpilot/pkg/models"
)

// FailureReason classifies why a publish attempt did not succeed. Transient
// reasons are retried on later poll cycles, permanent ones fail the post
// immediately.
type FailureReason string

const (
	ReasonAuthError           FailureReason = "auth_error"
	ReasonRateLimited         FailureReason = "rate_limited"
	ReasonPlatformRejected    FailureReason = "platform_rejected"
	ReasonNetworkError        FailureReason = "network_error"
	ReasonUnsupportedPlatform FailureReason = "unsupported_platform"
	ReasonMaxRetriesExceeded  FailureReason = "max_retries_exceeded"
)

type Error struct {
	Reason FailureReason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return string(e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(reason FailureReason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}

// ReasonOf extracts the failure reason from a publish error. Untyped errors
// (including context deadline expiry) count as network errors.
func ReasonOf(err error) FailureReason {
	var pubErr *Error
	if errors.As(err, &pubErr) {
		return pubErr.Reason
	}
	return ReasonNetworkError
}

// Transient reports whether a failure is expected to self-resolve by waiting,
// making the post eligible for another attempt on a later cycle.
func Transient(reason FailureReason) bool {
	return reason == ReasonNetworkError || reason == ReasonRateLimited
}

// Publisher is the platform-specific publish capability. Publish performs
// exactly one network call per invocation; it never retries on its own.
type Publisher interface {
	Platform() models.Platform
	Publish(ctx context.Context, post *models.Post) error
}

// classifyStatus maps an HTTP response code from a platform API to a failure
// reason.
func classifyStatus(code int) FailureReason {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ReasonAuthError
	case code == http.StatusTooManyRequests:
		return ReasonRateLimited
	case code >= 400 && code < 500:
		return ReasonPlatformRejected
	default:
		return ReasonNetworkError
	}
}
