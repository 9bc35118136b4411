package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// Transient failure classes. The retry policy only re-attempts calls that
// wrap one of these; anything else surfaces immediately.
var (
	ErrRateLimited      = errors.New("llm: rate limited")
	ErrServerError      = errors.New("llm: upstream server error")
	ErrUnavailable      = errors.New("llm: service unavailable")
	ErrDeadlineExceeded = errors.New("llm: deadline exceeded")
)

// IsTransient reports whether err belongs to a retryable failure class.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServerError) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrDeadlineExceeded)
}

// ClassifyStatus maps an HTTP status to a transient sentinel, or nil when
// the status carries no retryable class.
func ClassifyStatus(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusServiceUnavailable:
		return ErrUnavailable
	case status == http.StatusGatewayTimeout:
		return ErrDeadlineExceeded
	case status >= http.StatusInternalServerError:
		return ErrServerError
	}
	return nil
}

// ClassifyTransport maps transport-level failures (timeouts, dial errors)
// to a transient sentinel, or nil for non-network errors.
func ClassifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrDeadlineExceeded
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrDeadlineExceeded
		}
		return ErrUnavailable
	}
	return nil
}
