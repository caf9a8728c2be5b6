package advisor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// statusError reports a non-2xx answer from a plain HTTP upstream.
type statusError struct {
	StatusCode int
	Err        error
}

func (e *statusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}

func (e *statusError) Unwrap() error {
	return e.Err
}

// classifyUpstreamError maps a collaborator failure onto TIMEOUT, RATE_LIMITED
// or UPSTREAM_ERROR. Errors that already carry a code pass through.
func classifyUpstreamError(op string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	switch {
	case isTimeoutError(err):
		return WrapError(ErrCodeTimeout, op+" timed out", err)
	case isRateLimitError(err):
		return WrapError(ErrCodeRateLimited, op+" rate limited", err)
	default:
		return WrapError(ErrCodeUpstream, op+" failed", err)
	}
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "context deadline exceeded") || strings.Contains(message, "timeout")
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if upstreamStatus(err) == http.StatusTooManyRequests {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "resource_exhausted") ||
		strings.Contains(message, "rate limit") ||
		strings.Contains(message, "429")
}

func upstreamStatus(err error) int {
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode
	}
	var httpErr *statusError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
