package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

// Rules build an ErrorClassifier from adapter-specific predicates.
// Cancellation is neither retried nor counted; an open breaker is retryable.
type Rules struct {
	// Transient errors are retried and count against the breaker.
	Transient func(error) bool
	// Permanent errors are caller mistakes: not retried, not counted.
	Permanent func(error) bool
}

func (r Rules) Classify(err error) ErrorClassification {
	switch {
	case err == nil:
		return ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorClassification{}
	case IsCircuitOpen(err):
		return ErrorClassification{Retryable: true, RecordFailure: true}
	case r.Permanent != nil && r.Permanent(err):
		return ErrorClassification{}
	case r.Transient != nil && r.Transient(err):
		return ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return ErrorClassification{RecordFailure: true}
	}
}

// MarkTemporary tags err with domain.ErrTemporary when the classifier would
// have retried it, so callers see exhausted retries as a temporary failure.
func MarkTemporary(operation string, err error, classify ErrorClassifier) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classify(err).Retryable || IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

// IsNetworkError reports transport-level failures such as refused
// connections and dial timeouts.
func IsNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsRetryableHTTPStatus lists the statuses an overloaded or restarting
// model server answers with.
func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
