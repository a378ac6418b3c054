package ollama

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/file-organizer/internal/infrastructure/resilience"
)

// HTTPStatusError is a non-2xx answer from the Ollama server. Body carries
// its error text, e.g. `model "x" not found, try pulling it first`.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("ollama %s: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s: %s: %s", e.Operation, e.Status, body)
}

var classifyOllamaError = resilience.Rules{
	Transient: func(err error) bool {
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) {
			return resilience.IsRetryableHTTPStatus(statusErr.StatusCode)
		}
		return resilience.IsNetworkError(err)
	},
	Permanent: func(err error) bool {
		var statusErr *HTTPStatusError
		return errors.As(err, &statusErr) && !resilience.IsRetryableHTTPStatus(statusErr.StatusCode)
	},
}.Classify

func markTemporary(operation string, err error) error {
	return resilience.MarkTemporary(operation, err, classifyOllamaError)
}
