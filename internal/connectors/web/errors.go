package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

// Common web fetch errors.
var (
	// ErrRateLimited indicates the server kept answering 429 Too Many Requests.
	ErrRateLimited = errors.New("web: rate limit exceeded")

	// ErrTooLarge indicates the response body exceeded the configured limit.
	ErrTooLarge = errors.New("web: response too large")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: GET %s: %s", domain.ErrFetchFailed, e.URL, e.Status)
}

// Unwrap makes every StatusError match domain.ErrFetchFailed, and 404 or 410
// responses also match domain.ErrNotFound.
func (e *StatusError) Unwrap() []error {
	if e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone {
		return []error{domain.ErrFetchFailed, domain.ErrNotFound}
	}
	return []error{domain.ErrFetchFailed}
}
