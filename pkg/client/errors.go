package client

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrConfiguration is matched by every error detected before a request
	// is sent.
	ErrConfiguration = errors.New("invalid BLS query")

	// ErrSpanTooLarge is returned for unregistered queries spanning 10 or
	// more years.
	ErrSpanTooLarge = fmt.Errorf("%w: must use an API key to retrieve more than 10 years", ErrConfiguration)

	// ErrNoSeries is returned when a query names no series.
	ErrNoSeries = fmt.Errorf("%w: at least one series id is required", ErrConfiguration)

	// ErrDecode is returned when a response body is not a BLS envelope.
	ErrDecode = errors.New("decode BLS response")
)

// ProviderError is returned when the BLS envelope reports a status other
// than REQUEST_SUCCEEDED.
type ProviderError struct {
	Status   string
	Messages []string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("BLS request failed with status %s: %s", e.Status, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("BLS request failed with status %s", e.Status)
}

// HTTPError is returned for a non-2xx HTTP response.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("BLS HTTP error (status %d): %s: %s", e.StatusCode, e.Status, e.Body)
	}
	return fmt.Sprintf("BLS HTTP error (status %d): %s", e.StatusCode, e.Status)
}

// classify maps an error to its metrics label.
func classify(err error) ErrorClass {
	var (
		pe *ProviderError
		he *HTTPError
	)
	switch {
	case errors.Is(err, ErrConfiguration):
		return ErrorClassConfiguration
	case errors.As(err, &pe):
		return ErrorClassProvider
	case errors.As(err, &he):
		return ErrorClassHTTP
	case errors.Is(err, ErrDecode):
		return ErrorClassDecode
	default:
		return ErrorClassNetwork
	}
}
