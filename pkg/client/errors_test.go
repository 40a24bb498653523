package client

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestProviderError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProviderError
		expected string
	}{
		{
			name:     "with messages",
			err:      &ProviderError{Status: "REQUEST_NOT_PROCESSED", Messages: []string{"Invalid key", "Try later"}},
			expected: "BLS request failed with status REQUEST_NOT_PROCESSED: Invalid key; Try later",
		},
		{
			name:     "without messages",
			err:      &ProviderError{Status: "REQUEST_FAILED"},
			expected: "BLS request failed with status REQUEST_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestHTTPError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *HTTPError
		expected string
	}{
		{
			name:     "with body",
			err:      &HTTPError{StatusCode: 503, Status: "503 Service Unavailable", Body: "down"},
			expected: "BLS HTTP error (status 503): 503 Service Unavailable: down",
		},
		{
			name:     "without body",
			err:      &HTTPError{StatusCode: 404, Status: "404 Not Found"},
			expected: "BLS HTTP error (status 404): 404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestConfigurationErrors(t *testing.T) {
	for _, err := range []error{ErrSpanTooLarge, ErrNoSeries} {
		if !errors.Is(err, ErrConfiguration) {
			t.Errorf("%v should match ErrConfiguration", err)
		}
	}
	if errors.Is(ErrDecode, ErrConfiguration) {
		t.Error("ErrDecode should not match ErrConfiguration")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{
			name:     "span too large",
			err:      fmt.Errorf("%w (requested 2000-2020)", ErrSpanTooLarge),
			expected: ErrorClassConfiguration,
		},
		{
			name:     "provider failure",
			err:      &ProviderError{Status: "REQUEST_NOT_PROCESSED"},
			expected: ErrorClassProvider,
		},
		{
			name:     "wrapped provider failure",
			err:      fmt.Errorf("window 1960-1978 (1/4): %w", &ProviderError{Status: "REQUEST_NOT_PROCESSED"}),
			expected: ErrorClassProvider,
		},
		{
			name:     "http error",
			err:      &HTTPError{StatusCode: 500},
			expected: ErrorClassHTTP,
		},
		{
			name:     "decode failure",
			err:      fmt.Errorf("%w: unexpected EOF", ErrDecode),
			expected: ErrorClassDecode,
		},
		{
			name:     "network error",
			err:      fmt.Errorf("BLS request: %w", io.ErrUnexpectedEOF),
			expected: ErrorClassNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got != tt.expected {
				t.Errorf("classify() = %q, want %q", got, tt.expected)
			}
		})
	}
}
