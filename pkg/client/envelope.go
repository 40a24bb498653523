package client

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Sternrassler/bls-client/pkg/series"
	"github.com/rs/zerolog"
)

// StatusSucceeded is the envelope status of a successful request.
const StatusSucceeded = "REQUEST_SUCCEEDED"

// envelope is the JSON body of every BLS v2 response.
type envelope struct {
	Status       string   `json:"status"`
	ResponseTime int      `json:"responseTime"`
	Message      []string `json:"message"`
	Results      struct {
		Series []series.RawSeries `json:"series"`
	} `json:"Results"`
}

// decodeEnvelope reads a BLS response body, logs every provider message as
// a warning and returns the series list when the status is a success.
func decodeEnvelope(body io.Reader, logger zerolog.Logger) ([]series.RawSeries, error) {
	var env envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	for _, msg := range env.Message {
		logger.Warn().
			Str("status", env.Status).
			Msg(msg)
	}

	if env.Status != StatusSucceeded {
		return nil, &ProviderError{Status: env.Status, Messages: env.Message}
	}

	return env.Results.Series, nil
}
