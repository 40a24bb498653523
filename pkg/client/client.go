// Package client provides the BLS public API v2 client: request building,
// year-range pagination, response validation and table assembly.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/bls-client/pkg/credentials"
	"github.com/Sternrassler/bls-client/pkg/pagination"
	"github.com/Sternrassler/bls-client/pkg/quota"
	"github.com/Sternrassler/bls-client/pkg/series"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the BLS v2 time series endpoint.
const DefaultBaseURL = "https://api.bls.gov/publicAPI/v2/timeseries/data/"

// maxErrorBody caps how much of a non-2xx body is kept in an HTTPError.
const maxErrorBody = 512

// Prometheus metrics for BLS client operations.
var (
	blsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bls_requests_total",
		Help: "Total physical BLS requests by outcome",
	}, []string{"status"})

	blsRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bls_request_duration_seconds",
		Help:    "BLS request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	blsErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bls_errors_total",
		Help: "Total BLS client errors by class",
	}, []string{"class"})

	blsSeriesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bls_series_dropped_total",
		Help: "Total series dropped for returning no data under the ignore policy",
	})
)

// ErrorClass represents a classification of client errors.
type ErrorClass string

const (
	// ErrorClassConfiguration represents queries rejected before any request.
	ErrorClassConfiguration ErrorClass = "configuration"

	// ErrorClassNetwork represents transport failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassHTTP represents non-2xx responses.
	ErrorClassHTTP ErrorClass = "http"

	// ErrorClassProvider represents envelopes with a failure status.
	ErrorClassProvider ErrorClass = "provider"

	// ErrorClassDecode represents undecodable bodies.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassQuota represents requests refused by the daily budget.
	ErrorClassQuota ErrorClass = "quota"
)

// Client is the BLS API client.
type Client struct {
	httpClient  *http.Client
	credentials *credentials.Holder
	quota       *quota.Tracker
	paginator   *pagination.Fetcher
	config      Config
	logger      zerolog.Logger
	now         func() time.Time
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the time series endpoint.
	BaseURL string

	// UserAgent header sent with every request
	UserAgent string

	// Credentials supplies the registration key for queries that do not
	// carry their own. Nil means no key.
	Credentials *credentials.Holder

	// Timeout per physical request
	Timeout time.Duration

	// Redis enables the shared daily quota tracker when set.
	Redis *redis.Client
}

// DefaultConfig returns a configuration for the public BLS endpoint with the
// key taken from BLS_API_KEY.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		UserAgent:   userAgent,
		Credentials: credentials.FromEnv(),
		Timeout:     30 * time.Second,
	}
}

// New creates a new BLS client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.Credentials == nil {
		cfg.Credentials = credentials.New("")
	}

	logger := log.With().Str("component", "bls-client").Logger()

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		credentials: cfg.Credentials,
		config:      cfg,
		logger:      logger,
		now:         time.Now,
	}

	if cfg.Redis != nil {
		c.quota = quota.NewTracker(cfg.Redis, logger)
	}

	c.paginator = pagination.NewFetcher(c, logger)

	return c, nil
}

// Credentials returns the key holder used for queries without their own key.
func (c *Client) Credentials() *credentials.Holder {
	return c.credentials
}

// GetJSONSeries fetches the raw observations of every series in q,
// paginating across ranges longer than a single request allows.
// Observations are returned in the order the API sent them.
func (c *Client) GetJSONSeries(ctx context.Context, q Query) ([]series.RawSeries, error) {
	if len(q.SeriesIDs) == 0 {
		blsErrorsTotal.WithLabelValues(string(ErrorClassConfiguration)).Inc()
		return nil, ErrNoSeries
	}

	key, keyed := c.resolveKey(q.Key)

	window, err := resolveYears(q.StartYear, q.EndYear, keyed, c.now().Year())
	if err != nil {
		blsErrorsTotal.WithLabelValues(string(ErrorClassConfiguration)).Inc()
		return nil, err
	}

	c.logger.Debug().
		Strs("series_ids", q.SeriesIDs).
		Stringer("range", window).
		Bool("registered", keyed).
		Msg("Fetching BLS series")

	return c.paginator.FetchAll(ctx, q.SeriesIDs, window, key)
}

// FetchOne fetches a single series and returns it sorted ascending by
// period. A series with no data is always an error.
func (c *Client) FetchOne(ctx context.Context, seriesID string, r Range) (series.Series, error) {
	q := Query{SeriesIDs: []string{seriesID}, Range: r}

	table, err := c.fetchTable(ctx, q, true, series.PolicyRaise)
	if err != nil {
		return series.Series{}, err
	}

	if len(table.Columns) == 0 {
		return series.Series{}, &series.EmptySeriesError{SeriesIDs: []string{seriesID}}
	}

	s, _ := table.Series(table.Columns[0])
	return s, nil
}

// FetchMany fetches several series into one table aligned on their
// periods. With series.PolicyIgnore, series that return no data are
// dropped with a warning as long as at least one series has data.
func (c *Client) FetchMany(ctx context.Context, q Query, policy series.Policy) (*series.Table, error) {
	return c.fetchTable(ctx, q, false, policy)
}

func (c *Client) fetchTable(ctx context.Context, q Query, single bool, policy series.Policy) (*series.Table, error) {
	results, err := c.GetJSONSeries(ctx, q)
	if err != nil {
		return nil, err
	}

	table, err := series.Assemble(results, series.AssembleOptions{
		Requested: len(q.SeriesIDs),
		Single:    single,
		Policy:    policy,
		Logger:    &c.logger,
	})
	if err != nil {
		return nil, err
	}

	blsSeriesDroppedTotal.Add(float64(len(table.Dropped)))
	return table, nil
}

// FetchWindow performs one physical request for the given year window.
// It implements pagination.WindowFetcher.
func (c *Client) FetchWindow(ctx context.Context, seriesIDs []string, w pagination.Window, key string) ([]series.RawSeries, error) {
	if c.quota != nil {
		if _, err := c.quota.Reserve(ctx, quota.AccountFor(key)); err != nil {
			blsErrorsTotal.WithLabelValues(string(ErrorClassQuota)).Inc()
			blsRequestsTotal.WithLabelValues("quota_blocked").Inc()
			return nil, err
		}
	}

	form := url.Values{
		"seriesid":  {strings.Join(seriesIDs, ",")},
		"startyear": {strconv.Itoa(w.Start)},
		"endyear":   {strconv.Itoa(w.End)},
	}
	if key != "" {
		form.Set("registrationkey", key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Stringer("window", w).
		Int("series", len(seriesIDs)).
		Msg("Executing BLS request")

	startTime := time.Now()
	results, err := c.do(req)
	blsRequestDuration.Observe(time.Since(startTime).Seconds())

	if err != nil {
		class := classify(err)
		blsErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Err(err).
			Stringer("window", w).
			Str("error_class", string(class)).
			Msg("BLS request failed")
		return nil, err
	}

	return results, nil
}

func (c *Client) do(req *http.Request) ([]series.RawSeries, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		blsRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, fmt.Errorf("BLS request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		blsRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	results, err := decodeEnvelope(resp.Body, c.logger)
	if err != nil {
		if pe, ok := err.(*ProviderError); ok {
			blsRequestsTotal.WithLabelValues(pe.Status).Inc()
		} else {
			blsRequestsTotal.WithLabelValues("decode_error").Inc()
		}
		return nil, err
	}

	blsRequestsTotal.WithLabelValues(StatusSucceeded).Inc()
	return results, nil
}

func (c *Client) resolveKey(override string) (string, bool) {
	if override != "" {
		return override, true
	}
	return c.credentials.Current()
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
