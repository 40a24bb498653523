// Package metrics provides the Prometheus registry used by the BLS client
// and a text dump of its metrics for short-lived processes.
// All metrics are defined in their respective packages (client, pagination,
// quota) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Prefix is the name prefix shared by every BLS client metric.
const Prefix = "bls_"

// Registry is the default Prometheus registry used by the BLS client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back what Registry collected.
var Gatherer = prometheus.DefaultGatherer

// WriteText writes every bls_ metric family from g in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Prefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - bls_requests_total{status} (Counter): Physical requests by envelope status,
//     HTTP status code, network_error, decode_error or quota_blocked
//   - bls_request_duration_seconds (Histogram): Physical request duration
//   - bls_errors_total{class} (Counter): Errors by class (configuration, network,
//     http, provider, decode, quota)
//   - bls_series_dropped_total (Counter): Series dropped under the ignore policy
//
// Pagination Metrics (pkg/pagination):
//   - bls_pagination_windows (Histogram): Windows per logical query
//
// Quota Metrics (pkg/quota):
//   - bls_quota_remaining{tier} (Gauge): Requests left today per tier
//   - bls_quota_blocks_total{tier} (Counter): Requests refused by the daily quota
//
// Example Prometheus Queries:
//
//   # Provider failure rate
//   rate(bls_errors_total{class="provider"}[1h])
//
//   # Queries needing more than one request
//   bls_pagination_windows_count - bls_pagination_windows_bucket{le="1"}
//
//   # Public quota nearly spent
//   bls_quota_remaining{tier="public"} < 3
