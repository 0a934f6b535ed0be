// Package telemetry provides application-level observability for Recruitbase.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<RB_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090.  The endpoint returns data in the Prometheus text exposition
// format and is intended to be scraped by a Prometheus server every 15–60 seconds.
// It is NOT served by the Gin router and is therefore not reachable through the
// public API ingress.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Shareable link issuance and resolution outcome counters
//   - Audit write failure counter (the diagnostic channel for secondary audit errors)
//   - Database connection pool gauge (polled every 30 s)
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /v1/shared/:token) rather
// than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as link tokens.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
//
// HTTPRequestsTotal is a CounterVec with labels {method, path, status}.
// The path label holds the Gin route template (e.g. /v1/shared/:token),
// NOT the raw URL, to prevent unbounded cardinality.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//
// HTTPRequestDuration is a HistogramVec with labels {method, path} and exponential-ish
// buckets from 5 ms to 30 s.  Use histogram_quantile to compute latency percentiles.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Shareable link metrics — recorded by the issuer and resolver services.
//
// SharesIssuedTotal is a CounterVec with label {resource_type} incremented once per
// successfully issued link.
//
// ShareResolutionsTotal is a CounterVec with labels {resource_type, outcome} where
// outcome is one of: success, invalid, expired, password_required, wrong_password,
// resource_gone, error. For lookup misses the resource type is unknown and the
// label holds "none".
//
// Example PromQL queries:
//   - Resolution failure breakdown:  sum by (outcome) (rate(share_resolutions_total{outcome!="success"}[1h]))
//   - Token-guessing signal:         rate(share_resolutions_total{outcome="invalid"}[5m])
var (
	SharesIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shares_issued_total",
			Help: "Total number of shareable links issued, by resource type.",
		},
		[]string{"resource_type"},
	)

	ShareResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_resolutions_total",
			Help: "Total number of shareable link resolution attempts, by resource type and outcome.",
		},
		[]string{"resource_type", "outcome"},
	)
)

// AuditWriteFailuresTotal is a CounterVec with label {action} incremented whenever
// writing an audit record (or shipping it to an external destination) fails. This is
// the diagnostic channel for secondary audit failures: the wrapped operation's own
// outcome is never replaced by an audit write error, so without this counter those
// failures would only surface as log lines.
//
// Alert on increase(audit_write_failures_total[15m]) > 0 — a growing counter means
// the audit trail has gaps.
var AuditWriteFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "audit_write_failures_total",
		Help: "Total number of failed audit record writes or shipments, by action type.",
	},
	[]string{"action"},
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool.  It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB connection
// pool statistics every 30 seconds and updates the DBOpenConnections gauge.
// The goroutine exits cleanly when the database becomes unreachable (db.Ping fails),
// which happens automatically when the application shuts down and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in main.go:
//
//	telemetry.StartDBStatsCollector(database)
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
