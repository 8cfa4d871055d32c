// Package observe provides the observability primitives for personapi:
// OpenTelemetry metrics and tracing, Prometheus exposition, and HTTP
// middleware that ties them to the zerolog access log.
//
// Metrics are recorded through the OpenTelemetry Metrics API and scraped
// through the Prometheus exporter set up by [InitProvider]. Tests should
// build [Metrics] with [NewMetrics] on their own [metric.MeterProvider].
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all personapi metrics.
const meterName = "github.com/surrealdb/surrealdb.go/contrib/personapi"

// Metrics holds the metric instruments of the service. All fields are safe
// for concurrent use.
type Metrics struct {
	// HTTPRequestDuration tracks request latency. Attributes: method, route,
	// status.
	HTTPRequestDuration metric.Float64Histogram

	// HTTPRequests counts served requests. Attributes: method, route, status.
	HTTPRequests metric.Int64Counter

	// StoreOpDuration tracks store operation latency. Attribute: op.
	StoreOpDuration metric.Float64Histogram

	// StoreErrors counts failed store operations. Attribute: op.
	StoreErrors metric.Int64Counter
}

// latencyBuckets are histogram boundaries in seconds.
var latencyBuckets = []float64{
	0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.HTTPRequestDuration, err = m.Float64Histogram("personapi.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequests, err = m.Int64Counter("personapi.http.requests",
		metric.WithDescription("Total HTTP requests by method, route and status."),
	); err != nil {
		return nil, err
	}
	if met.StoreOpDuration, err = m.Float64Histogram("personapi.store.op.duration",
		metric.WithDescription("Latency of entity store operations."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.StoreErrors, err = m.Int64Counter("personapi.store.errors",
		metric.WithDescription("Total failed entity store operations by operation."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// RecordStoreOp records one store operation. It satisfies the store
// package's OpRecorder.
func (m *Metrics) RecordStoreOp(ctx context.Context, op string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("op", op))
	m.StoreOpDuration.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.StoreErrors.Add(ctx, 1, attrs)
	}
}
