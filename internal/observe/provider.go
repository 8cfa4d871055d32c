package observe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ProviderConfig configures the OpenTelemetry SDK providers.
type ProviderConfig struct {
	// ServiceName is reported in telemetry. Default: "personapi".
	ServiceName string

	ServiceVersion string

	// TraceExporter is optional. When nil, spans are recorded but not
	// exported.
	TraceExporter sdktrace.SpanExporter
}

// Provider is an initialised telemetry pipeline.
type Provider struct {
	// Resource describes this service on every metric and span.
	Resource *resource.Resource

	// MeterProvider feeds the Prometheus registry behind MetricsHandler.
	MeterProvider *sdkmetric.MeterProvider

	// MetricsHandler serves the Prometheus exposition format.
	MetricsHandler http.Handler

	shutdownFuncs []func(context.Context) error
}

// InitProvider sets up a MeterProvider exporting to a private Prometheus
// registry and a TracerProvider with the configured exporter, and
// registers both as the global OTel providers.
func InitProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "personapi"
	}

	// Only the SDK detector sets a schema URL; the service attributes stay
	// schemaless so Merge cannot fail on a semconv version mismatch.
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	p := &Provider{Resource: res}

	// a registry per provider, so repeated initialisation (tests, restarts)
	// never hits duplicate registration on the default registerer
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}
	p.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExp),
	)
	p.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	otel.SetMeterProvider(p.MeterProvider)
	p.shutdownFuncs = append(p.shutdownFuncs, p.MeterProvider.Shutdown)

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}
	if cfg.TraceExporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(cfg.TraceExporter))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)
	p.shutdownFuncs = append(p.shutdownFuncs, tp.Shutdown)

	return p, nil
}

// Shutdown flushes and closes the exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdownFuncs {
		if e := fn(ctx); e != nil {
			errs = append(errs, e)
		}
	}
	return errors.Join(errs...)
}
