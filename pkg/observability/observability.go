package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "neurobridge/backend"

// Config selects which signals are exported
type Config struct {
	ServiceName    string
	MetricsEnabled bool
	TracingEnabled bool
	// TraceOutput receives stdout trace spans; defaults to os.Stdout
	TraceOutput io.Writer
}

// Provider owns the metric and trace pipelines of the process
type Provider struct {
	Metrics *Metrics
	Tracer  trace.Tracer

	registry       *promclient.Registry
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

// Setup builds the Prometheus-backed meter provider and, when enabled, a
// stdout span exporter. Disabled signals fall back to no-op implementations.
func Setup(cfg Config) (*Provider, error) {
	p := &Provider{}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
	)

	if cfg.MetricsEnabled {
		p.registry = promclient.NewRegistry()
		exp, err := prometheus.New(prometheus.WithRegisterer(p.registry))
		if err != nil {
			return nil, err
		}
		p.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exp),
			sdkmetric.WithResource(res),
		)
		m, err := NewMetrics(p.meterProvider.Meter(instrumentationName))
		if err != nil {
			return nil, err
		}
		p.Metrics = m
	} else {
		p.Metrics = NopMetrics()
	}

	if cfg.TracingEnabled {
		out := cfg.TraceOutput
		if out == nil {
			out = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, err
		}
		p.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(p.tracerProvider)
		p.Tracer = p.tracerProvider.Tracer(instrumentationName)
	} else {
		p.Tracer = tracenoop.NewTracerProvider().Tracer(instrumentationName)
	}

	return p, nil
}

// Handler serves the Prometheus exposition, or nil when metrics are disabled
func (p *Provider) Handler() http.Handler {
	if p.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes pending spans and stops the meter provider
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.tracerProvider != nil {
		errs = append(errs, p.tracerProvider.Shutdown(ctx))
	}
	if p.meterProvider != nil {
		errs = append(errs, p.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// NopMetrics returns Metrics whose instruments discard every measurement
func NopMetrics() *Metrics {
	m, _ := NewMetrics(metricnoop.NewMeterProvider().Meter(instrumentationName))
	return m
}
