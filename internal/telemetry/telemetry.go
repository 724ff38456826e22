// Package telemetry provides OpenTelemetry instrumentation for ocitally.
package telemetry

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/yairfalse/ocitally/internal/config"
)

const instrumentationName = "github.com/yairfalse/ocitally"

// Provider wraps OTEL tracer and meter providers. Every recording method is
// safe to call on a nil *Provider.
type Provider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
	registry       *promclient.Registry

	// Metrics
	apiCalls          metric.Int64Counter
	records           metric.Int64Counter
	uploadFailures    metric.Int64Counter
	collectorDuration metric.Float64Histogram
}

// NewProvider creates a new telemetry provider. Metrics are always exported
// to an in-process Prometheus registry; OTLP export is added when configured.
func NewProvider(ctx context.Context, cfg config.OTELConfig) (*Provider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	p := &Provider{}

	if err := p.setupTracing(ctx, cfg, res); err != nil {
		return nil, err
	}

	if err := p.setupMetrics(ctx, cfg, res); err != nil {
		_ = p.tracerProvider.Shutdown(ctx)
		return nil, err
	}

	if err := p.initMetrics(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Provider) setupTracing(ctx context.Context, cfg config.OTELConfig, res *resource.Resource) error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}

	if cfg.Traces.Enabled && cfg.Endpoint != "" {
		exp, err := createTraceExporter(ctx, cfg)
		if err != nil {
			return fmt.Errorf("create trace exporter: %w", err)
		}
		sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Traces.SampleRate))
		opts = append(opts, sdktrace.WithBatcher(exp), sdktrace.WithSampler(sampler))
	}

	p.tracerProvider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(p.tracerProvider)
	p.tracer = p.tracerProvider.Tracer(instrumentationName)

	return nil
}

func (p *Provider) setupMetrics(ctx context.Context, cfg config.OTELConfig, res *resource.Resource) error {
	p.registry = promclient.NewRegistry()
	promExporter, err := prometheus.New(prometheus.WithRegisterer(p.registry))
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}

	opts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	}

	if cfg.Metrics.Enabled && cfg.Endpoint != "" {
		exp, err := createMetricExporter(ctx, cfg)
		if err != nil {
			return fmt.Errorf("create metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
	}

	p.meterProvider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(p.meterProvider)
	p.meter = p.meterProvider.Meter(instrumentationName)

	return nil
}

func createTraceExporter(ctx context.Context, cfg config.OTELConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return otlptracegrpc.New(ctx, opts...)
}

func createMetricExporter(ctx context.Context, cfg config.OTELConfig) (sdkmetric.Exporter, error) {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	return otlpmetricgrpc.New(ctx, opts...)
}

func (p *Provider) initMetrics() error {
	var err error

	p.apiCalls, err = p.meter.Int64Counter(
		"ocitally_api_calls_total",
		metric.WithDescription("Provider API calls issued"),
	)
	if err != nil {
		return fmt.Errorf("create api_calls: %w", err)
	}

	p.records, err = p.meter.Int64Counter(
		"ocitally_records_total",
		metric.WithDescription("Report records collected"),
	)
	if err != nil {
		return fmt.Errorf("create records: %w", err)
	}

	p.uploadFailures, err = p.meter.Int64Counter(
		"ocitally_upload_failures_total",
		metric.WithDescription("Report uploads that failed after retries"),
	)
	if err != nil {
		return fmt.Errorf("create upload_failures: %w", err)
	}

	p.collectorDuration, err = p.meter.Float64Histogram(
		"ocitally_collector_duration_seconds",
		metric.WithDescription("Duration of collector sweeps"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create collector_duration: %w", err)
	}

	return nil
}

// Tracer returns the tracer.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName)
	}
	return p.tracer
}

// Meter returns the meter.
func (p *Provider) Meter() metric.Meter {
	return p.meter
}

// Registry returns the Prometheus registry backing the metric exporter.
func (p *Provider) Registry() *promclient.Registry {
	return p.registry
}

// StartSpan starts a new span.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordAPICall counts one provider call.
func (p *Provider) RecordAPICall(ctx context.Context, service, operation, region string) {
	if p == nil {
		return
	}
	p.apiCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("region", region),
	))
}

// RecordRecords counts the rows collected for a family.
func (p *Provider) RecordRecords(ctx context.Context, family string, count int) {
	if p == nil {
		return
	}
	p.records.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("family", family),
	))
}

// RecordUploadFailure counts a family whose upload failed.
func (p *Provider) RecordUploadFailure(ctx context.Context, family, sink string) {
	if p == nil {
		return
	}
	p.uploadFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("family", family),
		attribute.String("sink", sink),
	))
}

// RecordCollectorDuration records how long a collector swept.
func (p *Provider) RecordCollectorDuration(ctx context.Context, collector string, d time.Duration) {
	if p == nil {
		return
	}
	p.collectorDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("collector", collector),
	))
}

// Push sends the current metric values to a Prometheus Pushgateway.
func (p *Provider) Push(ctx context.Context, url, job string) error {
	if p == nil || url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(p.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

// Shutdown flushes and shuts down the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown tracer: %w", err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown meter: %w", err)
		}
	}
	return nil
}
