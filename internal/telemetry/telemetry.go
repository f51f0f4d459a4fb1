package telemetry

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mansoorceksport/retailermedia/internal/config"
	"github.com/mansoorceksport/retailermedia/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	traceExportTimeout = 5 * time.Second
	metricInterval     = 30 * time.Second
)

// Provider owns the SDK providers installed as OTel globals
type Provider struct {
	tracers *sdktrace.TracerProvider
	meters  *sdkmetric.MeterProvider
}

// Initialize installs trace and metric export to cfg.Endpoint, an OTLP/HTTP
// base URL such as https://otlp.example.com/otlp. Signal paths are appended.
// A nil Provider is returned when telemetry is disabled.
func Initialize(ctx context.Context, cfg config.OTELConfig) (*Provider, error) {
	if !cfg.Enabled {
		logger.Infof("OpenTelemetry disabled")
		return nil, nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	headers := exporterHeaders(cfg)

	spans, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(signalURL(cfg.Endpoint, "traces")),
		otlptracehttp.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	metrics, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpointURL(signalURL(cfg.Endpoint, "metrics")),
		otlpmetrichttp.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	p := &Provider{
		tracers: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spans, sdktrace.WithBatchTimeout(traceExportTimeout)),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		),
		meters: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metrics, sdkmetric.WithInterval(metricInterval))),
			sdkmetric.WithResource(res),
		),
	}

	otel.SetTracerProvider(p.tracers)
	otel.SetMeterProvider(p.meters)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Infof("OpenTelemetry exporting %s to %s", cfg.ServiceName, cfg.Endpoint)
	return p, nil
}

// Shutdown flushes and stops both providers
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	logger.Infof("shutting down OpenTelemetry")

	var errs []error
	if err := p.tracers.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer provider: %w", err))
	}
	if err := p.meters.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider: %w", err))
	}
	return errors.Join(errs...)
}

func newResource(ctx context.Context, cfg config.OTELConfig) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
			attribute.String("service.namespace", "retailer-media"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// exporterHeaders adds Basic auth (instanceID:token) when credentials are configured
func exporterHeaders(cfg config.OTELConfig) map[string]string {
	if cfg.InstanceID == "" && cfg.Token == "" {
		return nil
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(cfg.InstanceID + ":" + cfg.Token))
	return map[string]string{"Authorization": "Basic " + credentials}
}

// signalURL appends the OTLP signal path to the base endpoint
func signalURL(endpoint, signal string) string {
	return strings.TrimRight(endpoint, "/") + "/v1/" + signal
}
