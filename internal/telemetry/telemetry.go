package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "tsuyaku"

type Telemetry struct {
	Metrics  *Metrics
	Handler  http.Handler
	shutdown func(context.Context) error
}

// Setup installs global tracer and meter providers. Traces are exported only
// when an OTLP endpoint is configured; metrics are always served through the
// returned Prometheus handler.
func Setup(ctx context.Context, cfg *config.Config) (*Telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", cfg.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	var shutdowns []func(context.Context) error
	if endpoint := strings.TrimSpace(cfg.OTLPEndpoint); endpoint != "" {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		shutdowns = append(shutdowns, tp.Shutdown)
		slog.Info("tracing initialized", "exporter", "otlp", "endpoint", endpoint)
	}

	var handler http.Handler
	var mp *sdkmetric.MeterProvider
	promExporter, err := prometheus.New()
	if err != nil {
		slog.Warn("failed to initialize prometheus exporter", "error", err)
		mp = sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
	} else {
		mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(promExporter),
			sdkmetric.WithResource(res),
		)
		handler = promhttp.Handler()
	}
	otel.SetMeterProvider(mp)
	shutdowns = append(shutdowns, mp.Shutdown)

	metrics, err := NewMetrics(mp.Meter("github.com/foxseedlab/tsuyaku"))
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		Metrics: metrics,
		Handler: handler,
		shutdown: func(ctx context.Context) error {
			var errs []error
			for _, fn := range shutdowns {
				if err := fn(ctx); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}, nil
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.shutdown == nil {
		return nil
	}
	return t.shutdown(ctx)
}
