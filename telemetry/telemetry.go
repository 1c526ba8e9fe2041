// Package telemetry wires the process into OpenTelemetry. When an OTLP
// endpoint is configured through the standard OTEL_EXPORTER_OTLP_ENDPOINT
// environment variable, logs bridge from slog over gRPC and metric/trace
// providers export the server's counters and spans. Without an endpoint the
// process gets a plain text slog handler and the global no-op providers.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Telemetry struct {
	Logger *slog.Logger

	shutdownFuncs []func(context.Context) error
}

func Setup(ctx context.Context, serviceName string) (*Telemetry, error) {
	tel := &Telemetry{}

	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		tel.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		return tel, nil
	}

	res, err := resource.Merge(resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, err
	}

	logExporter, err := otlploggrpc.New(ctx)
	if err != nil {
		return nil, err
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(loggerProvider)
	tel.shutdownFuncs = append(tel.shutdownFuncs, loggerProvider.Shutdown)
	tel.Logger = otelslog.NewLogger(serviceName, otelslog.WithLoggerProvider(loggerProvider))

	metricExporter, err := otlpmetricgrpc.New(ctx)
	if err != nil {
		return nil, err
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)
	tel.shutdownFuncs = append(tel.shutdownFuncs, meterProvider.Shutdown)

	traceExporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tel.shutdownFuncs = append(tel.shutdownFuncs, tracerProvider.Shutdown)

	return tel, nil
}

// Shutdown flushes and stops every provider that Setup started.
func (tel *Telemetry) Shutdown(ctx context.Context) error {
	var err error
	for _, shutdown := range tel.shutdownFuncs {
		err = errors.Join(err, shutdown(ctx))
	}
	tel.shutdownFuncs = nil
	return err
}
