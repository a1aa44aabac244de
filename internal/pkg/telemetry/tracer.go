package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used by the corridor pipeline.
const TracerName = "github.com/samirrijal/seacorridor"

// Span names.
const (
	SpanRun          = "corridor.run"
	SpanGroup        = "corridor.group"
	SpanResolveRoute = "corridor.resolve_route"
	SpanOverlaps     = "corridor.detect_overlaps"
)

// Attribute keys.
const (
	AttrRunID   = attribute.Key("corridor.run_id")
	AttrGroupID = attribute.Key("corridor.group_id")
	AttrWidthKm = attribute.Key("corridor.width_km")
)

// InitTracer installs a global OTLP/gRPC tracer provider. The returned
// function flushes and stops it.
func InitTracer(ctx context.Context, serviceName, endpoint string) (func(context.Context) error, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the pipeline tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
