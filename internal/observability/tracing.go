// Package observability provides OpenTelemetry tracing for the pipeline.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/deckqa/internal/core/domain"
)

// TracerName is the instrumentation scope of every deckqa span.
const TracerName = "github.com/custodia-labs/deckqa"

// TracerProvider wraps the OpenTelemetry tracer provider.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing configures OTLP export. An empty endpoint leaves the global
// no-op provider in place.
func InitTracing(ctx context.Context, cfg domain.TracingSettings, version string) (*TracerProvider, error) {
	if cfg.Endpoint == "" {
		return &TracerProvider{tracer: otel.Tracer(TracerName)}, nil
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "deckqa"
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{provider: provider, tracer: provider.Tracer(TracerName)}, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Shutdown flushes pending spans.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider != nil {
		return tp.provider.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the underlying tracer.
func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// StartIngestSpan starts a span for one file ingestion.
func StartIngestSpan(ctx context.Context, sessionID, fileName string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "ingest",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("deckqa.session", sessionID),
			attribute.String("deckqa.file", fileName),
		),
	)
}

// RecordIngestResult records extraction and indexing counts.
func RecordIngestResult(span trace.Span, units, failed, chunks int) {
	span.SetAttributes(
		attribute.Int("ingest.units", units),
		attribute.Int("ingest.failed_units", failed),
		attribute.Int("ingest.chunks", chunks),
	)
}

// StartAskSpan starts a span for one question.
func StartAskSpan(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "ask",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("deckqa.session", sessionID)),
	)
}

// RecordRetrieval records how chunks were selected.
func RecordRetrieval(span trace.Span, r domain.Retrieval) {
	span.SetAttributes(
		attribute.String("retrieval.mode", string(r.Mode)),
		attribute.Int("retrieval.chunks", len(r.Chunks)),
	)
	if r.Fallback != nil {
		span.SetAttributes(attribute.String("retrieval.fallback", string(r.Fallback.Kind)))
	}
}

// StartStageSpan starts a child span for a pipeline stage such as
// "extract" or "index".
func StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, stage, trace.WithSpanKind(trace.SpanKindInternal))
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
