// Package tracing provides OpenTelemetry and Langfuse implementations
// of the tracer interface the guardrails engine accepts.
package tracing

import (
	"context"
	"fmt"

	"github.com/run-bigpig/llm-guardrails/pkg/interfaces"
	"github.com/run-bigpig/llm-guardrails/pkg/multitenancy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// OTelTracer implements interfaces.Tracer using OpenTelemetry
type OTelTracer struct {
	tracer      trace.Tracer
	enabled     bool
	serviceName string
}

// OTelConfig contains configuration for OpenTelemetry
type OTelConfig struct {
	// Enabled determines whether OpenTelemetry tracing is enabled
	Enabled bool

	// ServiceName is the name of the service
	ServiceName string

	// CollectorEndpoint is the endpoint of the OpenTelemetry collector
	CollectorEndpoint string
}

// NewOTelTracer creates a new OpenTelemetry tracer exporting over OTLP gRPC
func NewOTelTracer(config OTelConfig) (*OTelTracer, error) {
	if !config.Enabled {
		return &OTelTracer{
			enabled: false,
		}, nil
	}

	ctx := context.Background()
	exporter, err := otlptrace.New(
		ctx,
		otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(config.CollectorEndpoint),
			otlptracegrpc.WithInsecure(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &OTelTracer{
		tracer:      tp.Tracer(config.ServiceName),
		enabled:     true,
		serviceName: config.ServiceName,
	}, nil
}

// StartSpan starts a new span. Disabled tracers return a no-op span so
// the engine can call through unconditionally.
func (t *OTelTracer) StartSpan(ctx context.Context, name string) (context.Context, interfaces.Span) {
	if !t.enabled {
		return ctx, noopSpan{}
	}

	var attrs []attribute.KeyValue
	if orgID, err := multitenancy.GetOrgID(ctx); err == nil {
		attrs = append(attrs, attribute.String("org_id", orgID))
	}

	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &otelSpan{span: span}
}

// otelSpan adapts an OpenTelemetry span to interfaces.Span
type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() {
	s.span.End()
}

func (s *otelSpan) AddEvent(name string, attributes map[string]interface{}) {
	s.span.AddEvent(name, trace.WithAttributes(toAttributes(attributes)...))
}

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	s.span.SetAttributes(toAttributes(map[string]interface{}{key: value})...)
}

func toAttributes(attributes map[string]interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch value := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, value))
		case bool:
			attrs = append(attrs, attribute.Bool(k, value))
		case int:
			attrs = append(attrs, attribute.Int(k, value))
		case int64:
			attrs = append(attrs, attribute.Int64(k, value))
		case float64:
			attrs = append(attrs, attribute.Float64(k, value))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", value)))
		}
	}
	return attrs
}

type noopSpan struct{}

func (noopSpan) End() {}

func (noopSpan) AddEvent(name string, attributes map[string]interface{}) {}

func (noopSpan) SetAttribute(key string, value interface{}) {}
