package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials/insecure"
)

// TracerOptions configures trace export for a run.
type TracerOptions struct {
	// ServiceVersion is stamped on the trace resource.
	ServiceVersion string

	// Endpoint is an OTLP/gRPC collector address (host:port). When
	// set, spans are exported there; otherwise they go to StdoutTo in
	// the stdout exporter's JSON form.
	Endpoint string

	// Insecure disables TLS on the OTLP connection.
	Insecure bool

	// StdoutTo receives spans when no endpoint is configured. Nil
	// disables export entirely.
	StdoutTo io.Writer
}

// Tracer wraps the OpenTelemetry tracer for phase spans.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracer creates a tracer for this run. Every run is traced fully;
// sampling makes no sense for a one-shot process.
func NewTracer(opts TracerOptions) (*Tracer, error) {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String("saltboot"),
			semconv.ServiceVersionKey.String(opts.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch {
	case opts.Endpoint != "":
		grpcOpts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(opts.Endpoint),
		}
		if opts.Insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
		}
		exporter, err = otlptracegrpc.New(context.Background(), grpcOpts...)
	case opts.StdoutTo != nil:
		exporter, err = stdouttrace.New(stdouttrace.WithWriter(opts.StdoutTo))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	if exporter != nil {
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(providerOpts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	return &Tracer{
		provider: provider,
		tracer:   provider.Tracer("saltboot"),
	}, nil
}

// StartRunSpan starts the root span for a bootstrap run.
func (t *Tracer) StartRunSpan(ctx context.Context, runID, distro, mode string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.distro", distro),
			attribute.String("run.mode", mode),
		),
	)
}

// StartPhaseSpan starts a span for one lifecycle phase.
func (t *Tracer) StartPhaseSpan(ctx context.Context, phase, handler string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "phase."+phase,
		trace.WithAttributes(
			attribute.String("phase", phase),
			attribute.String("handler", handler),
		),
	)
}

// RecordError records an error on a span and marks it failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordSuccess marks the span as successful.
func RecordSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
