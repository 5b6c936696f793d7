package observability

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/odvcencio/wdrive/pkg/webdriver"
)

const (
	tracerName = "github.com/odvcencio/wdrive/pkg/webdriver"
)

// TracerProvider holds the OpenTelemetry tracer provider
type TracerProvider struct {
	provider *sdktrace.TracerProvider
}

// NewTracerProvider creates a provider exporting spans as JSON to w and
// installs it globally.
func NewTracerProvider(serviceName, version string, w io.Writer) (*TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(provider)

	return &TracerProvider{
		provider: provider,
	}, nil
}

// Shutdown flushes pending spans and stops the provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	return tp.provider.Shutdown(ctx)
}

// Tracer returns the wdrive tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a new span with the given name
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, spanName, opts...)
}

var (
	AttrCommand    = attribute.Key("webdriver.command")
	AttrMethod     = attribute.Key("http.request.method")
	AttrStatusCode = attribute.Key("http.response.status_code")
	AttrRedirects  = attribute.Key("webdriver.redirects")
	AttrErrorCode  = attribute.Key("webdriver.error")
	AttrSessionID  = attribute.Key("webdriver.session.id")
)

// Tracing wraps every command in a client span. It is a webdriver.Observer.
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing uses tracer, or the global wdrive tracer when nil.
func NewTracing(tracer trace.Tracer) *Tracing {
	if tracer == nil {
		tracer = Tracer()
	}
	return &Tracing{tracer: tracer}
}

func (t *Tracing) CommandStarted(ctx context.Context, command string) context.Context {
	ctx, _ = t.tracer.Start(ctx, "webdriver "+command,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(AttrCommand.String(command)),
	)
	return ctx
}

func (t *Tracing) CommandFinished(ctx context.Context, ev webdriver.CommandEvent) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		AttrMethod.String(ev.Method),
		AttrStatusCode.Int(ev.HTTPStatus),
		AttrRedirects.Int(ev.Redirects),
	)
	if ev.Err != nil {
		span.RecordError(ev.Err)
		span.SetAttributes(AttrErrorCode.String(outcome(ev.Err)))
		span.SetStatus(codes.Error, ev.Err.Error())
	}
	span.End()
}
