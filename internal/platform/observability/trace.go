package observability

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"finitefield.org/vpnguide-web/internal/platform/config"
	"finitefield.org/vpnguide-web/internal/platform/requestctx"
)

const instrumentationName = "finitefield.org/vpnguide-web/internal/platform/observability"

var tracer = otel.Tracer(instrumentationName)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// SetupTracing installs the global tracer provider selected by cfg. With tracing disabled the
// global no-op provider stays in place and the returned shutdown is a no-op.
func SetupTracing(cfg config.TelemetryConfig, serviceName string) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	switch cfg.Tracing {
	case "", config.TracingNone:
		return func(context.Context) error { return nil }, nil
	case config.TracingStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
		if err != nil {
			return nil, fmt.Errorf("observability: stdout exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		)
		otel.SetTracerProvider(tp)
		return tp.Shutdown, nil
	default:
		return nil, fmt.Errorf("observability: unknown tracing exporter %q", cfg.Tracing)
	}
}

// TraceMiddleware extracts W3C trace headers, starts a server span and stores the trace ids on the request context.
func TraceMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(ctx, r.Method+" "+SanitizeRoute(r.URL.Path), trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()
			span.SetAttributes(
				attribute.String("http.request.method", SanitizeMethod(r.Method)),
				attribute.String("url.path", SanitizeRoute(r.URL.Path)),
			)

			spanCtx := span.SpanContext()
			if spanCtx.IsValid() {
				ctx = requestctx.WithTrace(ctx, requestctx.TraceInfo{
					TraceID: spanCtx.TraceID().String(),
					SpanID:  spanCtx.SpanID().String(),
					Sampled: spanCtx.IsSampled(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Tracer returns a named tracer from the global provider for domain packages.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
