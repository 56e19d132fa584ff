package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// statusWriter wraps [http.ResponseWriter] to capture the status code.
type statusWriter struct {
	http.ResponseWriter

	statusCode int
}

// WriteHeader captures the status code before delegating to the wrapped writer.
func (sw *statusWriter) WriteHeader(code int) {
	if sw.statusCode == 0 {
		sw.statusCode = code
	}

	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(buf []byte) (int, error) {
	if sw.statusCode == 0 {
		sw.statusCode = http.StatusOK
	}

	return sw.ResponseWriter.Write(buf) //nolint:wrapcheck // transparent writer.
}

func (sw *statusWriter) status() int {
	if sw.statusCode == 0 {
		return http.StatusOK
	}

	return sw.statusCode
}

// HTTPMiddleware returns chi middleware that opens a server span per request
// and records RED metrics. Span names and the op attribute use the matched
// route pattern ("GET /scene/{id}") once routing has run. red may be nil.
func HTTPMiddleware(tracer trace.Tracer, red *REDMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
			start := time.Now()

			parentCtx := otel.GetTextMapPropagator().Extract(hr.Context(), propagation.HeaderCarrier(hr.Header))

			ctx, span := tracer.Start(parentCtx, hr.Method+" "+hr.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(hr.Method),
					attribute.String("http.target", hr.URL.Path),
				),
			)
			defer span.End()

			if red != nil {
				done := red.TrackInflight(ctx, hr.Method)
				defer done()
			}

			sw := &statusWriter{ResponseWriter: rw}
			next.ServeHTTP(sw, hr.WithContext(ctx))

			op := hr.Method + " " + routePattern(hr)
			span.SetName(op)
			span.SetAttributes(semconv.HTTPResponseStatusCode(sw.status()))

			status := StatusOK
			if sw.status() >= http.StatusInternalServerError {
				status = StatusError

				span.SetStatus(codes.Error, http.StatusText(sw.status()))
			}

			if red != nil {
				red.RecordRequest(ctx, op, status, time.Since(start))
			}
		})
	}
}

func routePattern(hr *http.Request) string {
	if rctx := chi.RouteContext(hr.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return hr.URL.Path
}
