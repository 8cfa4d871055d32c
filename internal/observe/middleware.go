package observe

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// statusRecorder captures the status code written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// routeOf returns the matched gorilla/mux path template, so that
// /person-by-id/{personId} is one metric series and not one per id. It
// falls back to the raw path outside a mux route.
func routeOf(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return r.URL.Path
}

// Middleware returns a mux middleware that:
//
//  1. Extracts W3C Trace Context from the request (or starts a new trace).
//  2. Starts a server span for the request.
//  3. Sets the X-Correlation-ID response header from the trace id.
//  4. Records duration and count to [Metrics].
//  5. Logs request completion to log.
//
// Installed with Router.Use, the route template is known and used as the
// span name and metric attribute.
func Middleware(m *Metrics, log zerolog.Logger) mux.MiddlewareFunc {
	prop := propagation.TraceContext{}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := routeOf(r)

			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := StartSpan(ctx, "HTTP "+r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.URLPath(r.URL.Path),
					semconv.HTTPRoute(route),
				),
			)
			defer span.End()

			cid := CorrelationID(ctx)
			if cid != "" {
				w.Header().Set("X-Correlation-ID", cid)
			}
			prop.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			r = r.WithContext(ctx)
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			attrs := metric.WithAttributes(
				attribute.String("method", r.Method),
				attribute.String("route", route),
				attribute.String("status", strconv.Itoa(rec.statusCode)),
			)
			m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
			m.HTTPRequests.Add(ctx, 1, attrs)

			span.SetAttributes(semconv.HTTPResponseStatusCode(rec.statusCode))

			ev := log.Info()
			if rec.statusCode >= http.StatusInternalServerError {
				ev = log.Warn()
			}
			ev.Str("trace_id", cid).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.statusCode).
				Dur("duration", duration).
				Msg("request completed")
		})
	}
}
