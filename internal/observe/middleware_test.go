package observe

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// testSetup creates metrics, tracing and a captured log for middleware
// tests.
func testSetup(t *testing.T) (*Metrics, *sdkmetric.ManualReader, *tracetest.InMemoryExporter, *bytes.Buffer) {
	t.Helper()

	m, reader := newTestMetrics(t)

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	origTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(origTP) })

	return m, reader, exp, &bytes.Buffer{}
}

// routed wraps h in a mux router with the middleware installed, the way
// the app mounts it.
func routed(m *Metrics, log *bytes.Buffer, tmpl string, h http.HandlerFunc) http.Handler {
	r := mux.NewRouter()
	r.Use(Middleware(m, zerolog.New(log)))
	r.HandleFunc(tmpl, h)
	return r
}

func TestMiddleware_SetsCorrelationID(t *testing.T) {
	m, _, _, log := testSetup(t)

	var capturedCID string
	handler := routed(m, log, "/test", func(w http.ResponseWriter, r *http.Request) {
		capturedCID = CorrelationID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Len(t, capturedCID, 32)
	assert.Equal(t, capturedCID, rec.Header().Get("X-Correlation-ID"))
}

func TestMiddleware_SpanUsesRouteTemplate(t *testing.T) {
	m, _, exp, log := testSetup(t)

	handler := routed(m, log, "/person-by-id/{personId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/person-by-id/abc", nil))

	spans := exp.GetSpans()
	require.NotEmpty(t, spans, "middleware did not create a span")
	assert.Equal(t, "HTTP GET /person-by-id/{personId}", spans[0].Name)
}

func TestMiddleware_RecordsMetrics(t *testing.T) {
	m, reader, _, log := testSetup(t)

	handler := routed(m, log, "/people-by-name/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	for _, name := range []string{"Alice", "Bob"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/people-by-name/"+name, nil))
	}

	rm := collect(t, reader)

	met := findMetric(rm, "personapi.http.request.duration")
	require.NotNil(t, met, "duration metric not found")
	hist, ok := met.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "metric is not a histogram")
	// both names fold into one series
	require.Len(t, hist.DataPoints, 1)
	dp := hist.DataPoints[0]
	assert.Equal(t, uint64(2), dp.Count)
	assert.Equal(t, "/people-by-name/{name}", attrValue(dp.Attributes, "route"))
	assert.Equal(t, "200", attrValue(dp.Attributes, "status"))

	counter := findMetric(rm, "personapi.http.requests")
	require.NotNil(t, counter, "request counter not found")
	sum, ok := counter.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func TestMiddleware_CapturesStatusCode(t *testing.T) {
	m, _, exp, log := testSetup(t)

	handler := routed(m, log, "/fail", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "An error occurred", http.StatusInternalServerError)
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	spans := exp.GetSpans()
	require.NotEmpty(t, spans, "no spans recorded")
	found := false
	for _, a := range spans[0].Attributes {
		if string(a.Key) == "http.response.status_code" && a.Value.AsInt64() == 500 {
			found = true
		}
	}
	assert.True(t, found, "span missing http.response.status_code attribute")

	assert.Contains(t, log.String(), `"level":"warn"`)
	assert.Contains(t, log.String(), `"status":500`)
}

func TestMiddleware_PropagatesW3CTraceContext(t *testing.T) {
	m, _, _, log := testSetup(t)

	var capturedCID string
	handler := routed(m, log, "/propagate", func(w http.ResponseWriter, r *http.Request) {
		capturedCID = CorrelationID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/propagate", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	const want = "4bf92f3577b34da6a3ce929d0e0e4736"
	assert.Equal(t, want, capturedCID)
	assert.Equal(t, want, rec.Header().Get("X-Correlation-ID"))
	assert.Contains(t, log.String(), `"trace_id":"`+want+`"`)
}

func TestRouteOf_FallsBackToPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/unrouted/path", nil)
	assert.Equal(t, "/unrouted/path", routeOf(req))
}
