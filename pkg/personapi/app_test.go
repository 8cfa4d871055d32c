package personapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/internal/config"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store/memory"
)

func newTestApp(t *testing.T) (*App, *memory.Store, *bytes.Buffer) {
	t.Helper()

	cfg := config.Default()
	cfg.Store.Driver = config.DriverMemory

	backend := memory.New()
	var logs bytes.Buffer
	app, err := New(context.Background(), cfg, WithStore(backend), WithLogger(zerolog.New(&logs)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return app, backend, &logs
}

func TestAppHealth(t *testing.T) {
	app, _, _ := newTestApp(t)
	h := app.Handler()

	rec := do(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"store":"ok"}}`, rec.Body.String())
}

func TestAppMetrics(t *testing.T) {
	app, _, _ := newTestApp(t)
	h := app.Handler()

	do(t, h, http.MethodGet, "/create-person")
	do(t, h, http.MethodGet, "/people-by-name/sami%20saafi")

	rec := do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "personapi_http_requests")
	assert.Contains(t, body, `route="/people-by-name/{name}"`)
	assert.Contains(t, body, `op="create"`)
}

func TestAppCorrelationID(t *testing.T) {
	app, _, _ := newTestApp(t)

	rec := do(t, app.Handler(), http.MethodGet, "/query-chain")
	assertJSON(t, rec)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestAppReadOnlyToggle(t *testing.T) {
	app, backend, logs := newTestApp(t)
	h := app.Handler()

	assert.False(t, app.IsReadOnly())
	app.SetReadOnly(true)
	assert.True(t, app.IsReadOnly())
	assert.Contains(t, logs.String(), "read-only mode changed")

	assertFailed(t, do(t, h, http.MethodPost, "/create-people"))
	assert.Equal(t, 0, backend.Len())

	app.SetReadOnly(false)
	assertJSON(t, do(t, h, http.MethodPost, "/create-people"))
	assert.Equal(t, 2, backend.Len())
}

func TestAppReadOnlyFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = config.DriverMemory
	cfg.Server.ReadOnly = true

	app, err := New(context.Background(), cfg, WithStore(memory.New()), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	defer app.Close()

	assert.True(t, app.IsReadOnly())
	assertFailed(t, do(t, app.Handler(), http.MethodGet, "/create-person"))
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := OpenStore(ctx, config.StoreConfig{Driver: config.DriverMemory})
		require.NoError(t, err)
		require.NoError(t, s.Ping(ctx))
		require.NoError(t, s.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "people.db")
		s, err := OpenStore(ctx, config.StoreConfig{Driver: config.DriverSQLite, URI: path})
		require.NoError(t, err)
		require.NoError(t, s.Ping(ctx))
		require.NoError(t, s.Close())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := OpenStore(ctx, config.StoreConfig{Driver: "mongodb"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown store driver "mongodb"`)
	})
}

func TestServeListener(t *testing.T) {
	app, _, logs := newTestApp(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.ServeListener(ctx, ln) }()

	url := fmt.Sprintf("http://%s/healthz", ln.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Contains(t, logs.String(), "shutting down server")
}

func TestHandlerUnknownRoute(t *testing.T) {
	app, _, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
