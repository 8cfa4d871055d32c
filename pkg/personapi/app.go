package personapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/internal/config"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/internal/health"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/internal/observe"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/logger"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store/memory"
	"github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store/sqlstore"
	surrealstore "github.com/surrealdb/surrealdb.go/contrib/personapi/pkg/store/surrealdb"
)

// App is the composition root: one store connection, the telemetry
// pipeline and the HTTP handler tree.
type App struct {
	config    *config.Config
	backend   store.Store
	store     store.Store
	readOnly  atomic.Bool
	log       zerolog.Logger
	logData   *logger.LogData
	telemetry *observe.Provider
	metrics   *observe.Metrics
}

type options struct {
	backend store.Store
	log     *zerolog.Logger
}

// Option customises New.
type Option func(*options)

// WithStore uses s instead of opening the configured store. The App takes
// ownership and closes it.
func WithStore(s store.Store) Option {
	return func(o *options) { o.backend = s }
}

// WithLogger uses l instead of building a logger from the config.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = &l }
}

// New builds an App from a validated config. The store is wrapped so that
// writes honour the read-only toggle and every operation is measured.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{config: cfg}
	a.readOnly.Store(cfg.Server.ReadOnly)

	if o.log != nil {
		a.log = *o.log
	} else {
		logData, err := logger.New().
			WithLevel(cfg.Log.Level).
			WithFormat(cfg.Log.Format).
			FromPath(cfg.Log.Path).
			Make()
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		a.logData = logData
		a.log = logData.Logger
	}

	telemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: Version})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to init telemetry: %w", err)
	}
	a.telemetry = telemetry
	if a.metrics, err = observe.NewMetrics(telemetry.MeterProvider); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	a.backend = o.backend
	if a.backend == nil {
		if a.backend, err = OpenStore(ctx, cfg.Store); err != nil {
			a.Close()
			return nil, err
		}
		a.log.Info().Str("driver", cfg.Store.Driver).Msg("connected to store")
	}

	a.store = store.NewInstrumentedStore(store.NewReadOnlyStore(a.backend, a.IsReadOnly), a.metrics)
	return a, nil
}

// OpenStore connects to the backend named by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverSQLite:
		s, err := sqlstore.Open(sqlstore.DialectSQLite, cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		return s, nil
	case config.DriverPostgres:
		s, err := sqlstore.Open(sqlstore.DialectPostgres, cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return s, nil
	case config.DriverSurrealDB:
		s, err := surrealstore.Open(ctx, surrealstore.Config{
			URL:       cfg.URI,
			Namespace: cfg.Namespace,
			Database:  cfg.Database,
			Username:  cfg.Username,
			Password:  cfg.Password,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// Handler returns the full HTTP surface: the person routes, health checks
// and /metrics, behind the observe middleware.
func (a *App) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(observe.Middleware(a.metrics, a.log))

	NewRouter(a.store, a.log).Register(r)
	health.New(a.log, health.Checker{Name: "store", Check: a.store.Ping}).Register(r)
	r.Handle("/metrics", a.telemetry.MetricsHandler).Methods(http.MethodGet)

	return r
}

// Store returns the decorated store the routes use.
func (a *App) Store() store.Store {
	return a.store
}

func (a *App) SetReadOnly(readOnly bool) {
	a.readOnly.Store(readOnly)
	a.log.Info().Bool("read_only", readOnly).Msg("read-only mode changed")
}

func (a *App) IsReadOnly() bool {
	return a.readOnly.Load()
}

// Close releases the store, flushes telemetry and closes the log file.
func (a *App) Close() error {
	var errs []error
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
	}
	if a.telemetry != nil {
		errs = append(errs, a.telemetry.Shutdown(context.Background()))
	}
	if a.logData != nil {
		errs = append(errs, a.logData.Close())
	}
	return errors.Join(errs...)
}
