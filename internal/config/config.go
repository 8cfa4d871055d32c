// Package config defines the personapi configuration and its sources.
//
// Values are layered: [Default], then an optional YAML file ([Load]), then
// environment variables ([ApplyEnv]), then command-line flags (applied by
// the caller). [Validate] runs once on the final result.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory    = "memory"
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverSurrealDB = "surrealdb"
)

// Drivers lists the accepted store drivers.
var Drivers = []string{DriverSurrealDB, DriverPostgres, DriverSQLite, DriverMemory}

// Config is the root configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// ListenAddr is the TCP address to serve on, e.g. ":3000".
	ListenAddr string `yaml:"listen_addr"`

	// ReadOnly rejects every write operation with a 500.
	ReadOnly bool `yaml:"read_only"`
}

// StoreConfig selects and configures the store backend.
type StoreConfig struct {
	// Driver is one of [Drivers].
	Driver string `yaml:"driver"`

	// URI is the connection string: a ws:// or wss:// endpoint for
	// surrealdb, a DSN for postgres, a file path (or ":memory:") for sqlite.
	// Unused by the memory driver.
	URI string `yaml:"uri"`

	// Namespace, Database, Username and Password apply to surrealdb only.
	Namespace string `yaml:"namespace"`
	Database  string `yaml:"database"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Path, when set, sends logs to a file instead of stderr.
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":3000",
		},
		Store: StoreConfig{
			Driver:    DriverSurrealDB,
			Namespace: "personapi",
			Database:  "personapi",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the YAML file at path on top of [Default].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r on top of [Default]. Unknown keys are
// an error. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with the environment variables that are set.
// PERSONAPI_STORE_URI is the only store URI it reads; the driver specific
// variables are left to [ResolveURI] once the driver is final.
func ApplyEnv(cfg *Config) error {
	setString(&cfg.Server.ListenAddr, "PERSONAPI_LISTEN_ADDR")
	setString(&cfg.Store.Driver, "PERSONAPI_STORE_DRIVER")
	setString(&cfg.Store.URI, "PERSONAPI_STORE_URI")
	setString(&cfg.Store.Namespace, "SURREALDB_NS")
	setString(&cfg.Store.Database, "SURREALDB_DB")
	setString(&cfg.Store.Username, "SURREALDB_USER")
	setString(&cfg.Store.Password, "SURREALDB_PASS")
	setString(&cfg.Log.Level, "PERSONAPI_LOG_LEVEL")
	setString(&cfg.Log.Format, "PERSONAPI_LOG_FORMAT")

	if v, ok := os.LookupEnv("PERSONAPI_READ_ONLY"); ok && v != "" {
		readOnly, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: PERSONAPI_READ_ONLY: %w", err)
		}
		cfg.Server.ReadOnly = readOnly
	}
	return nil
}

// driverURIEnv names the variable that carries the store URI for a driver.
var driverURIEnv = map[string]string{
	DriverSurrealDB: "SURREALDB_URL",
	DriverPostgres:  "POSTGRES_DSN",
}

// ResolveURI fills cfg.Store.URI from the variable of the configured
// driver: SURREALDB_URL for surrealdb, POSTGRES_DSN for postgres. Call it
// after the driver is final. It does nothing when PERSONAPI_STORE_URI is
// set, since that wins over the driver specific variables.
func ResolveURI(cfg *Config) {
	if v, ok := os.LookupEnv("PERSONAPI_STORE_URI"); ok && v != "" {
		return
	}
	if key, ok := driverURIEnv[cfg.Store.Driver]; ok {
		setString(&cfg.Store.URI, key)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks that cfg is usable. It returns every problem found,
// joined.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}

	if !slices.Contains(Drivers, cfg.Store.Driver) {
		errs = append(errs, fmt.Errorf("store.driver %q is invalid; valid values: %v", cfg.Store.Driver, Drivers))
	} else if cfg.Store.Driver != DriverMemory && cfg.Store.URI == "" {
		errs = append(errs, fmt.Errorf("store.uri is required for driver %q", cfg.Store.Driver))
	}
	if cfg.Store.Driver == DriverSurrealDB {
		if cfg.Store.Namespace == "" {
			errs = append(errs, errors.New("store.namespace is required for surrealdb"))
		}
		if cfg.Store.Database == "" {
			errs = append(errs, errors.New("store.database is required for surrealdb"))
		}
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil || cfg.Log.Level == "" {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: json, console", cfg.Log.Format))
	}

	return errors.Join(errs...)
}
