package personapi

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/surrealdb/surrealdb.go/contrib/personapi/internal/config"
)

const pingTimeout = 5 * time.Second

// RootOptions holds the flags shared by every command. A flag only
// overrides the config file and environment when it is given explicitly.
type RootOptions struct {
	ConfigPath string
	ListenAddr string
	Driver     string
	StoreURI   string
	ReadOnly   bool
	LogLevel   string
	LogFormat  string
}

// NewRootCommand creates the personapi command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "personapi",
		Short:         "HTTP CRUD service over a person collection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	pf.StringVar(&opts.ListenAddr, "listen", "", "address to serve HTTP on (default :3000)")
	pf.StringVar(&opts.Driver, "driver", "", "store driver: surrealdb, postgres, sqlite or memory")
	pf.StringVar(&opts.StoreURI, "store-uri", "", "store connection string")
	pf.BoolVar(&opts.ReadOnly, "read-only", false, "reject every write")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.LogFormat, "log-format", "", "log format: json or console")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// LoadConfig layers defaults, the config file, the environment and the
// flags set on cmd, then validates the result. SURREALDB_URL and
// POSTGRES_DSN are matched against the driver after flags are applied.
func LoadConfig(cmd *cobra.Command, opts *RootOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Server.ListenAddr = opts.ListenAddr
	}
	if flags.Changed("driver") {
		cfg.Store.Driver = opts.Driver
	}
	if flags.Changed("store-uri") {
		cfg.Store.URI = opts.StoreURI
	}
	if flags.Changed("read-only") {
		cfg.Server.ReadOnly = opts.ReadOnly
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = opts.LogFormat
	}
	if !flags.Changed("store-uri") {
		config.ResolveURI(cfg)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the person API",
		Long: `Serve the person API until interrupted.

The store connection is opened once at start-up; a missing or unreachable
store is fatal. SIGINT or SIGTERM trigger a graceful shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cmd, opts)
			if err != nil {
				return err
			}

			app, err := New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}
			defer app.Close()

			if err := app.Serve(cmd.Context()); err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		},
	}
}

// NewPingCommand creates the ping command.
func NewPingCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured store is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cmd, opts)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
			defer cancel()

			s, err := OpenStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Ping(ctx); err != nil {
				return fmt.Errorf("ping %s: %w", cfg.Store.Driver, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", cfg.Store.Driver)
			return nil
		},
	}
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "personapi %s\n", Version)
		},
	}
}
