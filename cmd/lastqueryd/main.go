package main

import (
	"context"
	"fmt"
	"io"
	"os"

	cmdutil "github.com/leg100/lastquery/cmd"
	"github.com/leg100/lastquery/internal"
	"github.com/leg100/lastquery/internal/daemon"
	"github.com/leg100/lastquery/internal/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	// Configure ^C to terminate program
	ctx, cancel := cmdutil.CatchCtrlC(context.Background())
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		cmdutil.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg := daemon.NewConfig()

	cmd := &cobra.Command{
		Use:           "lastqueryd",
		Short:         "lastquery daemon",
		Long:          "lastqueryd keeps the latest query submitted by a user and serves it over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       internal.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logr.New(&cfg.LogConfig)
			if err != nil {
				return err
			}

			d, err := daemon.New(cmd.Context(), logger, cfg)
			if err != nil {
				return err
			}
			// block until ^C received
			return d.Start(cmd.Context(), make(chan struct{}))
		},
	}
	// cobra falls back to os.Args when given nil
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(out)

	addFlags(cmd.Flags(), &cfg)

	if err := cmdutil.SetFlagsFromEnvVariables(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to populate config from environment vars: %w", err)
	}

	return cmd.ExecuteContext(ctx)
}

func addFlags(flags *pflag.FlagSet, cfg *daemon.Config) {
	flags.StringVar(&cfg.Address, "address", cfg.Address, "Listening address")
	flags.Var(&cfg.Backend, "backend", "Store for the latest query: memory, cache or postgres. Only postgres survives a restart.")
	flags.StringVar(&cfg.Database, "database", "", "Postgres connection string. Required for the postgres backend.")
	flags.StringVar(&cfg.Key, "key", cfg.Key, "Key under which the latest query is stored.")

	flags.IntVar(&cfg.CacheConfig.Size, "cache-size", 0, "Maximum cache size in MB for the cache backend. 0 means unlimited size.")
	flags.DurationVar(&cfg.CacheConfig.TTL, "cache-expiry", cfg.CacheConfig.TTL, "How long the cache backend keeps the latest query.")

	flags.BoolVar(&cfg.SSL, "ssl", false, "Toggle SSL")
	flags.StringVar(&cfg.CertFile, "cert-file", "", "Path to SSL certificate (required if enabling SSL)")
	flags.StringVar(&cfg.KeyFile, "key-file", "", "Path to SSL key (required if enabling SSL)")
	flags.BoolVar(&cfg.EnableRequestLogging, "log-http-requests", false, "Log HTTP requests")

	logr.LoadConfigFromFlags(flags, &cfg.LogConfig)
}
