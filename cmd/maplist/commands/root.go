// Package commands implements the maplist operator CLI.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/maplist-import/internal/adapter/web"
	"github.com/couchcryptid/maplist-import/internal/config"
	"github.com/couchcryptid/maplist-import/internal/observability"
	"github.com/couchcryptid/maplist-import/internal/pipeline"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "maplist",
	Short:        "maplist parses shared map lists and imports them into collections.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level.")
}

// ExecuteContext runs the CLI and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every subcommand needs: configuration, a logger, and metrics.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return &env{
		cfg:     cfg,
		logger:  observability.NewLogger(level, "tint"),
		metrics: observability.NewMetrics(),
		clock:   clockwork.NewRealClock(),
	}, nil
}

func (e *env) newParser() *pipeline.ListParser {
	client := web.NewClient(web.ClientOptions{
		Timeout:   e.cfg.FetchTimeout,
		UserAgent: e.cfg.FetchUserAgent,
		Bypass:    e.cfg.FetchBypass,
	})
	resolver := web.NewResolver(client, e.logger)
	fetcher := web.NewFetcher(client, e.cfg.FetchMaxBytes, e.logger)
	return pipeline.NewListParser(resolver, fetcher, nil, e.logger, e.metrics)
}
