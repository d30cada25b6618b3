package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/jobchanges/internal/config"
	"github.com/okian/jobchanges/pkg/logger"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// rootOptions are flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "jobchanges",
		Short: "Job changes analytics",
		Long: `Rank companies and job functions by departures and build the weekly
arrivals-vs-departures series from a job changes CSV.

Available subcommands:
  serve    - Serve the reports over HTTP and reload on file changes
  report   - Print the reports once
  generate - Write a synthetic dataset in the source schema`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (overrides "+config.EnvFile+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newServeCmd(opts), newReportCmd(opts), newGenerateCmd(opts))
	return root
}

// loadConfig loads configuration (defaults -> optional file -> env) and
// applies the shared flags on top.
func (o *rootOptions) loadConfig(ctx context.Context) (*config.Config, error) {
	if o.configPath != "" {
		if err := os.Setenv(config.EnvFile, o.configPath); err != nil {
			return nil, fmt.Errorf("set %s: %w", config.EnvFile, err)
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	return cfg, nil
}

// initLogging initializes the global logger on w and applies the
// configured level, falling back to info on invalid input.
func initLogging(ctx context.Context, w io.Writer, cfg *config.Config) (logger.Logger, error) {
	if err := logger.InitWithWriter(w, logger.Format(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString(config.DefaultLogLevel)
	}
	return log, nil
}
