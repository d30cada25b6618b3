package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/jobchanges/internal/adapters/http/api"
	"github.com/okian/jobchanges/internal/adapters/http/swagger"
	"github.com/okian/jobchanges/internal/adapters/watcher"
	service "github.com/okian/jobchanges/internal/app"
	"github.com/okian/jobchanges/internal/config"
	"github.com/okian/jobchanges/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

type serveOptions struct {
	*rootOptions
	addr     string
	dataPath string
	noWatch  bool
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reports over HTTP",
		Long: `Load the data file, serve rankings, the weekly series and stats over
HTTP, and reload the snapshot whenever the file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Addr = opts.addr
			}
			if opts.dataPath != "" {
				cfg.DataPath = opts.dataPath
			}
			if opts.noWatch {
				cfg.WatchData = false
			}
			log, err := initLogging(cmd.Context(), os.Stdout, cfg)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address (default "+config.DefaultAddr+")")
	cmd.Flags().StringVar(&opts.dataPath, "data", "", "CSV data file")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "do not reload when the data file changes")
	return cmd
}

// newHandler registers the docs and the business API on a new mux.
func newHandler(ctx context.Context, svc api.Dependencies) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return mux
}

func serve(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	defer func() { _ = logger.Sync() }()

	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithDataPath(cfg.DataPath),
		service.WithDefaults(cfg.TopN, cfg.TargetYear),
		service.WithMaxTopN(cfg.MaxTopN),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})
	if cfg.WatchData {
		g.Go(func() error {
			return watch(gctx, cfg, svc, log)
		})
	}

	err := g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

// watch reloads the service when the data file changes. A file whose
// directory cannot be watched disables reloads without failing the server.
func watch(ctx context.Context, cfg *config.Config, sink watcher.Sink, log logger.Logger) error {
	w, err := watcher.New(cfg.DataPath, sink,
		watcher.WithDebounce(cfg.ReloadDebounce()),
		watcher.WithLogger(log.Named("watcher")),
	)
	if err != nil {
		log.Warn(ctx, "file watching disabled", logger.Error(err))
		return nil
	}
	if err := w.Run(ctx); err != nil {
		w.Stop()
		log.Warn(ctx, "file watching disabled", logger.Error(err))
	}
	return nil
}
