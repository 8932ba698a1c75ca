package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anthozoa/anthozoa/internal/config"
	"github.com/anthozoa/anthozoa/internal/offline"
	"github.com/anthozoa/anthozoa/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sketch through the offline cache",
	Long: paragraph(fmt.Sprintf("\n%s the configured assets into a new cache generation, drop older generations, then answer requests from it. Navigations go to the network first; everything else is served from the cache first.",
		keyword("Install"))),
	Example: paragraph("anthozoa serve\nanthozoa serve --listen :8787 --origin https://example.com"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg.Offline)
	},
}

// newWorker builds a worker for cfg on top of storage.
func newWorker(cfg config.OfflineConfig, storage offline.Storage) (*offline.Worker, error) {
	return offline.NewWorker(storage, offline.Options{
		Prefix:            cfg.Prefix,
		Version:           cfg.Version,
		Origin:            cfg.Origin,
		Assets:            cfg.Assets,
		Client:            &http.Client{Timeout: cfg.Timeout},
		Concurrency:       cfg.Concurrency,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            log.Default().WithPrefix("offline"),
	})
}

// install runs the install step and reports failed assets on stderr.
func install(ctx context.Context, w *offline.Worker) (*offline.InstallReport, error) {
	report, err := w.Install(ctx)
	if err != nil {
		return report, err
	}
	for _, f := range report.Failed {
		fmt.Fprintln(os.Stderr, faint("  not cached: "+f.Error()))
	}
	return report, nil
}

func serve(ctx context.Context, cfg config.OfflineConfig) error {
	shutdownTracing, err := telemetry.Setup(ctx, "anthozoa")
	if err != nil {
		log.Warn("tracing disabled", "err", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("unable to flush traces", "err", err)
		}
	}()

	storage, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = storage.Close() }()

	w, err := newWorker(cfg, storage)
	if err != nil {
		return err
	}
	report, err := install(ctx, w)
	if err != nil {
		return fmt.Errorf("install failed: %w", err)
	}
	if _, err := w.Activate(ctx); err != nil {
		return fmt.Errorf("activate failed: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           offline.NewHandler(w, log.Default().WithPrefix("proxy")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	fmt.Printf("Serving %s from %s on http://%s (%d of %d assets cached)\n",
		keyword(cfg.Origin), keyword(w.CacheName()), cfg.Listen, len(report.Cached), len(w.Assets()))
	log.Info("serving", "listen", cfg.Listen, "origin", cfg.Origin, "cache", w.CacheName())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func init() {
	serveCmd.Flags().String("listen", config.DefaultListen, "address to listen on")
	serveCmd.Flags().String("origin", config.DefaultOrigin, "origin the sketch is served from")
	serveCmd.Flags().String("storage", config.StorageDisk, "cache backend: memory, disk or sqlite")
	_ = viper.BindPFlag("offline.listen", serveCmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("offline.origin", serveCmd.Flags().Lookup("origin"))
	_ = viper.BindPFlag("offline.storage", serveCmd.Flags().Lookup("storage"))
}
