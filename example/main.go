// Command example serves a small todo app rendered with Inertia.
//
// Run `npm run dev` for the Vite dev server, then:
//
//	go run ./example
//
// For a production build set FV_VITE_DEV_MODE=false after `npm run build`.
// Page constants in ./pages are generated with:
//
//	inertia generate --out pages/inertia_pages.go frontend/Pages
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pthm/inertia"
	"github.com/pthm/inertia/lib/config"
)

const addr = ":8080"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("inertia.toml")
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	opts := []inertia.Option{
		inertia.WithLogger(logger),
		inertia.WithMetrics(reg),
		inertia.WithSharedProps(inertia.Props{"appName": "Todos"}),
	}
	if cfg.FlashSecret == "" {
		opts = append(opts, inertia.WithFlashStore(inertia.NewMemoryFlashStore()))
	}

	app, assets, err := inertia.FromConfig(cfg, opts...)
	if err != nil {
		return err
	}

	if !assets.DevMode() {
		go func() {
			if err := assets.Watch(ctx); err != nil {
				logger.Warn("manifest watch stopped", "error", err)
			}
		}()
	}

	s := &server{
		app:    app,
		assets: assets,
		store:  NewStore(),
		gather: reg,
		logger: logger,
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", "http://localhost"+addr, "dev", assets.DevMode())
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
