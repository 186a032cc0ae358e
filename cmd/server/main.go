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

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/adsdash/internal/config"
	"github.com/AngelCh415/adsdash/internal/dashboard"
	"github.com/AngelCh415/adsdash/internal/export"
	"github.com/AngelCh415/adsdash/internal/httpx"
	"github.com/AngelCh415/adsdash/internal/ingest"
	"github.com/AngelCh415/adsdash/internal/store"
	"github.com/AngelCh415/adsdash/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	m := telemetry.New("adsdash")
	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	st := store.NewMemoryStore()
	dash, err := dashboard.New(dashboard.OptionsFromConfig(cfg), cl, st, logger, m)
	if err != nil {
		logger.Error("dashboard init error", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer dash.Close()
	sink := export.NewSink(cl, cfg.SinkURL, cfg.SinkSecret)

	r := httpx.NewRouter(logger, dash, sink, m, cfg.RateLimit)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	// a failed fetch is reported through the dashboard state, not fatal
	g.Go(func() error {
		_ = dash.Init(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
