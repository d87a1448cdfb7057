package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	audioimpl "github.com/foxseedlab/tsuyaku/external/audio"
	configloader "github.com/foxseedlab/tsuyaku/external/config"
	"github.com/foxseedlab/tsuyaku/external/discord"
	"github.com/foxseedlab/tsuyaku/external/eventbus"
	"github.com/foxseedlab/tsuyaku/external/playback"
	repositoryimpl "github.com/foxseedlab/tsuyaku/external/repository"
	"github.com/foxseedlab/tsuyaku/external/speech"
	synthesisimpl "github.com/foxseedlab/tsuyaku/external/synthesis"
	"github.com/foxseedlab/tsuyaku/external/terminal"
	"github.com/foxseedlab/tsuyaku/external/translate"
	webhookimpl "github.com/foxseedlab/tsuyaku/external/webhook"
	"github.com/foxseedlab/tsuyaku/internal/bus"
	"github.com/foxseedlab/tsuyaku/internal/capture"
	"github.com/foxseedlab/tsuyaku/internal/config"
	discordpkg "github.com/foxseedlab/tsuyaku/internal/discord"
	"github.com/foxseedlab/tsuyaku/internal/logging"
	"github.com/foxseedlab/tsuyaku/internal/recognition"
	"github.com/foxseedlab/tsuyaku/internal/repository"
	"github.com/foxseedlab/tsuyaku/internal/session"
	"github.com/foxseedlab/tsuyaku/internal/telemetry"
	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"
)

const (
	discordConnectTimeout = 20 * time.Second
	shutdownTimeout       = 10 * time.Second
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	flush := initLogger(cfg)
	defer flush()
	slog.Info("startup: configuration loaded", cfg.LogValues()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg, tel.Metrics)

	if err := run(ctx, stop, cfg, injector, tel.Handler); err != nil {
		slog.Error("tsuyaku exited with error", "error", err)
	}
	closeResources(injector)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown failed", "error", err)
	}
	slog.Info("shutdown complete")
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) func() {
	logger, flush, err := logging.New(cfg)
	if err != nil {
		slog.Error("failed to build logger; keeping default", "error", err)
		return func() {}
	}
	slog.SetDefault(logger)
	return flush
}

func setupDI(cfg *config.Config, metrics *telemetry.Metrics) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, bus.New())
	do.ProvideValue(injector, metrics)
	repositoryimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	speech.RegisterDI(injector)
	translate.RegisterDI(injector)
	synthesisimpl.RegisterDI(injector)
	playback.RegisterDI(injector)
	eventbus.RegisterDI(injector)
	discord.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	terminal.RegisterDI(injector)
	capture.RegisterDI(injector)
	session.RegisterDI(injector)

	return injector
}

func run(ctx context.Context, quit context.CancelFunc, cfg *config.Config, injector do.Injector, metricsHandler http.Handler) error {
	manager, err := do.Invoke[*session.Manager](injector)
	if err != nil {
		return err
	}
	renderer := do.MustInvoke[*terminal.Renderer](injector)

	connectCtx, cancel := context.WithTimeout(ctx, discordConnectTimeout)
	err = manager.ConnectDiscord(connectCtx)
	cancel()
	if err != nil {
		slog.Error("discord connect failed; continuing without relay", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return manager.Run(gctx)
	})
	if cfg.EnableTextInput {
		console := terminal.NewConsole(os.Stdin, renderer, manager, quit)
		g.Go(func() error {
			return console.Run(gctx)
		})
	}
	if cfg.MetricsBind != "" && metricsHandler != nil {
		srv := newMetricsServer(cfg.MetricsBind, metricsHandler)
		g.Go(func() error {
			slog.Info("metrics server listening", "addr", cfg.MetricsBind)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}
	return g.Wait()
}

func newMetricsServer(addr string, handler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

func closeResources(injector do.Injector) {
	if dc, err := do.Invoke[discordpkg.Client](injector); err == nil {
		if err := dc.Close(); err != nil {
			slog.Warn("discord close failed", "error", err)
		}
	}
	if m, err := do.Invoke[bus.Mirror](injector); err == nil {
		if err := m.Close(); err != nil {
			slog.Warn("event mirror close failed", "error", err)
		}
	}
	if repo, err := do.Invoke[repository.Repository](injector); err == nil {
		if err := repo.Close(); err != nil {
			slog.Warn("archive close failed", "error", err)
		}
	}
	if engine, err := do.Invoke[recognition.Engine](injector); err == nil {
		if c, ok := engine.(io.Closer); ok {
			if err := c.Close(); err != nil {
				slog.Warn("speech client close failed", "error", err)
			}
		}
	}
}
