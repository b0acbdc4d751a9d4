package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/llenroc/Libra/internal/app"
	"github.com/llenroc/Libra/internal/domain"
	"github.com/llenroc/Libra/internal/infra/gemini"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	if err := bootstrap.SyncInstruments(); err != nil {
		slog.Error("❌ Instrument sync failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Wire the streaming core. Headless build: log sink, no outstanding
	// submissions of our own, so the pending snapshot is empty.
	sink := app.LogSink{}
	client := gemini.NewClient(bootstrap.Config)
	pending := func() []domain.PendingOrder { return nil }

	supervisor := app.NewSupervisor(bootstrap.Config, client, sink, sink, pending, bootstrap.Storage)
	if err := supervisor.Start(ctx); err != nil {
		slog.Error("❌ Supervisor start failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer supervisor.Stop()

	slog.InfoContext(ctx, "✨ Libra core operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
