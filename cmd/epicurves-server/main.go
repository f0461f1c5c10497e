// Package main is the entry point for the epicurves simulation server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MRamiBalles/epicurves/internal/engine"
	"github.com/MRamiBalles/epicurves/internal/events"
	"github.com/MRamiBalles/epicurves/internal/infra/storage"
	"github.com/MRamiBalles/epicurves/internal/network"
	"github.com/MRamiBalles/epicurves/internal/platform/config"
	"github.com/MRamiBalles/epicurves/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults apply when empty)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.NewLogger().Error("Failed to load configuration", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	appLogger := logger.New(os.Stderr, cfg.Server.LogLevel)
	opts := cfg.Server.Optimization()

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog()

	appLogger.Info("Bootstrapping Engine...", "mode", cfg.Scenario.Mode, "population", cfg.Scenario.Population)
	eng, err := engine.New(cfg.Scenario, engine.WithLogger(appLogger), engine.WithEventLog(eventLog))
	if err != nil {
		appLogger.Error("Failed to build engine", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(appLogger, opts)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	sinks := []engine.TickSink{hub}

	var repo storage.HistoryRepository
	if cfg.Server.SQLitePath != "" {
		appLogger.Info("Initializing SQLite history store", "path", cfg.Server.SQLitePath)
		db, err := storage.InitSQLite(cfg.Server.SQLitePath)
		if err != nil {
			appLogger.Error("Failed to initialize SQLite", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		storage.ConfigurePool(db, opts.DBMaxOpenConns, opts.DBMaxIdleConns)

		sqliteRepo := storage.NewSQLiteHistoryRepository(db)
		sink, err := storage.NewHistorySink(ctx, sqliteRepo, cfg.Scenario, nil)
		if err != nil {
			appLogger.Error("Failed to register run", "err", err)
			os.Exit(1)
		}
		appLogger.Info("Recording run", "run", sink.RunID())
		repo = sqliteRepo
		sinks = append(sinks, sink)
	}

	runner := engine.NewRunner(eng, appLogger, cfg.Server.TickInterval, cfg.Run.Ticks, sinks...)

	mux := http.NewServeMux()
	network.NewAPIHandler(runner, repo, appLogger).RegisterRoutes(mux, hub)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP API & WS Server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed", "err", err)
			cancel()
		}
	}()

	// The run ends on its own; the server stays up so the results can be inspected.
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		res, err := runner.Start(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error("Run failed", "err", err)
			return
		}
		appLogger.Info("Run complete", "ticks", res.Ticks, "stopped_early", res.StoppedEarly)
	}()

	appLogger.Info("Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down...")
	runner.Stop()
	cancel()
	<-runDone // lets the history sink record how the run ended

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP shutdown failed", "err", err)
	}
}
