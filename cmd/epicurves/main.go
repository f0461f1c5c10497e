// Package main runs one simulation headless and prints its epidemic curve.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MRamiBalles/epicurves/internal/domain/scenario"
	"github.com/MRamiBalles/epicurves/internal/engine"
	"github.com/MRamiBalles/epicurves/internal/infra/storage"
	"github.com/MRamiBalles/epicurves/internal/platform/config"
	"github.com/MRamiBalles/epicurves/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	mode := flag.String("mode", "", "preset to start from when no config is given: grid or network")
	ticks := flag.Int("ticks", 0, "number of ticks (overrides run.ticks)")
	seed := flag.Uint64("seed", 0, "random seed (overrides scenario.seed)")
	dbPath := flag.String("db", "", "SQLite file to record the run in")
	noEarlyStop := flag.Bool("no-early-stop", false, "keep running after the last infected agent")
	asJSON := flag.Bool("json", false, "print the history table as JSON instead of text")
	logLevel := flag.String("log-level", "warn", "debug, info, warn or error")
	flag.Parse()

	appLogger := logger.New(os.Stderr, *logLevel)

	cfg, err := loadConfig(*configPath, *mode)
	if err != nil {
		appLogger.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ticks":
			cfg.Run.Ticks = *ticks
		case "seed":
			cfg.Scenario.Seed = *seed
		}
	})
	if *noEarlyStop {
		cfg.Scenario.EarlyStop = false
	}
	if err := cfg.Validate(); err != nil {
		appLogger.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	eng, err := engine.New(cfg.Scenario, engine.WithLogger(appLogger))
	if err != nil {
		appLogger.Error("Failed to build engine", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []engine.TickSink
	if *dbPath != "" {
		db, err := storage.InitSQLite(*dbPath)
		if err != nil {
			appLogger.Error("Failed to initialize SQLite", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		sink, err := storage.NewHistorySink(ctx, storage.NewSQLiteHistoryRepository(db), cfg.Scenario, nil)
		if err != nil {
			appLogger.Error("Failed to register run", "err", err)
			os.Exit(1)
		}
		appLogger.Info("Recording run", "run", sink.RunID(), "db", *dbPath)
		sinks = append(sinks, sink)
	}

	res, err := engine.NewRunner(eng, appLogger, 0, cfg.Run.Ticks, sinks...).Start(ctx)
	if err != nil {
		appLogger.Warn("Run interrupted", "err", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(eng.History()); err != nil {
			appLogger.Error("Failed to encode history", "err", err)
			os.Exit(1)
		}
		return
	}
	printCurve(eng, res)
}

func loadConfig(path, mode string) (*config.File, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg := config.Default()
	if mode != "" {
		preset, ok := scenario.Preset(scenario.Mode(mode))
		if !ok {
			return nil, fmt.Errorf("unknown mode %q", mode)
		}
		cfg.Scenario = preset
	}
	return cfg, nil
}

func printCurve(eng *engine.Engine, res engine.RunResult) {
	cfg := eng.Config()
	fmt.Printf("epicurves: %s mode, population %d, seed %d\n", cfg.Mode, eng.Population(), eng.Seed())
	fmt.Printf("%6s %6s %6s %6s %6s %6s %6s %10s\n", "tick", "S", "I", "R", "D", "new", "immune", "prevalence")
	for _, row := range eng.History().Rows() {
		fmt.Printf("%6d %6d %6d %6d %6d %6d %6d %10.4f\n",
			row.Tick, row.Susceptible, row.Infected, row.Recovered, row.Dead, row.NewCases, row.Immune, row.Prevalence)
	}

	last := eng.Snapshot()
	fmt.Println()
	fmt.Printf("ticks run:        %d\n", res.Ticks)
	fmt.Printf("stopped early:    %v\n", res.StoppedEarly)
	fmt.Printf("cumulative cases: %d\n", last.CumulativeCases)
	fmt.Printf("vaccinations:     %d\n", last.Vaccinations)
	fmt.Printf("random draws:     %d\n", eng.Draws())
}
