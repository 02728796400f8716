package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"instantTrendBot/config"
	"instantTrendBot/internal/adapters/logger"
	"instantTrendBot/internal/adapters/paper"
	"instantTrendBot/internal/adapters/sqlite"
	"instantTrendBot/internal/app"
	"instantTrendBot/internal/metrics"
	"instantTrendBot/internal/strategy/indicators"
	"instantTrendBot/internal/strategy/strategies"
	"instantTrendBot/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if cfg.ReplayFile == "" {
		log.Fatalf("FATAL: REPLAY_FILE must point to a CSV of bars")
	}

	// 2. Initialize Logger
	appLogger := logger.NewConsole(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// Cancel the replay on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLogger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
		cancel()
	}()

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 4. Initialize Paper Broker
	broker, err := paper.NewBroker(paper.Config{
		CancelAfterBars: cfg.PaperCancelAfterBars,
		Logger:          appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize paper broker: %v", err)
	}

	// 5. Initialize Engine and Indicators
	engine, err := strategies.NewInstantTrendEngine(cfg.EngineConfig(), broker, broker, appLogger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize engine: %v", err)
	}
	trend, err := cfg.NewTrendSource()
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize trend source: %v", err)
	}
	ratio, err := indicators.NewMomersion(cfg.MomersionConfig())
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Momersion: %v", err)
	}
	appLogger.Info(ctx, "Engine initialized", map[string]interface{}{
		"symbol":      cfg.Symbol,
		"trendSource": trend.Name(),
		"liquidation": cfg.Liquidation.String(),
		"sellOutEOD":  cfg.SellOutAtEOD,
	})

	// 6. Optional Metrics Endpoint
	var rec *metrics.Recorder
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		rec, err = metrics.New(reg)
		if err != nil {
			log.Fatalf("FATAL: Failed to register metrics: %v", err)
		}
		srv := metrics.Serve(cfg.MetricsAddr, reg)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
		appLogger.Info(ctx, "Metrics endpoint listening", map[string]interface{}{"addr": cfg.MetricsAddr})
	}

	// 7. Initialize Application Service
	service, err := app.NewService(cfg, appLogger, broker, engine, trend, ratio, repo, rec)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize service: %v", err)
	}

	// 8. Replay
	bars, err := utils.ReadKlinesFromCSV(cfg.ReplayFile)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to read replay file", map[string]interface{}{"file": cfg.ReplayFile})
		log.Fatalf("FATAL: Failed to read replay file: %v", err)
	}
	for _, b := range bars {
		if b.Symbol == "" {
			b.Symbol = cfg.Symbol
		}
	}

	summary, err := service.Run(ctx, bars)
	if err != nil {
		appLogger.Error(ctx, err, "Replay stopped with error")
	}
	if summary != nil {
		appLogger.Info(context.Background(), "Replay summary", map[string]interface{}{
			"bars":          summary.Bars,
			"intents":       summary.Intents,
			"faults":        summary.Faults,
			"fills":         summary.Fills,
			"cancels":       summary.Cancels,
			"finalPosition": summary.Final.Quantity,
			"entryPrice":    summary.Final.EntryPrice,
			"momersion":     summary.LastMomersion,
		})
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
