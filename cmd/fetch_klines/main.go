package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"instantTrendBot/config"
	"instantTrendBot/internal/adapters/binanceclient"
	"instantTrendBot/internal/adapters/logger"
	"instantTrendBot/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewConsole(cfg.LogLevel)
	ctx := context.Background()

	// 3. Initialize Market Data Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:         cfg.APIKey,
		SecretKey:      cfg.SecretKey,
		UseTestnet:     cfg.IsTestnet,
		Logger:         appLogger,
		ReconnectDelay: cfg.ReconnectDelay,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	if err := binanceClient.Ping(ctx); err != nil {
		log.Fatalf("FATAL: Binance API unreachable: %v", err)
	}

	end, err := binanceClient.GetServerTime(ctx)
	if err != nil {
		appLogger.Warn(ctx, "Falling back to local clock", map[string]interface{}{"error": err.Error()})
		end = time.Now()
	}
	start := end.AddDate(0, 0, -cfg.FetchLookbackDays)

	appLogger.Info(ctx, "Fetching klines", map[string]interface{}{
		"symbol": cfg.Symbol, "interval": cfg.FetchInterval, "start": start, "end": end,
	})
	klines, err := binanceClient.GetKlinesRange(ctx, cfg.Symbol, cfg.FetchInterval, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching klines")
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(ctx, "Fetched klines", map[string]interface{}{"count": len(klines)})

	filename := cfg.ReplayFile
	if filename == "" {
		filename = fmt.Sprintf("data/%s_%s_%s_to_%s.csv", cfg.Symbol, cfg.FetchInterval, start.Format("20060102"), end.Format("20060102"))
	}
	if err := utils.WriteKlinesToCSV(klines, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved klines", map[string]interface{}{"filename": filename})
}
