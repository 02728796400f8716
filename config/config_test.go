package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instantTrendBot/internal/adapters/logger"
	"instantTrendBot/internal/strategy/indicators"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SYMBOL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "SPY", cfg.Symbol)
	assert.Equal(t, 3, cfg.TrendPeriod)
	assert.Equal(t, 1.0015, cfg.ReversalFactor)
	assert.Equal(t, 0.35, cfg.RangeFraction)
	assert.True(t, cfg.SellOutAtEOD)
	assert.Equal(t, 15*time.Hour+55*time.Minute, cfg.Liquidation.Start)
	assert.Equal(t, 16*time.Hour, cfg.Liquidation.End)
	require.NotNil(t, cfg.Liquidation.Location)
	assert.Equal(t, "America/New_York", cfg.Liquidation.Location.String())
	assert.Equal(t, indicators.SingleThreshold(10), cfg.MomersionConfig())
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)

	src, err := cfg.NewTrendSource()
	require.NoError(t, err)
	assert.Equal(t, "InstantTrend", src.Name())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SYMBOL", "QQQ")
	t.Setenv("TRADE_SIZE", "25")
	t.Setenv("TREND_SOURCE", "EMA")
	t.Setenv("EMA_PERIOD", "8")
	t.Setenv("MOMERSION_MIN_PERIOD", "7")
	t.Setenv("MOMERSION_FULL_PERIOD", "20")
	t.Setenv("LIQUIDATION_START", "15:50")
	t.Setenv("EXCHANGE_TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "QQQ", cfg.Symbol)
	assert.Equal(t, 25.0, cfg.TradeSize)
	assert.Equal(t, indicators.MomersionConfig{MinPeriod: 7, FullPeriod: 20}, cfg.MomersionConfig())
	assert.Equal(t, 15*time.Hour+50*time.Minute, cfg.Liquidation.Start)
	assert.Equal(t, "UTC", cfg.Liquidation.Location.String())
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "QQQ", cfg.EngineConfig().Symbol)

	src, err := cfg.NewTrendSource()
	require.NoError(t, err)
	assert.Equal(t, "EMA(8)", src.Name())
}

func TestLoadConfig_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := "symbol: IWM\ntrade_size: 40\ntrend_period: 5\nsell_out_at_eod: false\nmomersion_full_period: 14\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SYMBOL", "")
	t.Setenv("TRADE_SIZE", "60")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "IWM", cfg.Symbol)
	assert.Equal(t, 60.0, cfg.TradeSize)
	assert.Equal(t, 5, cfg.TrendPeriod)
	assert.False(t, cfg.SellOutAtEOD)
	assert.Equal(t, 14, cfg.MomersionFullPeriod)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad trade size", env: map[string]string{"TRADE_SIZE": "abc"}, wantErr: "invalid TRADE_SIZE"},
		{name: "non-positive trade size", env: map[string]string{"TRADE_SIZE": "0"}, wantErr: "TRADE_SIZE must be positive"},
		{name: "short trend period", env: map[string]string{"TREND_PERIOD": "2"}, wantErr: "trend period must be at least 3"},
		{name: "reversal factor", env: map[string]string{"REVERSAL_FACTOR": "0.99"}, wantErr: "reversal factor"},
		{name: "min above full", env: map[string]string{"MOMERSION_MIN_PERIOD": "12"}, wantErr: "exceeds full period"},
		{name: "bad clock", env: map[string]string{"LIQUIDATION_END": "4pm"}, wantErr: "invalid LIQUIDATION_END"},
		{name: "bad zone", env: map[string]string{"EXCHANGE_TIMEZONE": "Mars/Olympus"}, wantErr: "invalid EXCHANGE_TIMEZONE"},
		{name: "unknown trend source", env: map[string]string{"TREND_SOURCE": "kalman"}, wantErr: "TREND_SOURCE must be"},
		{name: "cancel after", env: map[string]string{"PAPER_CANCEL_AFTER_BARS": "0"}, wantErr: "PAPER_CANCEL_AFTER_BARS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := LoadConfig()
	assert.Error(t, err)
}
