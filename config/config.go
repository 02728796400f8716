package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"instantTrendBot/internal/adapters/logger"
	"instantTrendBot/internal/strategy/indicators"
	"instantTrendBot/internal/strategy/strategies"
)

// Trend sources selectable with TREND_SOURCE.
const (
	TrendSourceInstantTrend = "itrend"
	TrendSourceEMA          = "ema"
)

// Config holds all application configuration.
type Config struct {
	// Binance API, only needed to download bars
	APIKey    string `yaml:"binance_api_key"`
	SecretKey string `yaml:"binance_api_secret"`
	IsTestnet bool   `yaml:"is_testnet"`

	// Trading Parameters
	Symbol    string  `yaml:"symbol"`
	TradeSize float64 `yaml:"trade_size"`

	// Engine Parameters
	TrendPeriod      int     `yaml:"trend_period"`
	ReversalFactor   float64 `yaml:"reversal_factor"`
	RangeFraction    float64 `yaml:"range_fraction"`
	SellOutAtEOD     bool    `yaml:"sell_out_at_eod"`
	LiquidationStart string  `yaml:"liquidation_start"` // HH:MM exchange time
	LiquidationEnd   string  `yaml:"liquidation_end"`
	ExchangeTimezone string  `yaml:"exchange_timezone"`

	// Indicator Parameters
	TrendSource         string  `yaml:"trend_source"`
	InstantTrendAlpha   float64 `yaml:"itrend_alpha"`
	EMAPeriod           int     `yaml:"ema_period"`
	MomersionMinPeriod  int     `yaml:"momersion_min_period"`
	MomersionFullPeriod int     `yaml:"momersion_full_period"`

	// Paper Broker
	PaperCancelAfterBars int `yaml:"paper_cancel_after_bars"`

	// Storage & Input
	DBPath     string `yaml:"db_path"`
	ReplayFile string `yaml:"replay_file"`

	// Logging & Metrics
	LogLevelName string          `yaml:"log_level"`
	LogLevel     logger.LogLevel `yaml:"-"`
	MetricsAddr  string          `yaml:"metrics_addr"`

	// Bar Download
	FetchInterval     string        `yaml:"fetch_interval"`
	FetchLookbackDays int           `yaml:"fetch_lookback_days"`
	ReconnectDelay    time.Duration `yaml:"-"`

	// Derived during validation
	Liquidation strategies.SessionWindow `yaml:"-"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		IsTestnet:            true,
		Symbol:               "SPY",
		TradeSize:            100,
		TrendPeriod:          strategies.DefaultTrendPeriod,
		ReversalFactor:       strategies.DefaultReversalFactor,
		RangeFraction:        strategies.DefaultRangeFraction,
		SellOutAtEOD:         true,
		LiquidationStart:     "15:55",
		LiquidationEnd:       "16:00",
		ExchangeTimezone:     "America/New_York",
		TrendSource:          TrendSourceInstantTrend,
		InstantTrendAlpha:    indicators.DefaultInstantTrendAlpha,
		EMAPeriod:            10,
		MomersionMinPeriod:   0,
		MomersionFullPeriod:  10,
		PaperCancelAfterBars: 1,
		DBPath:               "./data/instant_trend.db",
		LogLevelName:         "INFO",
		FetchInterval:        "1m",
		FetchLookbackDays:    5,
		ReconnectDelay:       5 * time.Second,
	}
}

// LoadConfig loads configuration from an optional YAML file (CONFIG_FILE)
// and environment variables (.env file), in that order of precedence.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	var errs []string
	cfg.applyEnv(&errs)
	cfg.validate(&errs)

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(errs *[]string) {
	var err error

	c.APIKey = getEnv("BINANCE_API_KEY", c.APIKey)
	c.SecretKey = getEnv("BINANCE_API_SECRET", c.SecretKey)
	c.IsTestnet = getEnvAsBool("IS_TESTNET", c.IsTestnet)

	c.Symbol = getEnv("SYMBOL", c.Symbol)
	if c.TradeSize, err = getEnvAsFloatRequired("TRADE_SIZE", c.TradeSize); err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid TRADE_SIZE: %v", err))
	}

	if c.TrendPeriod, err = getEnvAsIntRequired("TREND_PERIOD", c.TrendPeriod); err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid TREND_PERIOD: %v", err))
	}
	if c.ReversalFactor, err = getEnvAsFloatRequired("REVERSAL_FACTOR", c.ReversalFactor); err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid REVERSAL_FACTOR: %v", err))
	}
	if c.RangeFraction, err = getEnvAsFloatRequired("RANGE_FRACTION", c.RangeFraction); err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid RANGE_FRACTION: %v", err))
	}
	c.SellOutAtEOD = getEnvAsBool("SELL_OUT_AT_EOD", c.SellOutAtEOD)
	c.LiquidationStart = getEnv("LIQUIDATION_START", c.LiquidationStart)
	c.LiquidationEnd = getEnv("LIQUIDATION_END", c.LiquidationEnd)
	c.ExchangeTimezone = getEnv("EXCHANGE_TIMEZONE", c.ExchangeTimezone)

	c.TrendSource = strings.ToLower(getEnv("TREND_SOURCE", c.TrendSource))
	if c.InstantTrendAlpha, err = getEnvAsFloatRequired("ITREND_ALPHA", c.InstantTrendAlpha); err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid ITREND_ALPHA: %v", err))
	}
	if c.EMAPeriod, err = getEnvAsIntRequired("EMA_PERIOD", c.EMAPeriod); err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid EMA_PERIOD: %v", err))
	}
	if c.MomersionMinPeriod, err = getEnvAsIntRequired("MOMERSION_MIN_PERIOD", c.MomersionMinPeriod); err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid MOMERSION_MIN_PERIOD: %v", err))
	}
	if c.MomersionFullPeriod, err = getEnvAsIntRequired("MOMERSION_FULL_PERIOD", c.MomersionFullPeriod); err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid MOMERSION_FULL_PERIOD: %v", err))
	}

	if c.PaperCancelAfterBars, err = getEnvAsIntRequired("PAPER_CANCEL_AFTER_BARS", c.PaperCancelAfterBars); err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid PAPER_CANCEL_AFTER_BARS: %v", err))
	}

	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.ReplayFile = getEnv("REPLAY_FILE", c.ReplayFile)

	c.LogLevelName = getEnv("LOG_LEVEL", c.LogLevelName)
	c.LogLevel = logger.ParseLevel(c.LogLevelName)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)

	c.FetchInterval = getEnv("FETCH_INTERVAL", c.FetchInterval)
	c.FetchLookbackDays = getEnvAsInt("FETCH_LOOKBACK_DAYS", c.FetchLookbackDays)
	reconnectDelaySeconds := getEnvAsInt("RECONNECT_DELAY_SECONDS", int(c.ReconnectDelay/time.Second))
	if reconnectDelaySeconds <= 0 {
		*errs = append(*errs, "RECONNECT_DELAY_SECONDS must be positive")
	}
	c.ReconnectDelay = time.Duration(reconnectDelaySeconds) * time.Second
}

func (c *Config) validate(errs *[]string) {
	if c.Symbol == "" {
		*errs = append(*errs, "SYMBOL must be set")
	}
	if c.TradeSize <= 0 {
		*errs = append(*errs, "TRADE_SIZE must be positive")
	}
	if c.PaperCancelAfterBars < 1 {
		*errs = append(*errs, "PAPER_CANCEL_AFTER_BARS must be at least 1")
	}
	if c.DBPath == "" {
		*errs = append(*errs, "DB_PATH must be set")
	}
	if c.FetchLookbackDays <= 0 {
		*errs = append(*errs, "FETCH_LOOKBACK_DAYS must be positive")
	}

	window, err := c.liquidationWindow()
	if err != nil {
		*errs = append(*errs, err.Error())
	} else {
		c.Liquidation = window
	}
	if c.Symbol != "" {
		if err := c.EngineConfig().Validate(); err != nil {
			*errs = append(*errs, err.Error())
		}
	}
	if err := c.MomersionConfig().Validate(); err != nil {
		*errs = append(*errs, err.Error())
	}

	switch c.TrendSource {
	case TrendSourceInstantTrend:
		if c.InstantTrendAlpha <= 0 || c.InstantTrendAlpha >= 1 {
			*errs = append(*errs, "ITREND_ALPHA must be between 0.0 and 1.0 (exclusive)")
		}
	case TrendSourceEMA:
		if c.EMAPeriod <= 0 {
			*errs = append(*errs, "EMA_PERIOD must be positive")
		}
	default:
		*errs = append(*errs, fmt.Sprintf("TREND_SOURCE must be %q or %q, got %q", TrendSourceInstantTrend, TrendSourceEMA, c.TrendSource))
	}
}

func (c *Config) liquidationWindow() (strategies.SessionWindow, error) {
	var w strategies.SessionWindow
	start, err := strategies.ParseClock(c.LiquidationStart)
	if err != nil {
		return w, fmt.Errorf("invalid LIQUIDATION_START: %v", err)
	}
	end, err := strategies.ParseClock(c.LiquidationEnd)
	if err != nil {
		return w, fmt.Errorf("invalid LIQUIDATION_END: %v", err)
	}
	loc, err := time.LoadLocation(c.ExchangeTimezone)
	if err != nil {
		return w, fmt.Errorf("invalid EXCHANGE_TIMEZONE: %v", err)
	}
	return strategies.SessionWindow{Start: start, End: end, Location: loc}, nil
}

// EngineConfig returns the engine parameters.
func (c *Config) EngineConfig() strategies.InstantTrendConfig {
	return strategies.InstantTrendConfig{
		Symbol:         c.Symbol,
		TrendPeriod:    c.TrendPeriod,
		ReversalFactor: c.ReversalFactor,
		RangeFraction:  c.RangeFraction,
		SellOutAtEOD:   c.SellOutAtEOD,
		Liquidation:    c.Liquidation,
	}
}

// MomersionConfig returns the Momersion periods.
func (c *Config) MomersionConfig() indicators.MomersionConfig {
	return indicators.MomersionConfig{MinPeriod: c.MomersionMinPeriod, FullPeriod: c.MomersionFullPeriod}
}

// NewTrendSource builds the configured upstream trend indicator.
func (c *Config) NewTrendSource() (indicators.TrendSource, error) {
	if c.TrendSource == TrendSourceEMA {
		ma, err := indicators.NewMovingAverage(indicators.MovingAverageConfig{
			IndicatorConfig: indicators.IndicatorConfig{Period: c.EMAPeriod},
			Type:            indicators.ExponentialMovingAverage,
		})
		if err != nil {
			return nil, err
		}
		return ma, nil
	}
	it, err := indicators.NewInstantTrend(indicators.InstantTrendConfig{Alpha: c.InstantTrendAlpha})
	if err != nil {
		return nil, err
	}
	return it, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
