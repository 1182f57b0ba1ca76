// Package config loads service and CLI configuration.
//
// Sources, lowest to highest precedence: built-in defaults, an optional
// YAML file, a .env file, and HEDGE_* environment variables
// (e.g. HEDGE_DEFAULTS_SPOT_RATE=83.9). PORT, DATABASE_URL and REDIS_URL
// are honoured as fallbacks for the server, database and redis keys.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/bondhedge/hedge-engine/internal/model"
	"github.com/bondhedge/hedge-engine/internal/policy"
)

// Config is the complete configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Defaults DefaultsConfig `mapstructure:"defaults" yaml:"defaults"`
	Sweep    SweepConfig    `mapstructure:"sweep" yaml:"sweep"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            string        `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DatabaseConfig selects PostgreSQL. An empty URL means in-memory storage.
type DatabaseConfig struct {
	URL     string `mapstructure:"url" yaml:"url"`
	Migrate bool   `mapstructure:"migrate" yaml:"migrate"`
}

// RedisConfig enables the read-through cache when URL is set.
type RedisConfig struct {
	URL string        `mapstructure:"url" yaml:"url"`
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // json or text
}

// DefaultsConfig supplies values for request fields callers omit.
// Decimal values are kept as strings so they survive env and YAML exactly.
type DefaultsConfig struct {
	SpotRate        string `mapstructure:"spot_rate" yaml:"spot_rate"`
	LotSizeUSD      string `mapstructure:"lot_size_usd" yaml:"lot_size_usd"`
	MarginPerLot    string `mapstructure:"margin_per_lot" yaml:"margin_per_lot"`
	CoveragePercent string `mapstructure:"coverage_percent" yaml:"coverage_percent"`
	Convention      string `mapstructure:"convention" yaml:"convention"`
	Frequency       string `mapstructure:"frequency" yaml:"frequency"`
	Rounding        string `mapstructure:"rounding" yaml:"rounding"`
	CostModel       string `mapstructure:"cost_model" yaml:"cost_model"`
}

// SweepConfig bounds scenario sweeps.
type SweepConfig struct {
	Workers   int `mapstructure:"workers" yaml:"workers"`
	MaxPoints int `mapstructure:"max_points" yaml:"max_points"`
}

// Load reads configuration. When path is empty, ./hedge.yaml and
// ./config/hedge.yaml are tried and a missing file is not an error.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HEDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "HEDGE_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.url", "HEDGE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("redis.url", "HEDGE_REDIS_URL", "REDIS_URL")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("hedge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults uses the desk constants: USD/INR 85,
// 1000 USD lots, 2150 INR margin per lot, full coverage.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.migrate", true)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.ttl", "10m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("defaults.spot_rate", "85")
	v.SetDefault("defaults.lot_size_usd", "1000")
	v.SetDefault("defaults.margin_per_lot", "2150")
	v.SetDefault("defaults.coverage_percent", "100")
	v.SetDefault("defaults.convention", string(policy.ConventionSimple))
	v.SetDefault("defaults.frequency", "annual")
	v.SetDefault("defaults.rounding", string(policy.RoundCeiling))
	v.SetDefault("defaults.cost_model", string(policy.CostMarginOnly))

	v.SetDefault("sweep.workers", 8)
	v.SetDefault("sweep.max_points", 401)
}

// Validate checks the configuration, naming the offending key.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Sweep.Workers < 1 {
		return fmt.Errorf("sweep.workers must be at least 1")
	}
	if c.Sweep.MaxPoints < 1 {
		return fmt.Errorf("sweep.max_points must be at least 1")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format must be 'json' or 'text'")
	}
	if _, err := c.HedgeDefaults(); err != nil {
		return err
	}
	return nil
}

// HedgeDefaults parses the defaults section.
func (c *Config) HedgeDefaults() (model.Defaults, error) {
	var (
		out model.Defaults
		err error
	)
	dc := c.Defaults

	if out.SpotRate, err = positive("defaults.spot_rate", dc.SpotRate); err != nil {
		return model.Defaults{}, err
	}
	if out.LotSizeUSD, err = positive("defaults.lot_size_usd", dc.LotSizeUSD); err != nil {
		return model.Defaults{}, err
	}
	if out.MarginPerLot, err = positive("defaults.margin_per_lot", dc.MarginPerLot); err != nil {
		return model.Defaults{}, err
	}
	if out.CoveragePercent, err = decimal.NewFromString(dc.CoveragePercent); err != nil {
		return model.Defaults{}, fmt.Errorf("defaults.coverage_percent: %w", err)
	}
	if out.CoveragePercent.IsNegative() || out.CoveragePercent.GreaterThan(decimal.NewFromInt(100)) {
		return model.Defaults{}, fmt.Errorf("defaults.coverage_percent must be within [0, 100]")
	}
	if out.Convention, err = policy.ParseConvention(dc.Convention); err != nil {
		return model.Defaults{}, fmt.Errorf("defaults.convention: %w", err)
	}
	if out.Frequency, err = policy.ParseFrequency(dc.Frequency); err != nil {
		return model.Defaults{}, fmt.Errorf("defaults.frequency: %w", err)
	}
	if out.Rounding, err = policy.ParseRounding(dc.Rounding); err != nil {
		return model.Defaults{}, fmt.Errorf("defaults.rounding: %w", err)
	}
	if out.CostModel, err = policy.ParseCostModel(dc.CostModel); err != nil {
		return model.Defaults{}, fmt.Errorf("defaults.cost_model: %w", err)
	}
	return out, nil
}

// NewLogger builds the slog logger described by the log section.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

func positive(key, s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", key, err)
	}
	if !v.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s must be positive", key)
	}
	return v, nil
}
