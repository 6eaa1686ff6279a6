// Package config loads rarities settings from rarities.yaml, the
// environment, and built-in defaults, in that order of precedence
// (environment wins).
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inat-tools/rarities/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	API    APIConfig    `yaml:"api" mapstructure:"api"`
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Report ReportConfig `yaml:"report" mapstructure:"report"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// APIConfig configures the iNaturalist API client.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
	Delay     time.Duration `yaml:"delay" mapstructure:"delay"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	Retry     RetryConfig   `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig tunes backoff for API requests.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// Resilience converts the section to the retry policy the client consumes.
func (r RetryConfig) Resilience() resilience.RetryConfig {
	return resilience.FromRetryConfig(
		r.MaxAttempts, r.InitialBackoffMs, r.MaxBackoffMs, r.Multiplier, r.JitterFraction)
}

// ScanConfig bounds the recency scan and the global-count batching.
type ScanConfig struct {
	MaxPages  int `yaml:"max_pages" mapstructure:"max_pages"`
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
}

// StoreConfig configures the recency cache backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// ReportConfig configures the output writers.
type ReportConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Top    int    `yaml:"top" mapstructure:"top"`
	HTML   bool   `yaml:"html" mapstructure:"html"`
	XLSX   bool   `yaml:"xlsx" mapstructure:"xlsx"`
	Photos bool   `yaml:"photos" mapstructure:"photos"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("rarities")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RARITIES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api.base_url", "https://api.inaturalist.org/v1")
	v.SetDefault("api.delay", time.Second)
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.retry.max_attempts", 8)
	v.SetDefault("api.retry.initial_backoff_ms", 1000)
	v.SetDefault("api.retry.max_backoff_ms", 60000)
	v.SetDefault("api.retry.multiplier", 2.0)
	v.SetDefault("api.retry.jitter_fraction", 0.25)
	v.SetDefault("scan.max_pages", 8)
	v.SetDefault("scan.batch_size", 200)
	v.SetDefault("store.driver", "json")
	v.SetDefault("report.dir", "rarity-report")
	v.SetDefault("report.top", 20)
	v.SetDefault("report.html", true)
	v.SetDefault("report.xlsx", false)
	v.SetDefault("report.photos", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks bounds before a run. All problems are reported at once.
func (c *Config) Validate() error {
	var problems []string

	if c.API.BaseURL == "" {
		problems = append(problems, "api.base_url is required")
	}
	if c.API.Delay < 0 {
		problems = append(problems, "api.delay must be >= 0")
	}
	if c.Scan.MaxPages < 1 {
		problems = append(problems, "scan.max_pages must be >= 1")
	}
	if c.Scan.BatchSize < 1 || c.Scan.BatchSize > 500 {
		problems = append(problems, "scan.batch_size must be between 1 and 500")
	}
	if c.Report.Top < 1 {
		problems = append(problems, "report.top must be >= 1")
	}
	switch c.Store.Driver {
	case "json", "sqlite":
	default:
		problems = append(problems, "store.driver must be json or sqlite")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
