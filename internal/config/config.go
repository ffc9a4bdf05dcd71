// Package config loads application configuration from file and
// environment. Credentials have no defaults: a backend that needs one
// stays disabled until the operator supplies it.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	PDFCo  PDFCoConfig  `yaml:"pdfco" mapstructure:"pdfco"`
	OpenAI OpenAIConfig `yaml:"openai" mapstructure:"openai"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Parse  ParseConfig  `yaml:"parse" mapstructure:"parse"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// PDFCoConfig holds PDF.co API settings. Key is required for the
// primary backend to run at all; without it every document goes
// straight to the fallback.
type PDFCoConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string  `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
	Org     string `yaml:"org" mapstructure:"org"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CacheConfig configures extraction result caching.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir      string `yaml:"dir" mapstructure:"dir"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// ParseConfig configures document handling.
type ParseConfig struct {
	MaxDocumentBytes int64 `yaml:"max_document_bytes" mapstructure:"max_document_bytes"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An empty path
// means the default search (config.yaml in the current directory).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("BILLPARSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("pdfco.base_url", "https://api.pdf.co/v1")
	v.SetDefault("pdfco.timeout_secs", 120)
	v.SetDefault("pdfco.requests_per_second", 2)
	v.SetDefault("pdfco.burst", 2)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.dir", ".billparse-cache")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("parse.max_document_bytes", 25<<20)
	v.SetDefault("batch.workers", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings a run mode depends on. The secondary
// backend is mandatory in every mode; the primary is optional and only
// gated on its key being present.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.OpenAI.Key == "" {
		problems = append(problems, "openai.key is required")
	}

	switch mode {
	case "parse":
	case "batch":
		if c.Batch.Workers < 1 || c.Batch.Workers > 32 {
			problems = append(problems, "batch.workers must be between 1 and 32")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
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
