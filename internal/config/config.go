// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Retrieval RetrievalConfig `yaml:"retrieval" mapstructure:"retrieval"`
	Workflow  WorkflowConfig  `yaml:"workflow" mapstructure:"workflow"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
}

// StoreConfig configures the run-record database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RetrievalConfig configures the guideline retrieval store.
type RetrievalConfig struct {
	DataDir      string `yaml:"data_dir" mapstructure:"data_dir"` // empty = embedded corpus
	TopK         int    `yaml:"top_k" mapstructure:"top_k"`
	ChunkSize    int    `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
}

// WorkflowConfig configures the underwriting engine.
type WorkflowConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"` // basic or interactive
}

// BatchConfig configures concurrent batch intake.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("UW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "underwriting.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.chunk_size", 500)
	v.SetDefault("retrieval.chunk_overlap", 50)
	v.SetDefault("workflow.mode", "interactive")
	v.SetDefault("batch.max_concurrent", 5)

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

// Validate checks that the configuration is usable for the given command
// mode. Modes: quote, serve, batch, ingest.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		problems = append(problems, "store.database_url is required for the postgres driver")
	}

	switch c.Workflow.Mode {
	case "basic", "interactive":
	default:
		problems = append(problems, fmt.Sprintf("workflow.mode must be basic or interactive, got %q", c.Workflow.Mode))
	}

	if c.Retrieval.TopK < 1 {
		problems = append(problems, "retrieval.top_k must be >= 1")
	}
	if c.Retrieval.ChunkSize < 100 {
		problems = append(problems, "retrieval.chunk_size must be >= 100")
	}
	if c.Retrieval.ChunkOverlap < 0 || c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		problems = append(problems, "retrieval.chunk_overlap must be >= 0 and < retrieval.chunk_size")
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
	case "batch":
		if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 50 {
			problems = append(problems, "batch.max_concurrent must be between 1 and 50")
		}
	case "quote", "ingest", "runs":
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
