package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gyeh/clinsum/internal/compose"
	"github.com/gyeh/clinsum/internal/llm"
	"github.com/gyeh/clinsum/internal/records"
)

// Source kinds.
const (
	SourceDir      = "dir"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// EnvPrefix namespaces environment overrides, e.g. CLINSUM_DATA_DIR.
const EnvPrefix = "CLINSUM"

// Config holds all runtime configuration for a clinsum run.
type Config struct {
	Source          string    `mapstructure:"source"`
	DataDir         string    `mapstructure:"data_dir"`
	Manifest        string    `mapstructure:"manifest"`
	SQLitePath      string    `mapstructure:"sqlite"`
	DSN             string    `mapstructure:"dsn"`
	PGSchema        string    `mapstructure:"pg_schema"`
	LogFormat       string    `mapstructure:"log_format"` // "text" or "json"
	LogLevel        string    `mapstructure:"log_level"`
	Listen          string    `mapstructure:"listen"`
	AssessmentOrder string    `mapstructure:"assessment_order"`
	LLM             LLMConfig `mapstructure:"llm"`
}

// LLMConfig configures the generation client.
type LLMConfig struct {
	URL           string        `mapstructure:"url"`
	Token         string        `mapstructure:"token"`
	Model         string        `mapstructure:"model"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Attempts      int           `mapstructure:"attempts"`
	Timeout       time.Duration `mapstructure:"timeout"`
	TransientWait time.Duration `mapstructure:"transient_wait"`
	TransportWait time.Duration `mapstructure:"transport_wait"`
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"source":     "source",
	"data-dir":   "data_dir",
	"manifest":   "manifest",
	"sqlite":     "sqlite",
	"dsn":        "dsn",
	"pg-schema":  "pg_schema",
	"log-format": "log_format",
	"log-level":  "log_level",
	"listen":     "listen",
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()
	v.SetDefault("source", SourceDir)
	v.SetDefault("data_dir", ".")
	v.SetDefault("manifest", "")
	v.SetDefault("sqlite", "")
	v.SetDefault("dsn", "")
	v.SetDefault("pg_schema", records.DefaultSchema)
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen", ":8080")
	v.SetDefault("assessment_order", compose.OrderLatest)
	v.SetDefault("llm.url", d.URL)
	v.SetDefault("llm.token", "")
	v.SetDefault("llm.model", d.Model)
	v.SetDefault("llm.max_tokens", d.MaxTokens)
	v.SetDefault("llm.attempts", d.Attempts)
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.transient_wait", d.TransientWait)
	v.SetDefault("llm.transport_wait", d.TransportWait)
}

// LoadSecrets loads KEY=VALUE pairs from path into the environment. A
// missing file is not an error; variables already set are not overwritten.
func LoadSecrets(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load secrets file: %w", err)
	}
	return nil
}

// Load merges defaults, the optional YAML config file, CLINSUM_* environment
// variables and any changed flags, in increasing priority.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.token", EnvPrefix+"_LLM_TOKEN", "HF_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind token env: %w", err)
	}
	if err := v.BindEnv("dsn", EnvPrefix+"_DSN", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("bind dsn env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	cfg.LLM.Token = strings.TrimSpace(cfg.LLM.Token)
	return cfg, nil
}

// Validate checks the source kind, its required location and the tunables.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceDir:
		if c.DataDir == "" {
			return fmt.Errorf("--data-dir is required for source %q", c.Source)
		}
		info, err := os.Stat(c.DataDir)
		if err != nil {
			return fmt.Errorf("data dir not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data dir %s is not a directory", c.DataDir)
		}
	case SourceSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("--sqlite is required for source %q", c.Source)
		}
	case SourcePostgres:
		if c.DSN == "" {
			return fmt.Errorf("--dsn or DATABASE_URL is required for source %q", c.Source)
		}
	default:
		return fmt.Errorf("unknown source %q (want dir, sqlite or postgres)", c.Source)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.AssessmentOrder != compose.OrderLatest && c.AssessmentOrder != compose.OrderFile {
		return fmt.Errorf("unknown assessment order %q", c.AssessmentOrder)
	}
	if c.LLM.Attempts < 1 {
		return fmt.Errorf("llm.attempts must be at least 1, got %d", c.LLM.Attempts)
	}
	return nil
}

// ValidateWithDSN checks that a database DSN is set, for the db commands.
func (c *Config) ValidateWithDSN() error {
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}

// LLMClientConfig converts to the generation client's config.
func (c *Config) LLMClientConfig() llm.Config {
	return llm.Config{
		URL:           c.LLM.URL,
		Token:         c.LLM.Token,
		Model:         c.LLM.Model,
		MaxTokens:     c.LLM.MaxTokens,
		Attempts:      c.LLM.Attempts,
		Timeout:       c.LLM.Timeout,
		TransientWait: c.LLM.TransientWait,
		TransportWait: c.LLM.TransportWait,
	}
}

// ComposeOptions converts to the compositor's options.
func (c *Config) ComposeOptions() compose.Options {
	return compose.Options{AssessmentOrder: c.AssessmentOrder}
}
