package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/gyeh/clinsum/internal/compose"
	"github.com/gyeh/clinsum/internal/llm"
	"github.com/gyeh/clinsum/internal/records"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HF_TOKEN", "DATABASE_URL", "CLINSUM_SOURCE", "CLINSUM_DATA_DIR", "CLINSUM_LLM_TOKEN", "CLINSUM_LLM_ATTEMPTS", "CLINSUM_DSN"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != SourceDir || cfg.PGSchema != records.DefaultSchema || cfg.Listen != ":8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.AssessmentOrder != compose.OrderLatest {
		t.Errorf("assessment order = %q", cfg.AssessmentOrder)
	}
	if cfg.LLMClientConfig() != llm.DefaultConfig() {
		t.Errorf("llm config = %+v, want %+v", cfg.LLMClientConfig(), llm.DefaultConfig())
	}
}

func TestLoad_EnvAndTokenFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLINSUM_SOURCE", "SQLite")
	t.Setenv("CLINSUM_LLM_ATTEMPTS", "5")
	t.Setenv("HF_TOKEN", " hf_abc ")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != SourceSQLite {
		t.Errorf("source = %q", cfg.Source)
	}
	if cfg.LLM.Attempts != 5 {
		t.Errorf("attempts = %d", cfg.LLM.Attempts)
	}
	if cfg.LLM.Token != "hf_abc" {
		t.Errorf("token = %q", cfg.LLM.Token)
	}
}

func TestLoad_FileThenFlags(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "clinsum.yaml")
	yml := "source: postgres\ndsn: postgres://file\nllm:\n  timeout: 5s\n  model: other/model\n"
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("dsn", "", "")
	fs.String("source", "dir", "")
	if err := fs.Parse([]string{"--dsn", "postgres://flag"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != SourcePostgres {
		t.Errorf("unchanged flag should not override file: source = %q", cfg.Source)
	}
	if cfg.DSN != "postgres://flag" {
		t.Errorf("dsn = %q", cfg.DSN)
	}
	if cfg.LLM.Timeout != 5*time.Second || cfg.LLM.Model != "other/model" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	if _, err := Load("/nonexistent/clinsum.yaml", nil); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadSecrets(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("HF_TOKEN=from-secrets\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := LoadSecrets(path); err != nil {
		t.Fatalf("LoadSecrets: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("HF_TOKEN") })

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Token != "from-secrets" {
		t.Errorf("token = %q", cfg.LLM.Token)
	}
	if err := LoadSecrets(filepath.Join(dir, "absent.env")); err != nil {
		t.Errorf("missing secrets file should be ignored: %v", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	base := func() Config {
		return Config{
			Source:          SourceDir,
			DataDir:         dir,
			LogFormat:       "json",
			AssessmentOrder: compose.OrderLatest,
			LLM:             LLMConfig{Attempts: 3},
		}
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"missing dir", func(c *Config) { c.DataDir = filepath.Join(dir, "nope") }, "not accessible"},
		{"unknown source", func(c *Config) { c.Source = "s3" }, "unknown source"},
		{"sqlite path", func(c *Config) { c.Source = SourceSQLite }, "--sqlite"},
		{"postgres dsn", func(c *Config) { c.Source = SourcePostgres }, "--dsn"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
		{"order", func(c *Config) { c.AssessmentOrder = "random" }, "assessment order"},
		{"attempts", func(c *Config) { c.LLM.Attempts = 0 }, "attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
