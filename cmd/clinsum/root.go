package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/clinsum/internal/config"
	"github.com/gyeh/clinsum/internal/logging"
	"github.com/gyeh/clinsum/internal/records"
)

var (
	cfg         *config.Config
	log         zerolog.Logger
	configFile  string
	secretsFile string
)

var rootCmd = &cobra.Command{
	Use:           "clinsum",
	Short:         "Patient clinical context assembly and summary generation",
	Long:          "Assembles a per-patient clinical context from six exported datasets and asks a text-generation service for a concise summary.",
	SilenceUsage:  true,
	SilenceErrors: false,

	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "YAML config file")
	pf.StringVar(&secretsFile, "secrets", ".env", "Secrets file loaded into the environment (HF_TOKEN=...)")
	pf.String("source", config.SourceDir, "Dataset source: dir, sqlite or postgres")
	pf.String("data-dir", ".", "Directory holding the dataset files")
	pf.String("manifest", "", "YAML manifest overriding dataset file and table names")
	pf.String("sqlite", "", "SQLite database path (source=sqlite)")
	pf.String("dsn", "", "Postgres connection string (or set DATABASE_URL)")
	pf.String("pg-schema", records.DefaultSchema, "Postgres schema holding the dataset tables")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
}

// loadConfig resolves flags, environment and files into cfg and sets up the
// logger. It runs before every subcommand.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadSecrets(secretsFile); err != nil {
		return err
	}
	c, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	cfg = c
	log = logging.Setup(cfg.LogFormat, cfg.LogLevel)
	return nil
}

// exit logs err and terminates with code.
func exit(code int, err error, msg string) {
	log.Error().Err(err).Int("exit_code", code).Msg(msg)
	os.Exit(code)
}
