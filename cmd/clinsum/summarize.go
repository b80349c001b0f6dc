package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinsum/internal/compose"
	"github.com/gyeh/clinsum/internal/exitcode"
	"github.com/gyeh/clinsum/internal/llm"
	"github.com/gyeh/clinsum/internal/records"
	"github.com/gyeh/clinsum/internal/summary"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <patient-id>",
	Short: "Generate a clinical summary for one patient",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

var contextCmd = &cobra.Command{
	Use:   "context <patient-id>",
	Short: "Print the composed clinical context without calling the generation service",
	Args:  cobra.ExactArgs(1),
	RunE:  runContext,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(contextCmd)
}

// newService wires store → compositor → client into a summary.Service.
func newService(src records.Source) *summary.Service {
	store := records.NewStore(src, log)
	comp := compose.New(store, log, cfg.ComposeOptions())
	client := llm.NewClient(cfg.LLMClientConfig(), log)
	return summary.NewService(comp, client, log)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.LLM.Token == "" {
		log.Warn().Msg("no API token configured (set HF_TOKEN); the generation service will likely reject the request")
	}

	src, closeSrc := openSource(ctx)
	defer closeSrc()

	text, err := newService(src).GenerateSummaryForPatient(ctx, args[0])
	if err != nil {
		closeSrc()
		exitForPipeline(err, "summary failed")
	}
	fmt.Println(text)
	return nil
}

func runContext(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	src, closeSrc := openSource(ctx)
	defer closeSrc()

	text, err := newService(src).Context(ctx, args[0])
	if err != nil {
		closeSrc()
		exitForPipeline(err, "context composition failed")
	}
	fmt.Println(text)
	return nil
}

// exitForPipeline maps a pipeline error onto an exit code.
func exitForPipeline(err error, msg string) {
	var dsErr *records.DatasetError
	switch {
	case errors.Is(err, summary.ErrBlankPatientID):
		exit(exitcode.UsageError, err, msg)
	case errors.As(err, &dsErr):
		log.Error().Str("dataset", dsErr.Dataset).Str("kind", dsErr.KindName()).Msg("dataset validation failed")
		exit(exitcode.ValidationError, err, msg)
	default:
		exit(exitcode.GenerateError, err, msg)
	}
}
