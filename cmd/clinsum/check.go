package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gyeh/clinsum/internal/exitcode"
	"github.com/gyeh/clinsum/internal/records"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate every dataset (no generation)",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	src, closeSrc := openSource(ctx)
	defer closeSrc()

	reports := records.NewStore(src, log).Check(ctx)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATASET\tLABEL\tSTATUS\tROWS\tPATIENTS\tLATEST\tUNDATED\tSHA256\tLOCATION")
	failed := 0
	for _, r := range reports {
		status := "ok"
		if !r.OK() {
			status = "FAIL"
			failed++
		}
		sha := r.SHA256
		if len(sha) > 12 {
			sha = sha[:12]
		}
		if sha == "" {
			sha = "-"
		}
		latest := r.LatestDay
		if latest == "" {
			latest = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%d\t%s\t%s\n",
			r.Dataset, r.Label, status, r.Rows, r.Patients, latest, r.UndatedRows, sha, r.Location)
	}
	w.Flush()

	if failed > 0 {
		fmt.Println()
		for _, r := range reports {
			if !r.OK() {
				fmt.Printf("  %s\n", strings.TrimSpace(r.Err.Error()))
			}
		}
		closeSrc()
		os.Exit(exitcode.ValidationError)
	}
	fmt.Printf("\nAll %d datasets valid.\n", len(reports))
	return nil
}
