// Package main provides the resume_tailor command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "resume_tailor",
	Short: "Tailor a resume to a job posting",
	Long: `resume_tailor analyzes a job posting, selects matching content from a candidate database and
drafts, fact-checks, edits and reviews a tailored resume in three resumable phases.

Every completed phase is saved to pipeline_state.json in the run directory, so a failed or
interrupted run continues from its last completed phase.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
