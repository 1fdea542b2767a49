package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/state"
)

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show one run or list recent runs",
	Long: `With --state, shows which stages of a run are complete, its flags and its last error.
Without it, lists the runs under the state directory, newest first, or the runs recorded in the
database mirror with --db.`,
	RunE: runStatusCmd,
}

var (
	statusState string
	statusDB    bool
	statusLimit int
)

func init() {
	statusCommand.Flags().StringVar(&statusState, "state", "", "Run directory or pipeline_state.json")
	statusCommand.Flags().BoolVar(&statusDB, "db", false, "List runs from the database mirror instead of the state directory")
	statusCommand.Flags().IntVar(&statusLimit, "limit", 20, "Maximum runs to list with --db")

	rootCmd.AddCommand(statusCommand)
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if statusState != "" {
		st, err := state.Load(statusState)
		if err != nil {
			return errors.Wrap(err, "failed to load run state")
		}
		a.printer.PrintRunStatus(st)
		a.printer.PrintQAReport(st.QAReport, a.cfg.QAThresholdScore())
		return nil
	}

	if statusDB {
		conn, err := a.database(ctx)
		if err != nil {
			return err
		}
		if conn == nil {
			return errors.New("--db needs a database URL (--db-url or DATABASE_URL)")
		}
		records, err := db.NewStore(conn).RecentRuns(ctx, statusLimit)
		if err != nil {
			return errors.Wrap(err, "failed to list runs")
		}
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			_, _ = fmt.Fprintln(out, "no runs found")
		}
		for _, r := range records {
			score := "-"
			if r.QAScore != nil {
				score = fmt.Sprintf("%d", *r.QAScore)
			}
			_, _ = fmt.Fprintf(out, "%s  %s  phase %d  score %s  %s / %s\n",
				r.UpdatedAt.Format("2006-01-02 15:04"), r.RunID, r.Phase, score, r.Company, r.RoleTitle)
		}
		return nil
	}

	runs, err := state.ListRuns(a.cfg.StateDir)
	if err != nil {
		return errors.Wrap(err, "failed to list runs")
	}
	a.printer.PrintRuns(runs)
	return nil
}
