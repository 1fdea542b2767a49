package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/state"
	"github.com/jonathan/resume-tailor/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full resume pipeline end-to-end",
	Long: `Runs every phase a run has not completed yet: job analysis, workflow configuration and content
selection; drafting and fabrication checking; style editing and quality review. The final draft
is then rendered to HTML and PDF in the run directory.

Start a new run with --job, or continue a saved one with --state.`,
	RunE: runPipelineCmd,
}

var (
	runJob   string
	runState string
	runEdits []string
	runNoPDF bool
)

func init() {
	runCommand.Flags().StringVarP(&runJob, "job", "j", "", "Job description: text, markdown or PDF file, http(s) URL, or - for stdin")
	runCommand.Flags().StringVar(&runState, "state", "", "Run directory or pipeline_state.json to continue (mutually exclusive with --job)")
	runCommand.Flags().StringArrayVar(&runEdits, "edit", nil, "Workflow edit applied after configuration, e.g. enable:publications or move:skills=1 (repeatable)")
	runCommand.Flags().BoolVar(&runNoPDF, "no-pdf", false, "Skip rendering the final PDF")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	edits, err := parseEdits(runEdits)
	if err != nil {
		return err
	}

	st, err := a.loadOrStart(ctx, runState, runJob)
	if err != nil {
		return err
	}

	var cands *types.CandidateDatabase
	if st.Phase() < state.Phase1Complete {
		if cands, err = a.candidates(); err != nil {
			return err
		}
	}

	orch, err := a.orchestrator(ctx, cands, edits)
	if err != nil {
		return err
	}
	if err := orch.GenerateResume(ctx, st); err != nil {
		return a.stopped(cmd, st, err)
	}

	a.printer.PrintRunStatus(st)
	if runNoPDF {
		return nil
	}
	return a.render(ctx, cmd, orch, st)
}

// loadOrStart continues the run at statePath or starts a new one from the job
// description at source
func (a *app) loadOrStart(ctx context.Context, statePath, source string) (*state.PipelineState, error) {
	switch {
	case statePath != "" && source != "":
		return nil, errors.New("--state and --job are mutually exclusive; provide only one")
	case statePath != "":
		st, err := state.Load(statePath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load run state")
		}
		a.logger.Info("continuing run", "run_id", st.RunID, "phase", st.Phase())
		return st, nil
	case source != "":
		doc, err := ingestion.Ingest(ctx, source, ingestion.URLOptions{
			UseBrowser:     a.cfg.UseBrowser,
			BrowserTimeout: a.cfg.Render.Timeout.Duration,
			Logger:         a.logger,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to read job description")
		}
		st := state.New(doc.Text, doc.Metadata.Label(), time.Now())
		a.logger.Info("starting run", "run_id", st.RunID, "source", st.JobSource)
		return st, nil
	default:
		return nil, errors.New("either --job or --state must be provided")
	}
}

// stopped reports where a failed run was left so it can be continued
func (a *app) stopped(cmd *cobra.Command, st *state.PipelineState, err error) error {
	if st.RunDir != "" && st.Phase() > state.NotStarted {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Run saved at %s (%s). Continue with: resume_tailor run --state %s\n",
			st.RunDir, st.Phase(), st.RunDir)
	}
	return err
}
