package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rendering"
	"github.com/jonathan/resume-tailor/internal/state"
)

var renderCommand = &cobra.Command{
	Use:   "render",
	Short: "Render a completed run to HTML and PDF",
	Long: `Renders the final draft of a completed run to resume.html and resume.pdf in the run directory
using headless Chrome, then checks the page count against the workflow's page limit.`,
	RunE: runRenderCmd,
}

var renderState string

func init() {
	renderCommand.Flags().StringVar(&renderState, "state", "", "Run directory or pipeline_state.json")
	_ = renderCommand.MarkFlagRequired("state")

	rootCmd.AddCommand(renderCommand)
}

func runRenderCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := state.Load(renderState)
	if err != nil {
		return errors.Wrap(err, "failed to load run state")
	}
	orch, err := a.stateWriter(cmd.Context())
	if err != nil {
		return err
	}
	return a.render(cmd.Context(), cmd, orch, st)
}

func (a *app) pdfOptions() rendering.PDFOptions {
	opts := rendering.DefaultPDFOptions()
	if a.cfg.Render.PaperWidth > 0 {
		opts.PaperWidth = a.cfg.Render.PaperWidth
	}
	if a.cfg.Render.PaperHeight > 0 {
		opts.PaperHeight = a.cfg.Render.PaperHeight
	}
	if a.cfg.Render.Timeout.Duration > 0 {
		opts.Timeout = a.cfg.Render.Timeout.Duration
	}
	opts.ChromePath = a.cfg.Render.ChromePath
	opts.Logger = a.logger
	return opts
}

// render writes the final draft of a completed run and has orch record the PDF
// path in the state. Exceeding the page limit is reported but not fatal.
func (a *app) render(ctx context.Context, cmd *cobra.Command, orch *pipeline.Orchestrator, st *state.PipelineState) error {
	if st.Phase() < state.Phase3Complete {
		return errors.Errorf("run %s is at %s; complete phase 3 before rendering", st.RunID, st.Phase())
	}

	res, err := rendering.Render(ctx, &st.StyleEdit.EditedDraft, st.WorkflowConfig.Constraints, st.RunDir, a.pdfOptions())
	var pageErr *rendering.PageLimitError
	switch {
	case errors.As(err, &pageErr):
		a.logger.Warn("resume exceeds the page limit", "pages", pageErr.Pages, "max_pages", pageErr.MaxPages)
	case err != nil:
		return errors.Wrap(err, "failed to render resume")
	}

	if err := orch.RecordRender(ctx, st, res.PDFPath); err != nil {
		return errors.Wrap(err, "failed to record rendered resume")
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s (%d pages)\n", res.PDFPath, res.Pages)
	return nil
}
