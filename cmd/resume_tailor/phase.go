package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/state"
	"github.com/jonathan/resume-tailor/internal/types"
)

var phaseSummaries = map[int]string{
	1: "Analyze the job, configure the workflow and select content",
	2: "Draft the resume and check it for fabrication",
	3: "Edit style and review quality",
}

func init() {
	for _, phase := range []int{1, 2, 3} {
		rootCmd.AddCommand(newPhaseCommand(phase))
	}
}

func newPhaseCommand(phase int) *cobra.Command {
	var statePath, job string

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("phase%d", phase),
		Short: phaseSummaries[phase],
		Long: fmt.Sprintf(`%s.

Runs only phase %d of a run. Earlier phases must already be complete in the state file;
the state is saved when the phase completes.`, phaseSummaries[phase], phase),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPhaseCmd(cmd, phase, statePath, job)
		},
	}
	cmd.Flags().StringVar(&statePath, "state", "", "Run directory or pipeline_state.json")
	if phase == 1 {
		cmd.Flags().StringVarP(&job, "job", "j", "", "Job description for a new run: file, http(s) URL, or - for stdin")
	} else {
		_ = cmd.MarkFlagRequired("state")
	}
	return cmd
}

func runPhaseCmd(cmd *cobra.Command, phase int, statePath, job string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.loadOrStart(ctx, statePath, job)
	if err != nil {
		return err
	}

	var cands *types.CandidateDatabase
	if phase == 1 && st.Phase() < state.Phase1Complete {
		if cands, err = a.candidates(); err != nil {
			return err
		}
	}

	orch, err := a.orchestrator(ctx, cands, nil)
	if err != nil {
		return err
	}

	switch phase {
	case 1:
		err = orch.RunPhase1(ctx, st)
	case 2:
		err = orch.RunPhase2(ctx, st)
	default:
		err = orch.RunPhase3(ctx, st)
	}
	if err != nil {
		return a.stopped(cmd, st, err)
	}

	a.printer.PrintRunStatus(st)
	return nil
}
