package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/state"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

var configureCommand = &cobra.Command{
	Use:   "configure",
	Short: "Show or customize the workflow of a run before drafting",
	Long: `Shows the workflow configuration chosen in phase 1 and applies edits to it. Edits are only
accepted while the run has not started phase 2.

Edit syntax (repeat --edit to apply several, in order):
  enable:<section>[=<priority>]   add a section
  disable:<section>               remove a non-core section
  move:<section>=<position>       move a section to a 0-based position
  priority:<section>=<priority>   change a section's priority and re-sort
  enable_agent:<agent>            activate an optional agent
  disable_agent:<agent>           deactivate an optional agent`,
	RunE: runConfigureCmd,
}

var (
	configureState string
	configureEdits []string
)

func init() {
	configureCommand.Flags().StringVar(&configureState, "state", "", "Run directory or pipeline_state.json")
	configureCommand.Flags().StringArrayVar(&configureEdits, "edit", nil, "Workflow edit (repeatable)")
	_ = configureCommand.MarkFlagRequired("state")

	rootCmd.AddCommand(configureCommand)
}

func runConfigureCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	edits, err := parseEdits(configureEdits)
	if err != nil {
		return err
	}

	st, err := state.Load(configureState)
	if err != nil {
		return errors.Wrap(err, "failed to load run state")
	}
	if st.WorkflowConfig == nil {
		return errors.Errorf("run %s has no workflow yet; run phase1 first", st.RunID)
	}

	if len(edits) > 0 {
		orch, err := a.stateWriter(cmd.Context())
		if err != nil {
			return err
		}
		if err := orch.Customize(cmd.Context(), st, edits); err != nil {
			return errors.Wrap(err, "failed to apply workflow edits")
		}
	}

	a.printer.PrintWorkflowConfig(st.WorkflowConfig)
	return nil
}

// parseEdits parses --edit values of the form action:target[=number]
func parseEdits(values []string) ([]workflow.Edit, error) {
	edits := make([]workflow.Edit, 0, len(values))
	for _, v := range values {
		edit, err := parseEdit(v)
		if err != nil {
			return nil, err
		}
		edits = append(edits, edit)
	}
	return edits, nil
}

func parseEdit(value string) (workflow.Edit, error) {
	action, target, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || target == "" {
		return workflow.Edit{}, errors.Errorf("invalid edit %q: expected action:target", value)
	}

	name, numText, hasNum := strings.Cut(target, "=")
	var num int
	if hasNum {
		n, err := strconv.Atoi(numText)
		if err != nil || n < 0 {
			return workflow.Edit{}, errors.Errorf("invalid edit %q: %q is not a non-negative number", value, numText)
		}
		num = n
	}

	edit := workflow.Edit{Action: workflow.EditAction(action)}
	switch edit.Action {
	case workflow.ActionEnable:
		edit.Section, edit.Priority = name, num
	case workflow.ActionDisable:
		edit.Section = name
	case workflow.ActionMove:
		if !hasNum {
			return workflow.Edit{}, errors.Errorf("invalid edit %q: move needs =<position>", value)
		}
		edit.Section, edit.Position = name, num
	case workflow.ActionPriority:
		if !hasNum {
			return workflow.Edit{}, errors.Errorf("invalid edit %q: priority needs =<priority>", value)
		}
		edit.Section, edit.Priority = name, num
	case workflow.ActionEnableAgent, workflow.ActionDisableAgent:
		edit.Agent = name
	default:
		return workflow.Edit{}, errors.Errorf("invalid edit %q: unknown action %q", value, action)
	}
	return edit, nil
}
