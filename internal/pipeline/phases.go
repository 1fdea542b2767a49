package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/state"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// PhaseDefinition describes one phase: the agents it runs, the state it needs
// and the state it produces
type PhaseDefinition struct {
	Number   int
	Name     string
	Agents   []string
	Requires []state.Stage
	Produces []state.Stage
}

// Phases lists the pipeline phases in order
var Phases = []PhaseDefinition{
	{
		Number:   1,
		Name:     "analysis and selection",
		Agents:   []string{workflow.AgentJobAnalyzer, workflow.AgentContentSelector},
		Requires: []state.Stage{state.StageJobDescription},
		Produces: []state.Stage{state.StageJobAnalysis, state.StageWorkflowConfig, state.StageSelection},
	},
	{
		Number:   2,
		Name:     "drafting and fabrication check",
		Agents:   []string{workflow.AgentResumeDrafter, workflow.AgentFabricationValidator},
		Requires: []state.Stage{state.StageJobDescription, state.StageJobAnalysis, state.StageWorkflowConfig, state.StageSelection},
		Produces: []state.Stage{state.StageDraft, state.StageValidation},
	},
	{
		Number: 3,
		Name:   "style edit and quality review",
		Agents: []string{workflow.AgentStyleEditor, workflow.AgentQualityReviewer},
		Requires: []state.Stage{state.StageJobDescription, state.StageJobAnalysis, state.StageWorkflowConfig,
			state.StageSelection, state.StageDraft, state.StageValidation},
		Produces: []state.Stage{state.StageStyleEdit, state.StageQAReport},
	},
}

// PrerequisiteError is returned when a phase is started without the output of
// the phases before it
type PrerequisiteError struct {
	Phase   int
	Missing []state.Stage
}

func (e *PrerequisiteError) Error() string {
	names := make([]string, len(e.Missing))
	for i, s := range e.Missing {
		names[i] = string(s)
	}
	return fmt.Sprintf("phase %d cannot run, missing: %s", e.Phase, strings.Join(names, ", "))
}

// PhaseError wraps the failure of a phase
type PhaseError struct {
	Phase int
	Cause error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %d failed: %v", e.Phase, e.Cause)
}

func (e *PhaseError) Unwrap() error {
	return e.Cause
}

// CheckPrerequisites verifies the state holds everything phase needs
func CheckPrerequisites(st *state.PipelineState, phase int) error {
	if phase < 1 || phase > len(Phases) {
		return fmt.Errorf("unknown phase %d", phase)
	}

	var missing []state.Stage
	for _, stage := range Phases[phase-1].Requires {
		if _, err := st.StageOutput(stage); err != nil {
			missing = append(missing, stage)
		}
	}
	if len(missing) > 0 {
		return &PrerequisiteError{Phase: phase, Missing: missing}
	}
	return nil
}
