package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/llm/llmtest"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/selection"
	"github.com/jonathan/resume-tailor/internal/state"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

func TestGenerateResume_Standard(t *testing.T) {
	s := newStubs()
	h := newHarness(t, KindStandard, s, nil)
	st := newRun()

	require.NoError(t, h.orch.GenerateResume(context.Background(), st))

	for name, stub := range s.clients() {
		assert.Equal(t, 1, stub.(*llmtest.Stub).Calls(), name)
	}
	assert.Equal(t, state.Phase3Complete, st.Phase())
	assert.Equal(t, filepath.Join(h.base, "acme_staff_backend_engineer_20260301_093000"), st.RunDir)
	assert.Equal(t, types.ConfigSourceStatic, st.WorkflowConfig.Source)
	assert.Equal(t, selection.ProvenanceDatabase, st.Selection.Provenance[types.FieldContact])
	assert.False(t, st.Flags.UnresolvedFabrication)
	assert.False(t, st.Flags.BelowQualityThreshold)
	assert.Equal(t, 90, st.QAReport.OverallScore)
	assert.Equal(t, []int{1, 2, 3}, h.phasesSeen())

	loaded, err := state.Load(st.RunDir)
	require.NoError(t, err)
	assert.Equal(t, st.RunID, loaded.RunID)
	assert.Equal(t, state.Phase3Complete, loaded.Phase())
	assert.Equal(t, st.WorkflowConfig, loaded.WorkflowConfig)
	assert.Equal(t, st.Draft, loaded.Draft)

	outputs, err := os.ReadDir(filepath.Join(st.RunDir, state.AgentOutputsDir))
	require.NoError(t, err)
	assert.Len(t, outputs, 6)
}

func TestGenerateResume_Dynamic(t *testing.T) {
	s := newStubs()
	s.selector = &llmtest.Stub{Handler: fieldRouter}
	h := newHarness(t, KindDynamic, s, nil)
	st := newRun()

	require.NoError(t, h.orch.GenerateResume(context.Background(), st))

	assert.Equal(t, 6, s.selector.Calls())
	assert.Equal(t, types.ConfigSourceAuto, st.WorkflowConfig.Source)
	assert.True(t, st.WorkflowConfig.HasSection("publications"))
	assert.Equal(t, "skills_selector", st.Selection.Provenance[types.FieldSkills])
	assert.Equal(t, "pub-1", st.Selection.Selection.Publications[0].ID)
	assert.Equal(t, state.Phase3Complete, st.Phase())
}

func TestGenerateResume_ResumeRunsOnlyRemainingPhases(t *testing.T) {
	first := newHarness(t, KindStandard, newStubs(), nil)
	st := newRun()
	require.NoError(t, first.orch.RunPhase1(context.Background(), st))
	require.NoError(t, first.orch.RunPhase2(context.Background(), st))

	loaded, err := state.Load(st.RunDir)
	require.NoError(t, err)
	require.Equal(t, state.Phase2Complete, loaded.Phase())

	s := newStubs()
	resumed := newHarness(t, KindStandard, s, nil)
	require.NoError(t, resumed.orch.GenerateResume(context.Background(), loaded))

	assert.Zero(t, s.analyzer.Calls())
	assert.Zero(t, s.selector.Calls())
	assert.Zero(t, s.drafter.Calls())
	assert.Zero(t, s.checker.Calls())
	assert.Equal(t, 1, s.editor.Calls())
	assert.Equal(t, 1, s.reviewer.Calls())
	assert.Equal(t, []int{3}, resumed.phasesSeen())
	assert.Equal(t, state.Phase3Complete, loaded.Phase())

	// a finished run does nothing
	again := newStubs()
	require.NoError(t, newHarness(t, KindStandard, again, nil).orch.GenerateResume(context.Background(), loaded))
	for name, stub := range again.clients() {
		assert.Zero(t, stub.(*llmtest.Stub).Calls(), name)
	}
}

func TestRunPhase_Prerequisites(t *testing.T) {
	s := newStubs()
	h := newHarness(t, KindStandard, s, nil)

	err := h.orch.RunPhase2(context.Background(), newRun())
	var prereq *PrerequisiteError
	require.ErrorAs(t, err, &prereq)
	assert.Equal(t, 2, prereq.Phase)
	assert.Equal(t, []state.Stage{state.StageJobAnalysis, state.StageWorkflowConfig, state.StageSelection}, prereq.Missing)

	err = h.orch.RunPhase1(context.Background(), state.New("", "", testNow))
	require.ErrorAs(t, err, &prereq)
	assert.Equal(t, []state.Stage{state.StageJobDescription}, prereq.Missing)
	assert.Contains(t, err.Error(), "phase 1 cannot run, missing: job_description")

	for name, stub := range s.clients() {
		assert.Zero(t, stub.(*llmtest.Stub).Calls(), name)
	}
}

func TestRunPhase2_UnresolvedFabricationIsFlagged(t *testing.T) {
	s := newStubs()
	s.checker = llmtest.NewStub(fabricatedReport)
	h := newHarness(t, KindStandard, s, nil)
	st := newRun()

	require.NoError(t, h.orch.GenerateResume(context.Background(), st))

	assert.Equal(t, 3, s.checker.Calls())
	assert.Equal(t, 3, st.ValidationReport.Attempts)
	assert.True(t, st.Flags.UnresolvedFabrication)
	assert.Equal(t, state.Phase3Complete, st.Phase())
}

func TestRunPhase2_FabricationResolvedOnRetry(t *testing.T) {
	s := newStubs()
	s.checker = llmtest.NewStub(fabricatedReport, cleanReport)
	h := newHarness(t, KindStandard, s, nil)
	st := newRun()

	require.NoError(t, h.orch.GenerateResume(context.Background(), st))
	assert.Equal(t, 2, s.checker.Calls())
	assert.False(t, st.Flags.UnresolvedFabrication)
}

func runSchema(t *testing.T, h *harness, st *state.PipelineState) *schemas.Schema {
	t.Helper()
	schema, err := h.orch.deps.Configurator.Registry().BuildResumeSchema(st.WorkflowConfig.SectionNames())
	require.NoError(t, err)
	return schema
}

func TestRunPhase2_CorrectedDraftMustMatchSchema(t *testing.T) {
	s := newStubs()
	s.checker = llmtest.NewStub(badShapeReport, cleanReport)
	h := newHarness(t, KindStandard, s, nil)
	st := newRun()

	require.NoError(t, h.orch.GenerateResume(context.Background(), st))

	assert.Equal(t, 2, s.checker.Calls())
	schema := runSchema(t, h, st)
	assert.NoError(t, schema.Validate(st.ValidationReport.CorrectedDraft.Sections))
	assert.NoError(t, schema.Validate(st.StyleEdit.EditedDraft.Sections))
}

func TestRunPhase2_BadCorrectedDraftExhausts(t *testing.T) {
	s := newStubs()
	s.checker = llmtest.NewStub(badShapeReport)
	h := newHarness(t, KindStandard, s, nil)
	st := newRun()

	err := h.orch.GenerateResume(context.Background(), st)

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, 2, phaseErr.Phase)
	var parseErr *agent.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, strings.Join(parseErr.Fields, "\n"), "education")
	assert.Zero(t, s.editor.Calls())

	onDisk, err := state.Load(st.RunDir)
	require.NoError(t, err)
	assert.Equal(t, state.Phase1Complete, onDisk.Phase())
}

func TestRunPhase3_EditedDraftMustMatchSchema(t *testing.T) {
	s := newStubs()
	s.editor = llmtest.NewStub(badShapeEdit, styleReply)
	h := newHarness(t, KindStandard, s, nil)
	st := newRun()

	require.NoError(t, h.orch.GenerateResume(context.Background(), st))

	assert.Equal(t, 2, s.editor.Calls())
	assert.Equal(t, state.Phase3Complete, st.Phase())
	edited := st.StyleEdit.EditedDraft
	assert.NoError(t, runSchema(t, h, st).Validate(edited.Sections))
	assert.IsType(t, []any{}, edited.Sections["experience"])
}

func TestRunPhase3_BelowThresholdIsFlagged(t *testing.T) {
	s := newStubs()
	s.reviewer = llmtest.NewStub(failingQA)
	h := newHarness(t, KindStandard, s, nil)
	st := newRun()

	require.NoError(t, h.orch.GenerateResume(context.Background(), st))

	assert.Equal(t, 2, s.editor.Calls())
	assert.Equal(t, 2, s.reviewer.Calls())
	assert.True(t, st.Flags.BelowQualityThreshold)
	assert.Equal(t, types.QAStatusFail, st.QAReport.OverallStatus)
	assert.NotContains(t, s.editor.Prompts()[0], "summary is generic")
	assert.Contains(t, s.editor.Prompts()[1], "summary is generic")

	loaded, err := state.Load(st.RunDir)
	require.NoError(t, err)
	assert.True(t, loaded.Flags.BelowQualityThreshold)
}

func TestRunPhase3_PassesOnRerun(t *testing.T) {
	s := newStubs()
	s.reviewer = llmtest.NewStub(failingQA, passingQA)
	h := newHarness(t, KindStandard, s, nil)
	st := newRun()

	require.NoError(t, h.orch.GenerateResume(context.Background(), st))
	assert.Equal(t, 2, s.reviewer.Calls())
	assert.False(t, st.Flags.BelowQualityThreshold)
	assert.Equal(t, 90, st.QAReport.OverallScore)
}

func TestRunPhase3_SkipStyleEdit(t *testing.T) {
	s := newStubs()
	h := newHarness(t, KindStandard, s, func(d *Deps) { d.Options.SkipStyleEdit = true })
	st := newRun()

	require.NoError(t, h.orch.GenerateResume(context.Background(), st))

	assert.Zero(t, s.editor.Calls())
	assert.True(t, st.StyleEdit.Skipped)
	assert.True(t, st.WorkflowConfig.SkipStyleEdit)
	assert.Equal(t, types.ConfigSourceCustomized, st.WorkflowConfig.Source)
	assert.False(t, st.WorkflowConfig.HasAgent(workflow.AgentStyleEditor))
}

func TestRunPhase1_RoleOverride(t *testing.T) {
	s := newStubs()
	h := newHarness(t, KindStandard, s, func(d *Deps) { d.Options.Role = types.RoleExecutive })
	st := newRun()

	require.NoError(t, h.orch.RunPhase1(context.Background(), st))

	want, err := h.orch.deps.Configurator.StaticConfigure(types.RoleExecutive)
	require.NoError(t, err)
	assert.Equal(t, want.SectionNames(), st.WorkflowConfig.SectionNames())
	assert.Equal(t, types.RoleCategory("technical_lead"), st.JobAnalysis.RoleCategory)
}

func TestPhaseFailure_KeepsLastCheckpoint(t *testing.T) {
	s := newStubs()
	s.drafter = llmtest.NewStub("I cannot write this resume.")
	h := newHarness(t, KindStandard, s, nil)
	st := newRun()

	err := h.orch.GenerateResume(context.Background(), st)

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, 2, phaseErr.Phase)
	var exhausted *agent.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "I cannot write this resume.", exhausted.LastRaw)

	assert.Equal(t, 2, s.drafter.Calls())
	assert.Zero(t, s.checker.Calls())
	assert.Nil(t, st.Draft)
	require.Len(t, st.Errors, 1)
	assert.Equal(t, 2, st.Errors[0].Phase)

	onDisk, err := state.Load(st.RunDir)
	require.NoError(t, err)
	assert.Equal(t, state.Phase1Complete, onDisk.Phase())
	assert.Empty(t, onDisk.Errors)
}

func TestPhase1Failure_WritesNothing(t *testing.T) {
	s := newStubs()
	s.analyzer = llmtest.NewStub(`{"company_name": "Acme"}`)
	h := newHarness(t, KindStandard, s, nil)
	st := newRun()

	err := h.orch.RunPhase1(context.Background(), st)
	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, 1, phaseErr.Phase)
	assert.Empty(t, st.RunDir)

	entries, err := os.ReadDir(h.base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type recordingMirror struct {
	phases []state.Phase
	err    error
}

func (m *recordingMirror) RecordPhase(_ context.Context, st *state.PipelineState) error {
	m.phases = append(m.phases, st.Phase())
	return m.err
}

func TestMirror(t *testing.T) {
	mirror := &recordingMirror{err: errors.New("database unavailable")}
	h := newHarness(t, KindStandard, newStubs(), func(d *Deps) { d.Mirror = mirror })

	require.NoError(t, h.orch.GenerateResume(context.Background(), newRun()))
	assert.Equal(t, []state.Phase{state.Phase1Complete, state.Phase2Complete, state.Phase3Complete}, mirror.phases)
}

func TestNew(t *testing.T) {
	base := newHarness(t, KindStandard, newStubs(), nil).orch.deps

	_, err := New("fancy", base)
	assert.ErrorContains(t, err, `unknown orchestrator kind "fancy"`)

	noConfig := base
	noConfig.Configurator = nil
	_, err = New(KindStandard, noConfig)
	assert.ErrorContains(t, err, "configurator")

	o, err := New(KindDynamic, base)
	require.NoError(t, err)
	assert.Equal(t, KindDynamic, o.Kind())
}

func TestRunPhase_RequiresClientsForItsAgents(t *testing.T) {
	s := newStubs()
	h := newHarness(t, KindStandard, s, func(d *Deps) {
		delete(d.AgentClients, workflow.AgentQualityReviewer)
	})
	st := newRun()

	require.NoError(t, h.orch.RunPhase1(context.Background(), st))
	require.NoError(t, h.orch.RunPhase2(context.Background(), st))

	err := h.orch.RunPhase3(context.Background(), st)
	assert.ErrorContains(t, err, "quality_reviewer")
	assert.Zero(t, s.editor.Calls())
	assert.Equal(t, state.Phase2Complete, st.Phase())

	h.orch.deps.Client = llmtest.NewStub(passingQA)
	require.NoError(t, h.orch.RunPhase3(context.Background(), st))
	assert.Equal(t, state.Phase3Complete, st.Phase())
}

// stateOnly builds an orchestrator without any backend, as the CLI does for
// commands that only change the saved run
func stateOnly(t *testing.T, h *harness, mirror Mirror) *Orchestrator {
	t.Helper()
	o, err := New(KindStandard, Deps{
		Configurator: h.orch.deps.Configurator,
		Options:      h.orch.deps.Options,
		Mirror:       mirror,
		Now:          func() time.Time { return testNow.Add(time.Hour) },
	})
	require.NoError(t, err)
	return o
}

func TestCustomize(t *testing.T) {
	h := newHarness(t, KindStandard, newStubs(), nil)
	st := newRun()
	require.NoError(t, h.orch.RunPhase1(context.Background(), st))
	require.True(t, st.WorkflowConfig.HasAgent(workflow.AgentStyleEditor))

	mirror := &recordingMirror{}
	o := stateOnly(t, h, mirror)
	err := o.Customize(context.Background(), st, []workflow.Edit{{Action: workflow.ActionDisableAgent, Agent: workflow.AgentStyleEditor}})
	require.NoError(t, err)

	assert.True(t, st.WorkflowConfig.SkipStyleEdit)
	assert.Equal(t, types.ConfigSourceCustomized, st.WorkflowConfig.Source)
	assert.Equal(t, testNow.Add(time.Hour), st.UpdatedAt)
	assert.Equal(t, []state.Phase{state.Phase1Complete}, mirror.phases)

	loaded, err := state.Load(st.RunDir)
	require.NoError(t, err)
	assert.Equal(t, st.WorkflowConfig, loaded.WorkflowConfig)
	assert.Equal(t, state.Phase1Complete, loaded.Phase())
}

func TestCustomize_RejectedEditsLeaveRunUnchanged(t *testing.T) {
	h := newHarness(t, KindStandard, newStubs(), nil)
	st := newRun()
	require.NoError(t, h.orch.RunPhase1(context.Background(), st))
	before := *st.WorkflowConfig

	err := stateOnly(t, h, nil).Customize(context.Background(), st, []workflow.Edit{{Action: workflow.ActionDisable, Section: "experience"}})
	var coreErr *workflow.CoreSectionError
	require.ErrorAs(t, err, &coreErr)
	assert.Equal(t, before, *st.WorkflowConfig)

	loaded, err := state.Load(st.RunDir)
	require.NoError(t, err)
	assert.Equal(t, before, *loaded.WorkflowConfig)
}

func TestCustomize_OnlyBetweenPhase1AndPhase2(t *testing.T) {
	h := newHarness(t, KindStandard, newStubs(), nil)
	edits := []workflow.Edit{{Action: workflow.ActionDisableAgent, Agent: workflow.AgentStyleEditor}}

	err := stateOnly(t, h, nil).Customize(context.Background(), newRun(), edits)
	assert.ErrorContains(t, err, "only change before phase 2")

	st := newRun()
	require.NoError(t, h.orch.RunPhase1(context.Background(), st))
	partial := *st
	partial.Draft = &types.ResumeDraft{Sections: map[string]any{"contact": map[string]any{"name": "Ada"}}}
	err = stateOnly(t, h, nil).Customize(context.Background(), &partial, edits)
	assert.ErrorContains(t, err, "only change before phase 2")

	require.NoError(t, h.orch.RunPhase2(context.Background(), st))
	err = stateOnly(t, h, nil).Customize(context.Background(), st, edits)
	assert.ErrorContains(t, err, "only change before phase 2")
	assert.True(t, st.WorkflowConfig.HasAgent(workflow.AgentStyleEditor))
}

func TestRecordRender(t *testing.T) {
	h := newHarness(t, KindStandard, newStubs(), nil)
	st := newRun()
	o := stateOnly(t, h, nil)

	require.NoError(t, h.orch.RunPhase1(context.Background(), st))
	assert.ErrorContains(t, o.RecordRender(context.Background(), st, "resume.pdf"), "complete phase 3")
	assert.Empty(t, st.PDFPath)

	require.NoError(t, h.orch.GenerateResume(context.Background(), st))
	pdf := filepath.Join(st.RunDir, "resume.pdf")
	require.NoError(t, o.RecordRender(context.Background(), st, pdf))

	loaded, err := state.Load(st.RunDir)
	require.NoError(t, err)
	assert.Equal(t, pdf, loaded.PDFPath)
	assert.Equal(t, state.Phase3Complete, loaded.Phase())
}

func TestCheckPrerequisites(t *testing.T) {
	assert.ErrorContains(t, CheckPrerequisites(newRun(), 4), "unknown phase")
	assert.NoError(t, CheckPrerequisites(newRun(), 1))

	for _, p := range Phases {
		assert.True(t, strings.TrimSpace(p.Name) != "")
		assert.Len(t, p.Agents, 2)
	}
}
