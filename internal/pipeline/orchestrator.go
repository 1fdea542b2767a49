// Package pipeline sequences the six agents into three checkpointed phases.
// Each phase either completes and saves the run state or leaves the state at
// the last completed phase.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/drafting"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/review"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/selection"
	"github.com/jonathan/resume-tailor/internal/state"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/validation"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// Kind picks how the orchestrator configures a run
type Kind string

const (
	// KindStandard uses the role's static workflow and a single content selector
	KindStandard Kind = "standard"
	// KindDynamic configures the workflow from the analysis and selects content in parallel
	KindDynamic Kind = "dynamic"
)

// Progress categories
const (
	CategoryAnalysis  = "analysis"
	CategorySelection = "selection"
	CategoryDrafting  = "drafting"
	CategoryReview    = "review"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Phase    int    `json:"phase"`
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Mirror receives a copy of the state after every completed phase
type Mirror interface {
	RecordPhase(ctx context.Context, st *state.PipelineState) error
}

// Options are the retry and workflow policies of a run
type Options struct {
	FabricationRetries int
	QARetries          int
	QAThreshold        int
	MaxAttempts        int           // per agent
	AgentTimeout       time.Duration // per backend call
	BaseDir            string        // parent of run directories
	SkipStyleEdit      bool
	Edits              []workflow.Edit    // applied to the configured workflow
	Role               types.RoleCategory // overrides the analyzed role for the standard workflow
}

// DefaultOptions returns the standard retry policy
func DefaultOptions() Options {
	return Options{
		FabricationRetries: 2,
		QARetries:          1,
		QAThreshold:        80,
		MaxAttempts:        agent.DefaultMaxAttempts,
		AgentTimeout:       agent.DefaultTimeout,
		BaseDir:            "runs",
	}
}

// Deps is everything an orchestrator needs
type Deps struct {
	Client       llm.Client            // backend for every agent
	AgentClients map[string]llm.Client // per-agent backend overrides
	Configurator *workflow.Configurator
	Candidates   *types.CandidateDatabase
	Options      Options
	Mirror       Mirror
	Logger       *slog.Logger
	OnProgress   ProgressCallback
	Now          func() time.Time
}

// Orchestrator runs the three phases over a PipelineState
type Orchestrator struct {
	kind Kind
	deps Deps
	log  *slog.Logger
}

// New creates an orchestrator of the given kind
func New(kind Kind, deps Deps) (*Orchestrator, error) {
	if kind != KindStandard && kind != KindDynamic {
		return nil, fmt.Errorf("unknown orchestrator kind %q", kind)
	}
	if deps.Configurator == nil {
		return nil, errors.New("workflow configurator is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{kind: kind, deps: deps, log: deps.Logger}, nil
}

// Kind returns the orchestrator kind
func (o *Orchestrator) Kind() Kind {
	return o.kind
}

// GenerateResume runs every phase the state has not completed yet
func (o *Orchestrator) GenerateResume(ctx context.Context, st *state.PipelineState) error {
	if err := o.RunPhase1(ctx, st); err != nil {
		return err
	}
	if err := o.RunPhase2(ctx, st); err != nil {
		return err
	}
	return o.RunPhase3(ctx, st)
}

// RunPhase1 analyzes the job, resolves the workflow and selects content
func (o *Orchestrator) RunPhase1(ctx context.Context, st *state.PipelineState) error {
	if st.Phase() >= state.Phase1Complete {
		o.log.Info("phase already complete, skipping", "phase", 1, "run_id", st.RunID)
		return nil
	}
	if err := CheckPrerequisites(st, 1); err != nil {
		return err
	}
	if err := o.checkClients(1); err != nil {
		return err
	}
	if o.deps.Candidates == nil {
		return o.fail(st, 1, errors.New("candidate database is required"))
	}

	agentLog := state.NewAgentLog(st.RunDir)
	opts := o.agentOptions(agentLog)
	configurator := o.deps.Configurator

	o.emit(st, 1, "job_analysis", CategoryAnalysis, "Phase 1/3: analyzing job description", nil)
	analyzer := parsing.NewAnalyzer(o.client(workflow.AgentJobAnalyzer), configurator.Registry(), configurator.Catalog(), opts)
	analysis, err := analyzer.Execute(ctx, st.JobDescription)
	if err != nil {
		return o.fail(st, 1, err)
	}
	o.emit(st, 1, "job_analysis", CategoryAnalysis,
		fmt.Sprintf("Analyzed %s at %s (%s)", analysis.JobTitle, analysis.CompanyName, analysis.RoleCategory), analysis)

	cfg, err := o.configure(analysis)
	if err != nil {
		return o.fail(st, 1, err)
	}
	o.emit(st, 1, "workflow_config", CategoryAnalysis,
		fmt.Sprintf("Workflow %s with %d sections", cfg.Template, len(cfg.EnabledSections)), cfg)

	o.emit(st, 1, "content_selection", CategorySelection, "Phase 1/3: selecting content", nil)
	result, err := o.selector(opts).Select(ctx, analysis, o.deps.Candidates)
	if err != nil {
		return o.fail(st, 1, err)
	}
	if limit := cfg.Constraints.MaxBulletsPerRole; limit > 0 {
		result.Removed = append(result.Removed, selection.TrimBullets(&result.Selection, analysis.Keywords, limit)...)
	}
	for _, w := range result.Warnings {
		o.log.Warn("content selection warning", "warning", w)
	}
	o.emit(st, 1, "content_selection", CategorySelection,
		fmt.Sprintf("Selected %d experiences, %d projects", len(result.Selection.Experiences), len(result.Selection.Projects)), result)

	next := *st
	if next.RunDir == "" {
		next.RunDir = state.RunDir(o.deps.Options.BaseDir, analysis.CompanyName, analysis.JobTitle, st.CreatedAt)
	}
	if err := agentLog.SetDir(next.RunDir); err != nil {
		o.log.Warn("failed to write agent outputs", "error", err)
	}

	next.JobAnalysis = analysis
	next.WorkflowConfig = cfg
	next.Selection = result
	return o.commit(ctx, st, &next, 1)
}

// RunPhase2 drafts the resume and checks it for fabrication
func (o *Orchestrator) RunPhase2(ctx context.Context, st *state.PipelineState) error {
	if st.Phase() >= state.Phase2Complete {
		o.log.Info("phase already complete, skipping", "phase", 2, "run_id", st.RunID)
		return nil
	}
	if err := CheckPrerequisites(st, 2); err != nil {
		return err
	}
	if err := o.checkClients(2); err != nil {
		return err
	}

	opts := o.agentOptions(state.NewAgentLog(st.RunDir))
	cfg := st.WorkflowConfig
	sel := &st.Selection.Selection

	schema, err := o.deps.Configurator.Registry().BuildResumeSchema(cfg.SectionNames())
	if err != nil {
		return o.fail(st, 2, err)
	}

	o.emit(st, 2, "draft", CategoryDrafting, "Phase 2/3: drafting resume", nil)
	drafter := drafting.NewDrafter(o.client(workflow.AgentResumeDrafter), opts, o.log)
	draft, err := drafter.Draft(ctx, drafting.Input{Analysis: st.JobAnalysis, Selection: sel, Config: cfg, Schema: schema})
	if err != nil {
		return o.fail(st, 2, err)
	}
	o.emit(st, 2, "draft", CategoryDrafting, fmt.Sprintf("Drafted %d sections", len(draft.Sections)), draft)

	o.emit(st, 2, "validation", CategoryDrafting, "Phase 2/3: checking for fabrication", nil)
	checker := validation.NewChecker(o.client(workflow.AgentFabricationValidator), opts, o.log)
	report, err := checker.Run(ctx, validation.Input{Draft: draft, Selection: sel, Schema: schema}, o.deps.Options.FabricationRetries)
	if err != nil {
		return o.fail(st, 2, err)
	}
	unresolved := report.HasUnresolvedFabrication()
	if unresolved {
		o.log.Warn("fabrication unresolved after retries, continuing",
			"run_id", st.RunID, "attempts", report.Attempts)
	}
	o.emit(st, 2, "validation", CategoryDrafting,
		fmt.Sprintf("Fabrication check finished after %d passes (valid=%t)", report.Attempts, report.IsValid), report)

	next := *st
	next.Draft = draft
	next.ValidationReport = report
	next.Flags.UnresolvedFabrication = unresolved
	return o.commit(ctx, st, &next, 2)
}

// RunPhase3 polishes the corrected draft and reviews it. A score below the
// threshold re-runs the phase with the review as feedback; a run that stays
// below is flagged, not failed.
func (o *Orchestrator) RunPhase3(ctx context.Context, st *state.PipelineState) error {
	if st.Phase() >= state.Phase3Complete {
		o.log.Info("phase already complete, skipping", "phase", 3, "run_id", st.RunID)
		return nil
	}
	if err := CheckPrerequisites(st, 3); err != nil {
		return err
	}
	if err := o.checkClients(3); err != nil {
		return err
	}

	opts := o.agentOptions(state.NewAgentLog(st.RunDir))
	cfg := st.WorkflowConfig
	draft := &st.ValidationReport.CorrectedDraft
	threshold := o.deps.Options.QAThreshold

	schema, err := o.deps.Configurator.Registry().BuildResumeSchema(cfg.SectionNames())
	if err != nil {
		return o.fail(st, 3, err)
	}

	editor := rewriting.NewEditor(o.client(workflow.AgentStyleEditor), opts, o.log)
	reviewer := review.NewReviewer(o.client(workflow.AgentQualityReviewer), opts, o.log)

	var (
		edit   *types.StyleEdit
		report *types.QAReport
	)
	for attempt := 0; ; attempt++ {
		if cfg.SkipStyleEdit || !cfg.HasAgent(workflow.AgentStyleEditor) {
			o.emit(st, 3, "style_edit", CategoryReview, "Phase 3/3: style edit disabled", nil)
			edit, err = rewriting.Skip(draft)
		} else {
			o.emit(st, 3, "style_edit", CategoryReview, "Phase 3/3: editing style", nil)
			edit, err = editor.Edit(ctx, rewriting.Input{Analysis: st.JobAnalysis, Draft: draft, Schema: schema, Review: report})
		}
		if err != nil {
			return o.fail(st, 3, err)
		}

		o.emit(st, 3, "qa_review", CategoryReview, "Phase 3/3: reviewing quality", nil)
		report, err = reviewer.Review(ctx, review.Input{Analysis: st.JobAnalysis, Draft: &edit.EditedDraft})
		if err != nil {
			return o.fail(st, 3, err)
		}
		o.emit(st, 3, "qa_review", CategoryReview,
			fmt.Sprintf("Quality score %d (%s)", report.OverallScore, report.OverallStatus), report)

		if report.Passes(threshold) || attempt >= o.deps.Options.QARetries {
			break
		}
		o.log.Info("quality below threshold, re-running phase 3",
			"score", report.OverallScore, "threshold", threshold, "attempt", attempt+2)
	}

	below := !report.Passes(threshold)
	if below {
		o.log.Warn("quality still below threshold, completing anyway",
			"run_id", st.RunID, "score", report.OverallScore, "threshold", threshold)
	}

	next := *st
	next.StyleEdit = edit
	next.QAReport = report
	next.Flags.BelowQualityThreshold = below
	return o.commit(ctx, st, &next, 3)
}

// configure resolves the workflow for this orchestrator kind and applies the
// configured edits
func (o *Orchestrator) configure(analysis *types.JobAnalysis) (*types.WorkflowConfig, error) {
	c := o.deps.Configurator

	var cfg *types.WorkflowConfig
	var err error
	if o.kind == KindDynamic {
		cfg, err = c.AutoConfigure(analysis)
	} else {
		role := analysis.RoleCategory
		if o.deps.Options.Role != "" {
			role = o.deps.Options.Role
		}
		cfg, err = c.StaticConfigure(role)
	}
	if err != nil {
		return nil, err
	}

	edits := o.deps.Options.Edits
	if o.deps.Options.SkipStyleEdit && cfg.HasAgent(workflow.AgentStyleEditor) {
		edits = append(append([]workflow.Edit(nil), edits...),
			workflow.Edit{Action: workflow.ActionDisableAgent, Agent: workflow.AgentStyleEditor})
	}
	if len(edits) == 0 {
		return cfg, nil
	}
	return c.Customize(cfg, edits)
}

func (o *Orchestrator) selector(opts agent.Options) selection.Selector {
	client := o.client(workflow.AgentContentSelector)
	if o.kind == KindDynamic {
		return selection.NewAggregator(client, opts, o.log)
	}
	return selection.NewSingleSelector(client, opts, o.log)
}

func (o *Orchestrator) client(agentName string) llm.Client {
	if c, ok := o.deps.AgentClients[agentName]; ok && c != nil {
		return c
	}
	return o.deps.Client
}

func (o *Orchestrator) agentOptions(rec agent.Recorder) agent.Options {
	return agent.Options{
		MaxAttempts: o.deps.Options.MaxAttempts,
		Timeout:     o.deps.Options.AgentTimeout,
		Recorder:    rec,
		Logger:      o.log,
	}
}

// Customize applies workflow edits to a run between phase 1 and phase 2 and
// saves the result as its phase 1 checkpoint. Edits touch sections and agents,
// never constraints, so the phase 1 selection stays valid.
func (o *Orchestrator) Customize(ctx context.Context, st *state.PipelineState, edits []workflow.Edit) error {
	if st.Phase() != state.Phase1Complete || st.Draft != nil {
		return fmt.Errorf("run %s is at %s; the workflow can only change before phase 2", st.RunID, st.Phase())
	}
	if len(edits) == 0 {
		return nil
	}
	cfg, err := o.deps.Configurator.Customize(st.WorkflowConfig, edits)
	if err != nil {
		return err
	}

	next := *st
	next.WorkflowConfig = cfg
	if err := o.persist(ctx, st, &next); err != nil {
		return err
	}
	o.log.Info("workflow updated", "run_id", st.RunID, "edits", len(edits))
	o.emit(st, 1, "workflow_config", CategoryAnalysis,
		fmt.Sprintf("Workflow %s customized with %d edits", cfg.Template, len(edits)), cfg)
	return nil
}

// RecordRender stores the path of the rendered resume of a completed run
func (o *Orchestrator) RecordRender(ctx context.Context, st *state.PipelineState, pdfPath string) error {
	if st.Phase() < state.Phase3Complete {
		return fmt.Errorf("run %s is at %s; complete phase 3 before rendering", st.RunID, st.Phase())
	}
	next := *st
	next.PDFPath = pdfPath
	return o.persist(ctx, st, &next)
}

// commit persists next, the state with the phase's output
func (o *Orchestrator) commit(ctx context.Context, st, next *state.PipelineState, phase int) error {
	if err := o.persist(ctx, st, next); err != nil {
		return o.fail(st, phase, err)
	}
	o.emit(st, phase, "checkpoint", "state", fmt.Sprintf("Phase %d/3 complete, state saved to %s", phase, st.Path()), nil)
	return nil
}

// persist saves next and only then replaces st with it. The mirror gets the
// saved state; its failures are logged.
func (o *Orchestrator) persist(ctx context.Context, st, next *state.PipelineState) error {
	next.UpdatedAt = o.deps.Now().UTC()
	if err := next.Save(); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	*st = *next

	if o.deps.Mirror != nil {
		if err := o.deps.Mirror.RecordPhase(ctx, st); err != nil {
			o.log.Warn("failed to mirror run state", "run_id", st.RunID, "phase", st.Phase(), "error", err)
		}
	}
	return nil
}

// checkClients verifies every agent of phase has a backend
func (o *Orchestrator) checkClients(phase int) error {
	for _, name := range Phases[phase-1].Agents {
		if o.client(name) == nil {
			return fmt.Errorf("phase %d cannot run: no LLM client for agent %s", phase, name)
		}
	}
	return nil
}

// fail records the error in memory only; the saved state stays at the last
// completed phase
func (o *Orchestrator) fail(st *state.PipelineState, phase int, err error) error {
	st.AddError(phase, err, o.deps.Now())
	o.log.Error("phase failed", "phase", phase, "run_id", st.RunID, "error", err)
	return &PhaseError{Phase: phase, Cause: err}
}

// emit calls the progress callback if configured
func (o *Orchestrator) emit(st *state.PipelineState, phase int, step, category, message string, content any) {
	if o.deps.OnProgress != nil {
		o.deps.OnProgress(ProgressEvent{
			Phase:    phase,
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    st.RunID,
			Content:  content,
		})
	}
}
