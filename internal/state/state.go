// Package state holds the resumable checkpoint of one pipeline run. The state is
// written as a single JSON file in the run directory after every completed phase.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/types"
)

// SchemaVersion is bumped whenever the file layout changes incompatibly
const SchemaVersion = "2"

// FileName is the state file inside a run directory
const FileName = "pipeline_state.json"

// Phase is how far a run has progressed
type Phase int

// Phases in order
const (
	NotStarted Phase = iota
	Phase1Complete
	Phase2Complete
	Phase3Complete
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case Phase1Complete:
		return "phase1_complete"
	case Phase2Complete:
		return "phase2_complete"
	case Phase3Complete:
		return "phase3_complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Stage names one output slot of the state
type Stage string

// Stages in pipeline order
const (
	StageJobDescription Stage = "job_description"
	StageJobAnalysis    Stage = "job_analysis"
	StageWorkflowConfig Stage = "workflow_config"
	StageSelection      Stage = "content_selection"
	StageDraft          Stage = "draft"
	StageValidation     Stage = "validation_report"
	StageStyleEdit      Stage = "style_edit"
	StageQAReport       Stage = "qa_report"
)

// Stages returns every stage in pipeline order
func Stages() []Stage {
	return []Stage{
		StageJobDescription, StageJobAnalysis, StageWorkflowConfig, StageSelection,
		StageDraft, StageValidation, StageStyleEdit, StageQAReport,
	}
}

// Flags mark runs that completed but need a human look
type Flags struct {
	UnresolvedFabrication bool `json:"unresolved_fabrication,omitempty"`
	BelowQualityThreshold bool `json:"below_quality_threshold,omitempty"`
}

// ErrorEntry is one failure recorded during a run
type ErrorEntry struct {
	Time    time.Time `json:"time"`
	Phase   int       `json:"phase"`
	Message string    `json:"message"`
}

// PipelineState is the checkpoint of one run
type PipelineState struct {
	SchemaVersion string    `json:"schema_version"`
	RunID         string    `json:"run_id"`
	RunDir        string    `json:"run_dir,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	JobSource     string    `json:"job_source,omitempty"` // file path or URL

	JobDescription   string                  `json:"job_description,omitempty"`
	JobAnalysis      *types.JobAnalysis      `json:"job_analysis,omitempty"`
	WorkflowConfig   *types.WorkflowConfig   `json:"workflow_config,omitempty"`
	Selection        *types.SelectionResult  `json:"content_selection,omitempty"`
	Draft            *types.ResumeDraft      `json:"draft,omitempty"`
	ValidationReport *types.ValidationReport `json:"validation_report,omitempty"`
	StyleEdit        *types.StyleEdit        `json:"style_edit,omitempty"`
	QAReport         *types.QAReport         `json:"qa_report,omitempty"`

	Flags   Flags        `json:"flags"`
	Errors  []ErrorEntry `json:"errors,omitempty"`
	PDFPath string       `json:"pdf_path,omitempty"`
}

// New starts an empty run for a job description
func New(jobDescription, jobSource string, now time.Time) *PipelineState {
	now = now.UTC()
	return &PipelineState{
		SchemaVersion:  SchemaVersion,
		RunID:          uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
		JobSource:      jobSource,
		JobDescription: jobDescription,
	}
}

// Phase reports the last completed phase
func (s *PipelineState) Phase() Phase {
	switch {
	case s.StyleEdit != nil && s.QAReport != nil:
		return Phase3Complete
	case s.Draft != nil && s.ValidationReport != nil:
		return Phase2Complete
	case s.JobAnalysis != nil && s.WorkflowConfig != nil && s.Selection != nil:
		return Phase1Complete
	default:
		return NotStarted
	}
}

// StageOutput returns the value stored for stage or ErrNotYetRun
func (s *PipelineState) StageOutput(stage Stage) (any, error) {
	present, value, err := s.stage(stage)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, ErrNotYetRun
	}
	return value, nil
}

func (s *PipelineState) stage(stage Stage) (bool, any, error) {
	switch stage {
	case StageJobDescription:
		return s.JobDescription != "", s.JobDescription, nil
	case StageJobAnalysis:
		return s.JobAnalysis != nil, s.JobAnalysis, nil
	case StageWorkflowConfig:
		return s.WorkflowConfig != nil, s.WorkflowConfig, nil
	case StageSelection:
		return s.Selection != nil, s.Selection, nil
	case StageDraft:
		return s.Draft != nil, s.Draft, nil
	case StageValidation:
		return s.ValidationReport != nil, s.ValidationReport, nil
	case StageStyleEdit:
		return s.StyleEdit != nil, s.StyleEdit, nil
	case StageQAReport:
		return s.QAReport != nil, s.QAReport, nil
	default:
		return false, nil, fmt.Errorf("unknown stage %q", stage)
	}
}

// Validate checks that no stage is populated while an earlier one is empty
func (s *PipelineState) Validate() error {
	var gap Stage
	for _, stage := range Stages() {
		present, _, _ := s.stage(stage)
		switch {
		case !present && gap == "":
			gap = stage
		case present && gap != "":
			return fmt.Errorf("%s is set but %s is not", stage, gap)
		}
	}
	return nil
}

// Path is the state file location
func (s *PipelineState) Path() string {
	return filepath.Join(s.RunDir, FileName)
}

// AddError appends to the in-memory error log
func (s *PipelineState) AddError(phase int, err error, now time.Time) {
	s.Errors = append(s.Errors, ErrorEntry{Time: now.UTC(), Phase: phase, Message: err.Error()})
}

// Save writes the state atomically: a temp file in the run directory is synced
// and then renamed over the state file.
func (s *PipelineState) Save() error {
	if s.RunDir == "" {
		return fmt.Errorf("run directory is not set")
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("refusing to save inconsistent state: %w", err)
	}
	if err := os.MkdirAll(s.RunDir, 0o755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp, err := os.CreateTemp(s.RunDir, ".pipeline_state-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close state: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Load reads a state file. path may be the file or its run directory.
func Load(path string) (*PipelineState, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingStateError{Path: path}
		}
		return nil, &CorruptStateError{Path: path, Cause: err}
	}

	var st PipelineState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, &CorruptStateError{Path: path, Cause: err}
	}
	if st.SchemaVersion != SchemaVersion {
		return nil, &CorruptStateError{Path: path, Cause: fmt.Errorf("schema version %q, expected %q", st.SchemaVersion, SchemaVersion)}
	}
	if err := st.Validate(); err != nil {
		return nil, &CorruptStateError{Path: path, Cause: err}
	}

	// the run directory may have been moved since it was written
	st.RunDir = filepath.Dir(path)
	return &st, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	s = unsafeChars.ReplaceAllString(strings.ToLower(s), "_")
	s = strings.Trim(s, "_")
	if len(s) > 40 {
		s = strings.TrimRight(s[:40], "_")
	}
	return s
}

// RunDir names the directory for a run: <company>_<title>_<YYYYmmdd_HHMMSS>
func RunDir(base, company, title string, now time.Time) string {
	var parts []string
	for _, p := range []string{slug(company), slug(title)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "run")
	}
	parts = append(parts, now.UTC().Format("20060102_150405"))
	return filepath.Join(base, strings.Join(parts, "_"))
}
