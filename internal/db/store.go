package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/resume-tailor/internal/state"
)

// Store writes completed phases to the run tables
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database
func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

// RunRecord is one row of pipeline_runs
type RunRecord struct {
	RunID                 string
	RunDir                string
	JobSource             string
	Company               string
	RoleTitle             string
	Phase                 int
	QAScore               *int
	UnresolvedFabrication bool
	BelowQualityThreshold bool
	ErrorCount            int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

const upsertRunSQL = `INSERT INTO pipeline_runs (run_id, run_dir, job_source, company, role_title, phase, qa_score,
    unresolved_fabrication, below_quality_threshold, error_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (run_id) DO UPDATE SET run_dir = EXCLUDED.run_dir, company = EXCLUDED.company,
    role_title = EXCLUDED.role_title, phase = EXCLUDED.phase, qa_score = EXCLUDED.qa_score,
    unresolved_fabrication = EXCLUDED.unresolved_fabrication,
    below_quality_threshold = EXCLUDED.below_quality_threshold,
    error_count = EXCLUDED.error_count, updated_at = EXCLUDED.updated_at`

const upsertArtifactSQL = `INSERT INTO run_artifacts (run_id, stage, content, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (run_id, stage) DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at`

// RecordPhase upserts the run row and every stage output present in st, in one
// transaction.
func (s *Store) RecordPhase(ctx context.Context, st *state.PipelineState) error {
	run := recordFromState(st)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, upsertRunSQL,
		run.RunID, run.RunDir, nullIfEmpty(run.JobSource), nullIfEmpty(run.Company), nullIfEmpty(run.RoleTitle),
		run.Phase, run.QAScore, run.UnresolvedFabrication, run.BelowQualityThreshold, run.ErrorCount,
		run.CreatedAt, run.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert run %s: %w", run.RunID, err)
	}

	for _, stage := range state.Stages() {
		out, err := st.StageOutput(stage)
		if errors.Is(err, state.ErrNotYetRun) {
			continue
		}
		if err != nil {
			return err
		}
		content, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", stage, err)
		}
		if _, err := tx.ExecContext(ctx, upsertArtifactSQL, run.RunID, string(stage), content, run.UpdatedAt); err != nil {
			return fmt.Errorf("failed to save artifact %s: %w", stage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetArtifact returns the stored JSON for a stage, or nil when the stage was
// never mirrored
func (s *Store) GetArtifact(ctx context.Context, runID string, stage state.Stage) ([]byte, error) {
	var content []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM run_artifacts WHERE run_id = $1 AND stage = $2`,
		runID, string(stage),
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact %s: %w", stage, err)
	}
	return content, nil
}

// RecentRuns lists the most recently updated runs
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, run_dir, COALESCE(job_source, ''), COALESCE(company, ''), COALESCE(role_title, ''),
		        phase, qa_score, unresolved_fabrication, below_quality_threshold, error_count, created_at, updated_at
		 FROM pipeline_runs ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var score sql.NullInt64
		if err := rows.Scan(&r.RunID, &r.RunDir, &r.JobSource, &r.Company, &r.RoleTitle, &r.Phase, &score,
			&r.UnresolvedFabrication, &r.BelowQualityThreshold, &r.ErrorCount, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			r.QAScore = &v
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func recordFromState(st *state.PipelineState) RunRecord {
	r := RunRecord{
		RunID:                 st.RunID,
		RunDir:                st.RunDir,
		JobSource:             st.JobSource,
		Phase:                 int(st.Phase()),
		UnresolvedFabrication: st.Flags.UnresolvedFabrication,
		BelowQualityThreshold: st.Flags.BelowQualityThreshold,
		ErrorCount:            len(st.Errors),
		CreatedAt:             st.CreatedAt,
		UpdatedAt:             st.UpdatedAt,
	}
	if st.JobAnalysis != nil {
		r.Company = st.JobAnalysis.CompanyName
		r.RoleTitle = st.JobAnalysis.JobTitle
	}
	if st.QAReport != nil {
		score := st.QAReport.OverallScore
		r.QAScore = &score
	}
	return r
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
