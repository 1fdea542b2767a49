package state

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// RunSummary describes one run directory for listing
type RunSummary struct {
	Dir       string
	RunID     string
	Phase     Phase
	Company   string
	Title     string
	UpdatedAt time.Time
	Flags     Flags
}

// ListRuns loads every run under base, newest first. Directories without a
// readable state file are skipped.
func ListRuns(base string) ([]RunSummary, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunSummary
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		st, err := Load(filepath.Join(base, e.Name()))
		if err != nil {
			continue
		}
		summary := RunSummary{
			Dir:       st.RunDir,
			RunID:     st.RunID,
			Phase:     st.Phase(),
			UpdatedAt: st.UpdatedAt,
			Flags:     st.Flags,
		}
		if st.JobAnalysis != nil {
			summary.Company = st.JobAnalysis.CompanyName
			summary.Title = st.JobAnalysis.JobTitle
		}
		runs = append(runs, summary)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].UpdatedAt.After(runs[j].UpdatedAt)
	})
	return runs, nil
}
