package selection

import (
	"context"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Selector produces a ContentSelection for a job
type Selector interface {
	Select(ctx context.Context, analysis *types.JobAnalysis, db *types.CandidateDatabase) (*types.SelectionResult, error)
}

// ProvenanceDatabase marks fields copied straight from the candidate database
const ProvenanceDatabase = "database"

// DefaultDedupeThreshold is the similarity at which two bullets count as duplicates
const DefaultDedupeThreshold = 0.80

// copyFromDatabase fills the fields that never go through an agent
func copyFromDatabase(sel *types.ContentSelection, db *types.CandidateDatabase, provenance map[string]string) {
	sel.Contact = db.Contact
	provenance[types.FieldContact] = ProvenanceDatabase
	if len(db.Certifications) > 0 {
		sel.Certifications = append([]types.Certification(nil), db.Certifications...)
		provenance[types.FieldCertifications] = ProvenanceDatabase
	}
}
