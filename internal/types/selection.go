// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Selection field names. Each parallel sub-selector owns exactly one of these.
const (
	FieldSkills         = "skills"
	FieldExperiences    = "experiences"
	FieldProjects       = "projects"
	FieldEducation      = "education"
	FieldPublications   = "publications"
	FieldWorkSamples    = "work_samples"
	FieldContact        = "contact"
	FieldCertifications = "certifications"
)

// ContentSelection is the candidate material judged relevant to the job
type ContentSelection struct {
	Contact        Contact             `json:"contact"`
	Experiences    []Experience        `json:"experiences"`
	Projects       []Project           `json:"projects,omitempty"`
	Education      []Education         `json:"education"`
	Publications   []Publication       `json:"publications,omitempty"`
	Skills         map[string][]string `json:"skills"`
	WorkSamples    []WorkSample        `json:"work_samples,omitempty"`
	Certifications []Certification     `json:"certifications,omitempty"`
	Reasoning      map[string]string   `json:"reasoning,omitempty"` // field -> why it was chosen
}

// SourceIDs returns the IDs of every selected record
func (s *ContentSelection) SourceIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, e := range s.Experiences {
		ids[e.ID] = true
	}
	for _, p := range s.Projects {
		ids[p.ID] = true
	}
	for _, e := range s.Education {
		ids[e.ID] = true
	}
	for _, p := range s.Publications {
		ids[p.ID] = true
	}
	for _, w := range s.WorkSamples {
		ids[w.ID] = true
	}
	for _, c := range s.Certifications {
		ids[c.ID] = true
	}
	return ids
}

// SelectionResult is a ContentSelection plus where each field came from
type SelectionResult struct {
	Selection  ContentSelection  `json:"selection"`
	Provenance map[string]string `json:"provenance,omitempty"` // field -> producer
	Warnings   []string          `json:"warnings,omitempty"`
	Removed    []string          `json:"removed,omitempty"` // bullets dropped as near-duplicates or over budget
}
