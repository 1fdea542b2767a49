// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CandidateDatabase is the read-only source of truth about the candidate.
// Every record carries a stable ID that drafts cite as source_id.
type CandidateDatabase struct {
	Contact        Contact             `json:"contact" yaml:"contact"`
	Summary        string              `json:"summary,omitempty" yaml:"summary,omitempty"`
	Experiences    []Experience        `json:"experiences" yaml:"experiences"`
	Projects       []Project           `json:"projects,omitempty" yaml:"projects,omitempty"`
	Education      []Education         `json:"education" yaml:"education"`
	Publications   []Publication       `json:"publications,omitempty" yaml:"publications,omitempty"`
	Skills         map[string][]string `json:"skills" yaml:"skills"`
	Certifications []Certification     `json:"certifications,omitempty" yaml:"certifications,omitempty"`
	WorkSamples    []WorkSample        `json:"work_samples,omitempty" yaml:"work_samples,omitempty"`
}

// Contact is the candidate's contact block
type Contact struct {
	Name     string   `json:"name" yaml:"name" validate:"required"`
	Email    string   `json:"email,omitempty" yaml:"email,omitempty"`
	Phone    string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Location string   `json:"location,omitempty" yaml:"location,omitempty"`
	Links    []string `json:"links,omitempty" yaml:"links,omitempty"`
}

// Experience is a single role held by the candidate
type Experience struct {
	ID        string   `json:"id" yaml:"id" validate:"required"`
	Company   string   `json:"company" yaml:"company"`
	Title     string   `json:"title" yaml:"title"`
	Location  string   `json:"location,omitempty" yaml:"location,omitempty"`
	StartDate string   `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Bullets   []string `json:"bullets" yaml:"bullets"`
	Skills    []string `json:"skills,omitempty" yaml:"skills,omitempty"`
}

// Project is a side or open-source project
type Project struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string   `json:"url,omitempty" yaml:"url,omitempty"`
	Bullets     []string `json:"bullets,omitempty" yaml:"bullets,omitempty"`
	Skills      []string `json:"skills,omitempty" yaml:"skills,omitempty"`
}

// Education is a degree or program
type Education struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Institution string `json:"institution" yaml:"institution"`
	Degree      string `json:"degree" yaml:"degree"`
	Field       string `json:"field,omitempty" yaml:"field,omitempty"`
	StartDate   string `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Details     string `json:"details,omitempty" yaml:"details,omitempty"`
}

// Publication is a paper, article or talk
type Publication struct {
	ID      string   `json:"id" yaml:"id" validate:"required"`
	Title   string   `json:"title" yaml:"title"`
	Venue   string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	Year    string   `json:"year,omitempty" yaml:"year,omitempty"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	URL     string   `json:"url,omitempty" yaml:"url,omitempty"`
}

// Certification is a professional certification
type Certification struct {
	ID     string `json:"id" yaml:"id" validate:"required"`
	Name   string `json:"name" yaml:"name"`
	Issuer string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	Date   string `json:"date,omitempty" yaml:"date,omitempty"`
}

// WorkSample is a portfolio link or writing sample
type WorkSample struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Title       string `json:"title" yaml:"title"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SourceIDs returns every record ID in the database
func (db *CandidateDatabase) SourceIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, e := range db.Experiences {
		ids[e.ID] = true
	}
	for _, p := range db.Projects {
		ids[p.ID] = true
	}
	for _, e := range db.Education {
		ids[e.ID] = true
	}
	for _, p := range db.Publications {
		ids[p.ID] = true
	}
	for _, c := range db.Certifications {
		ids[c.ID] = true
	}
	for _, w := range db.WorkSamples {
		ids[w.ID] = true
	}
	return ids
}
