// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "encoding/json"

// ResumeDraft is the generated resume body. Sections map a section name to
// content whose shape is declared by the section registry.
type ResumeDraft struct {
	Sections     map[string]any `json:"sections" validate:"required"`
	SectionOrder []string       `json:"section_order,omitempty"`
	Citations    []Citation     `json:"citations,omitempty" validate:"dive"`
}

// Citation ties a piece of generated content back to a source record
type Citation struct {
	Section  string `json:"section"`
	Content  string `json:"content"`
	SourceID string `json:"source_id" validate:"required"`
}

// Change records one edit an agent made to a draft
type Change struct {
	Section  string `json:"section"`
	Original string `json:"original,omitempty"`
	Updated  string `json:"updated,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Clone returns a deep copy of the draft
func (d *ResumeDraft) Clone() (*ResumeDraft, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out ResumeDraft
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrderedSections returns section names in SectionOrder first, then any remaining
// names in the given fallback order.
func (d *ResumeDraft) OrderedSections(fallback []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range append(append([]string{}, d.SectionOrder...), fallback...) {
		if seen[name] {
			continue
		}
		if _, ok := d.Sections[name]; !ok {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
