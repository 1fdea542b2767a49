// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// WorkflowConfig sources
const (
	ConfigSourceAuto       = "auto"
	ConfigSourceStatic     = "static"
	ConfigSourceCustomized = "customized"
)

// WorkflowConfig is the resolved plan for one run
type WorkflowConfig struct {
	Template        string            `json:"template"`
	EnabledSections []SectionPriority `json:"enabled_sections"` // priority desc, ties in registry order
	ActiveAgents    []string          `json:"active_agents"`
	Constraints     Constraints       `json:"constraints"`
	SkipStyleEdit   bool              `json:"skip_style_edit,omitempty"`
	Source          string            `json:"source"`
}

// SectionPriority pairs an enabled section with its priority
type SectionPriority struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

// Constraints bound the generated resume
type Constraints struct {
	MaxPages          int `json:"max_pages,omitempty" yaml:"max_pages,omitempty"`
	MaxBulletsPerRole int `json:"max_bullets_per_role,omitempty" yaml:"max_bullets_per_role,omitempty"`
}

// SectionNames returns the enabled section names in order
func (c *WorkflowConfig) SectionNames() []string {
	names := make([]string, len(c.EnabledSections))
	for i, s := range c.EnabledSections {
		names[i] = s.Name
	}
	return names
}

// HasSection reports whether a section is enabled
func (c *WorkflowConfig) HasSection(name string) bool {
	for _, s := range c.EnabledSections {
		if s.Name == name {
			return true
		}
	}
	return false
}

// HasAgent reports whether an agent is active
func (c *WorkflowConfig) HasAgent(name string) bool {
	for _, a := range c.ActiveAgents {
		if a == name {
			return true
		}
	}
	return false
}
