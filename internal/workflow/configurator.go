// Package workflow resolves which sections and agents a run uses. It combines the
// job analysis recommendations with a named template and optional user edits.
package workflow

import (
	"log/slog"
	"sort"

	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Configurator builds WorkflowConfigs from the section registry and the catalog
type Configurator struct {
	registry *schemas.Registry
	catalog  *Catalog
	logger   *slog.Logger
}

// NewConfigurator checks that every template section exists in the registry.
func NewConfigurator(registry *schemas.Registry, catalog *Catalog, logger *slog.Logger) (*Configurator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, t := range catalog.Templates {
		for _, s := range t.Sections {
			if !registry.Has(s) {
				return nil, &schemas.UnknownSectionError{Section: s}
			}
		}
	}
	return &Configurator{registry: registry, catalog: catalog, logger: logger}, nil
}

// Registry returns the section registry in use
func (c *Configurator) Registry() *schemas.Registry {
	return c.registry
}

// Catalog returns the agent/template catalog in use
func (c *Configurator) Catalog() *Catalog {
	return c.catalog
}

// template returns the named template, falling back to the default one
func (c *Configurator) template(name string) *Template {
	if t, ok := c.catalog.Template(name); ok {
		return t
	}
	if name != "" {
		c.logger.Warn("unknown template, using default", "template", name)
	}
	t, _ := c.catalog.Template(DefaultTemplateName)
	return t
}

// AutoConfigure resolves the workflow for a job analysis. Enabled sections are
// core ∪ template ∪ recommended. When the analysis recommends nothing, keyword
// triggers and then the role defaults stand in for its recommendation.
func (c *Configurator) AutoConfigure(analysis *types.JobAnalysis) (*types.WorkflowConfig, error) {
	tmpl := c.template(analysis.RecommendedTemplate)

	recommended := analysis.RecommendedSections
	if len(recommended) == 0 {
		recommended = c.registry.SectionsByKeywords(analysis.Keywords)
	}
	if len(recommended) == 0 {
		recommended = schemas.DefaultSectionsForRole(analysis.RoleCategory)
	}

	names := make([]string, 0, len(schemas.CoreSections)+len(tmpl.Sections)+len(recommended))
	names = append(names, schemas.CoreSections...)
	names = append(names, tmpl.Sections...)
	names = append(names, recommended...)

	sections, err := c.prioritize(names, func(name string) int {
		if p, ok := analysis.SectionPriorities[name]; ok {
			return p
		}
		if p, ok := tmpl.Priority(name); ok {
			return p
		}
		return FallbackPriority
	})
	if err != nil {
		return nil, err
	}

	agents := c.resolveAgents(tmpl.Agents, analysis.RecommendedAgents)
	return &types.WorkflowConfig{
		Template:        tmpl.Name,
		EnabledSections: sections,
		ActiveAgents:    agents,
		Constraints:     tmpl.Constraints,
		SkipStyleEdit:   !contains(agents, AgentStyleEditor),
		Source:          types.ConfigSourceAuto,
	}, nil
}

// StaticConfigure returns the fixed configuration used by the standard
// orchestrator: the role's default sections with the default template.
func (c *Configurator) StaticConfigure(role types.RoleCategory) (*types.WorkflowConfig, error) {
	tmpl := c.template(DefaultTemplateName)

	names := append(append([]string{}, schemas.CoreSections...), schemas.DefaultSectionsForRole(role)...)
	sections, err := c.prioritize(names, func(name string) int {
		if p, ok := tmpl.Priority(name); ok {
			return p
		}
		return FallbackPriority
	})
	if err != nil {
		return nil, err
	}

	agents := c.resolveAgents(tmpl.Agents, nil)
	return &types.WorkflowConfig{
		Template:        tmpl.Name,
		EnabledSections: sections,
		ActiveAgents:    agents,
		Constraints:     tmpl.Constraints,
		SkipStyleEdit:   !contains(agents, AgentStyleEditor),
		Source:          types.ConfigSourceStatic,
	}, nil
}

// prioritize dedupes names, checks them against the registry and sorts by
// priority descending with registry order breaking ties.
func (c *Configurator) prioritize(names []string, priority func(string) int) ([]types.SectionPriority, error) {
	seen := make(map[string]bool, len(names))
	out := make([]types.SectionPriority, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		if !c.registry.Has(name) {
			return nil, &schemas.UnknownSectionError{Section: name}
		}
		seen[name] = true
		out = append(out, types.SectionPriority{Name: name, Priority: priority(name)})
	}
	c.sortSections(out)
	return out, nil
}

func (c *Configurator) sortSections(sections []types.SectionPriority) {
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].Priority != sections[j].Priority {
			return sections[i].Priority > sections[j].Priority
		}
		return c.registry.Order(sections[i].Name) < c.registry.Order(sections[j].Name)
	})
}

// resolveAgents returns core ∪ template ∪ recommended agents in catalog order.
// Unknown recommended agents are dropped.
func (c *Configurator) resolveAgents(templateAgents, recommended []string) []string {
	wanted := make(map[string]bool)
	for _, a := range templateAgents {
		wanted[a] = true
	}
	for _, a := range recommended {
		if !c.catalog.HasAgent(a) {
			c.logger.Warn("ignoring unknown recommended agent", "agent", a)
			continue
		}
		wanted[a] = true
	}

	var out []string
	for _, a := range c.catalog.Agents {
		if a.Core || wanted[a.Name] {
			out = append(out, a.Name)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
