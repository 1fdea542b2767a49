package workflow

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-tailor/internal/types"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// DefaultTemplateName is used when a requested template is unknown
const DefaultTemplateName = "default"

// FallbackPriority applies when neither the analysis nor the template gives one
const FallbackPriority = 50

// Agent names
const (
	AgentJobAnalyzer          = "job_analyzer"
	AgentContentSelector      = "content_selector"
	AgentResumeDrafter        = "resume_drafter"
	AgentFabricationValidator = "fabrication_validator"
	AgentStyleEditor          = "style_editor"
	AgentQualityReviewer      = "quality_reviewer"
)

// AgentDef describes an agent the pipeline can run
type AgentDef struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Phase       int    `json:"phase" yaml:"phase"`
	Core        bool   `json:"core,omitempty" yaml:"core,omitempty"` // always active
}

// Template is a named starting point for a workflow
type Template struct {
	Name              string            `json:"name" yaml:"name"`
	Description       string            `json:"description,omitempty" yaml:"description,omitempty"`
	Sections          []string          `json:"sections" yaml:"sections"`
	Agents            []string          `json:"agents,omitempty" yaml:"agents,omitempty"`
	SectionPriorities map[string]int    `json:"section_priorities,omitempty" yaml:"section_priorities,omitempty"`
	DefaultPriority   int               `json:"default_priority,omitempty" yaml:"default_priority,omitempty"`
	Constraints       types.Constraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Priority returns the template's priority for a section, if it defines one
func (t *Template) Priority(section string) (int, bool) {
	if p, ok := t.SectionPriorities[section]; ok {
		return p, true
	}
	if t.DefaultPriority > 0 {
		return t.DefaultPriority, true
	}
	return 0, false
}

// Catalog holds the agent and template registries
type Catalog struct {
	Agents    []AgentDef `json:"agents" yaml:"agents"`
	Templates []Template `json:"templates" yaml:"templates"`
}

// DefaultCatalog returns the embedded catalog
func DefaultCatalog() (*Catalog, error) {
	return parseCatalog(defaultCatalogYAML, "(embedded)", ".yaml")
}

// LoadCatalog reads a catalog from a .yaml, .yml or .json file
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog path is empty")
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return parseCatalog(data, path, strings.ToLower(filepath.Ext(path)))
}

func parseCatalog(data []byte, path, ext string) (*Catalog, error) {
	var c Catalog
	var err error
	if ext == ".json" {
		err = json.Unmarshal(data, &c)
	} else {
		err = yaml.Unmarshal(data, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks names are unique and the default template exists
func (c *Catalog) Validate() error {
	agents := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent with empty name")
		}
		if agents[a.Name] {
			return fmt.Errorf("duplicate agent %q", a.Name)
		}
		agents[a.Name] = true
	}

	templates := make(map[string]bool, len(c.Templates))
	for _, t := range c.Templates {
		if t.Name == "" {
			return fmt.Errorf("template with empty name")
		}
		if templates[t.Name] {
			return fmt.Errorf("duplicate template %q", t.Name)
		}
		templates[t.Name] = true
		for _, a := range t.Agents {
			if !agents[a] {
				return fmt.Errorf("template %q references unknown agent %q", t.Name, a)
			}
		}
	}
	if !templates[DefaultTemplateName] {
		return fmt.Errorf("missing %q template", DefaultTemplateName)
	}
	return nil
}

// Template returns the named template and whether it exists
func (c *Catalog) Template(name string) (*Template, bool) {
	for i := range c.Templates {
		if c.Templates[i].Name == name {
			return &c.Templates[i], true
		}
	}
	return nil, false
}

// TemplateNames lists template names in declaration order
func (c *Catalog) TemplateNames() []string {
	names := make([]string, len(c.Templates))
	for i, t := range c.Templates {
		names[i] = t.Name
	}
	return names
}

// AgentNames lists agent names in declaration order
func (c *Catalog) AgentNames() []string {
	names := make([]string, len(c.Agents))
	for i, a := range c.Agents {
		names[i] = a.Name
	}
	return names
}

// HasAgent reports whether the catalog defines an agent
func (c *Catalog) HasAgent(name string) bool {
	for _, a := range c.Agents {
		if a.Name == name {
			return true
		}
	}
	return false
}

// IsCoreAgent reports whether an agent is always active
func (c *Catalog) IsCoreAgent(name string) bool {
	for _, a := range c.Agents {
		if a.Name == name {
			return a.Core
		}
	}
	return false
}
