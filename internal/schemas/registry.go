package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var defaultRegistryYAML []byte

// Kind is the shape of a section's content
type Kind string

// Section shapes
const (
	KindMapping Kind = "mapping"
	KindList    Kind = "list"
	KindString  Kind = "string"
)

// CoreSections are always part of a resume schema, whatever is enabled.
var CoreSections = []string{"contact", "experience", "education"}

// IsCore reports whether name is a core section
func IsCore(name string) bool {
	for _, core := range CoreSections {
		if core == name {
			return true
		}
	}
	return false
}

// FieldDef describes one field of a mapping section or of a list item
type FieldDef struct {
	Name        string `json:"name" yaml:"name"`
	Type        Kind   `json:"type" yaml:"type"` // string, list (of strings) or mapping
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SectionDef is one registry entry
type SectionDef struct {
	Name            string     `json:"name" yaml:"name"`
	Description     string     `json:"description,omitempty" yaml:"description,omitempty"`
	Required        bool       `json:"required,omitempty" yaml:"required,omitempty"`
	Kind            Kind       `json:"kind" yaml:"kind"`
	Fields          []FieldDef `json:"fields,omitempty" yaml:"fields,omitempty"`
	TriggerKeywords []string   `json:"trigger_keywords,omitempty" yaml:"trigger_keywords,omitempty"`
}

// Registry is the ordered set of known sections. Declaration order is significant:
// it breaks priority ties in workflow configuration.
type Registry struct {
	Sections []SectionDef `json:"sections" yaml:"sections"`

	index map[string]int
}

// DefaultRegistry returns the embedded section registry
func DefaultRegistry() (*Registry, error) {
	return parseRegistry(defaultRegistryYAML, "(embedded)", ".yaml")
}

// MustDefaultRegistry returns the embedded registry, panicking if it is malformed.
func MustDefaultRegistry() *Registry {
	r, err := DefaultRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// LoadRegistry reads a registry from a .yaml, .yml or .json file
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return nil, &RegistryError{Path: path, Message: "registry path is empty"}
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &RegistryError{Path: path, Message: "failed to read registry file", Cause: err}
	}
	return parseRegistry(data, path, strings.ToLower(filepath.Ext(path)))
}

func parseRegistry(data []byte, path, ext string) (*Registry, error) {
	var r Registry
	var err error
	switch ext {
	case ".json":
		err = json.Unmarshal(data, &r)
	default:
		err = yaml.Unmarshal(data, &r)
	}
	if err != nil {
		return nil, &RegistryError{Path: path, Message: "failed to parse registry", Cause: err}
	}
	if err := r.init(path); err != nil {
		return nil, err
	}
	return &r, nil
}

// NewRegistry builds a registry from section definitions
func NewRegistry(sections []SectionDef) (*Registry, error) {
	r := &Registry{Sections: sections}
	if err := r.init("(inline)"); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) init(path string) error {
	r.index = make(map[string]int, len(r.Sections))
	for i, s := range r.Sections {
		if s.Name == "" {
			return &RegistryError{Path: path, Message: fmt.Sprintf("section %d has no name", i)}
		}
		if _, dup := r.index[s.Name]; dup {
			return &RegistryError{Path: path, Message: fmt.Sprintf("duplicate section %q", s.Name)}
		}
		switch s.Kind {
		case KindMapping, KindList, KindString:
		default:
			return &RegistryError{Path: path, Message: fmt.Sprintf("section %q has invalid kind %q", s.Name, s.Kind)}
		}
		for _, f := range s.Fields {
			switch f.Type {
			case KindMapping, KindList, KindString:
			default:
				return &RegistryError{Path: path, Message: fmt.Sprintf("field %s.%s has invalid type %q", s.Name, f.Name, f.Type)}
			}
		}
		r.index[s.Name] = i
	}
	for _, core := range CoreSections {
		if _, ok := r.index[core]; !ok {
			return &RegistryError{Path: path, Message: fmt.Sprintf("core section %q is missing", core)}
		}
	}
	return nil
}

// Get returns the definition for a section
func (r *Registry) Get(name string) (SectionDef, error) {
	i, ok := r.index[name]
	if !ok {
		return SectionDef{}, &UnknownSectionError{Section: name}
	}
	return r.Sections[i], nil
}

// Has reports whether the registry defines name
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Order returns the declaration index of a section, or -1 if unknown
func (r *Registry) Order(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}

// Names returns all section names in declaration order
func (r *Registry) Names() []string {
	names := make([]string, len(r.Sections))
	for i, s := range r.Sections {
		names[i] = s.Name
	}
	return names
}
