package schemas

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// SectionSchema is the resolved shape of one section within a resume schema
type SectionSchema struct {
	Name     string     `json:"name"`
	Kind     Kind       `json:"kind"`
	Required bool       `json:"required"`
	Fields   []FieldDef `json:"fields,omitempty"`
}

// Schema is the contract a resume draft's sections must satisfy
type Schema struct {
	Sections []SectionSchema `json:"sections"`

	once     sync.Once
	compiled *gojsonschema.Schema
	errLoad  error
}

// BuildResumeSchema builds the draft schema for the enabled sections.
// Core sections are always included; missing ones are appended in registry order.
func (r *Registry) BuildResumeSchema(enabled []string) (*Schema, error) {
	seen := make(map[string]bool, len(enabled)+len(CoreSections))
	schema := &Schema{}

	add := func(name string) error {
		if seen[name] {
			return nil
		}
		def, err := r.Get(name)
		if err != nil {
			return err
		}
		seen[name] = true
		schema.Sections = append(schema.Sections, SectionSchema{
			Name:     def.Name,
			Kind:     def.Kind,
			Required: def.Required || IsCore(def.Name),
			Fields:   def.Fields,
		})
		return nil
	}

	for _, name := range enabled {
		if err := add(name); err != nil {
			return nil, err
		}
	}
	for _, core := range CoreSections {
		if err := add(core); err != nil {
			return nil, err
		}
	}
	return schema, nil
}

// Names returns the schema's section names in order
func (s *Schema) Names() []string {
	names := make([]string, len(s.Sections))
	for i, sec := range s.Sections {
		names[i] = sec.Name
	}
	return names
}

// Has reports whether the schema includes a section
func (s *Schema) Has(name string) bool {
	for _, sec := range s.Sections {
		if sec.Name == name {
			return true
		}
	}
	return false
}

// JSONSchema renders the schema as a JSON Schema document for the draft's sections object.
func (s *Schema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.Sections))
	required := []string{}
	for _, sec := range s.Sections {
		properties[sec.Name] = sectionJSONSchema(sec)
		if sec.Required {
			required = append(required, sec.Name)
		}
	}
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// Describe returns the JSON Schema as indented text for prompts
func (s *Schema) Describe() string {
	data, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", s.Names())
	}
	return string(data)
}

// Validate checks a draft's sections against the schema
func (s *Schema) Validate(sections map[string]any) error {
	s.once.Do(func() {
		s.compiled, s.errLoad = gojsonschema.NewSchema(gojsonschema.NewGoLoader(s.JSONSchema()))
	})
	if s.errLoad != nil {
		return &SchemaLoadError{Path: "(resume schema)", Message: "schema failed to compile", Cause: s.errLoad}
	}
	if sections == nil {
		sections = map[string]any{}
	}
	return validateWith(s.compiled, gojsonschema.NewGoLoader(sections))
}

func sectionJSONSchema(sec SectionSchema) map[string]any {
	switch sec.Kind {
	case KindString:
		return map[string]any{"type": "string", "minLength": 1}
	case KindList:
		if len(sec.Fields) == 0 {
			return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
		}
		return map[string]any{"type": "array", "items": objectJSONSchema(sec.Fields)}
	default:
		if len(sec.Fields) == 0 {
			return map[string]any{"type": "object"}
		}
		return objectJSONSchema(sec.Fields)
	}
}

func objectJSONSchema(fields []FieldDef) map[string]any {
	properties := make(map[string]any, len(fields))
	required := []string{}
	for _, f := range fields {
		properties[f.Name] = fieldJSONSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	obj := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		obj["required"] = required
	}
	return obj
}

func fieldJSONSchema(f FieldDef) map[string]any {
	var out map[string]any
	switch f.Type {
	case KindList:
		out = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	case KindMapping:
		out = map[string]any{"type": "object"}
	default:
		out = map[string]any{"type": "string"}
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	return out
}
