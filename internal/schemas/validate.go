// Package schemas builds and applies the validation schema for resume drafts.
// A declarative section registry describes each section's shape; BuildResumeSchema
// turns the enabled subset into a JSON Schema checked with gojsonschema.
package schemas

import "github.com/xeipuuv/gojsonschema"

// validateWith runs a compiled schema over a document and collects field errors
func validateWith(schema *gojsonschema.Schema, document gojsonschema.JSONLoader) error {
	result, err := schema.Validate(document)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(document)",
			Message: "document could not be loaded",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
