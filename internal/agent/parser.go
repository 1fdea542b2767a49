package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-tailor/internal/llm"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// JSONParser returns a ParseFunc that strips code fences and preamble, decodes
// the first JSON object into T, applies the normalizers in order, then checks
// T's `validate` struct tags.
func JSONParser[T any](normalizers ...func(*T)) ParseFunc[T] {
	return func(raw string) (T, error) {
		var out T

		text := llm.ExtractJSONObject(llm.CleanJSONBlock(raw))
		if strings.TrimSpace(text) == "" {
			return out, &ParseError{Message: "empty response"}
		}

		if err := json.Unmarshal([]byte(text), &out); err != nil {
			return out, &ParseError{Message: "failed to parse JSON response", Cause: err}
		}

		for _, normalize := range normalizers {
			normalize(&out)
		}

		if err := ValidateStruct(out); err != nil {
			return out, err
		}
		return out, nil
	}
}

// ValidateStruct checks validate tags on v. Non-struct values pass.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return &ParseError{Message: "missing or invalid fields", Fields: fields}
	}

	return &ParseError{Message: "validation failed", Cause: err}
}

// WithCheck wraps a ParseFunc with an extra check on the decoded value.
// A failing check becomes a *ParseError so the agent retries.
func WithCheck[T any](parse ParseFunc[T], check func(T) error) ParseFunc[T] {
	return func(raw string) (T, error) {
		out, err := parse(raw)
		if err != nil {
			return out, err
		}
		if err := check(out); err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				return out, err
			}
			return out, &ParseError{Message: "output failed check", Cause: err}
		}
		return out, nil
	}
}
