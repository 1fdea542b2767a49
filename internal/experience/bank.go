package experience

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-tailor/internal/types"
)

// LoadCandidates loads a candidate database from a .json, .yaml or .yml file,
// normalizes it and validates it
func LoadCandidates(path string) (*types.CandidateDatabase, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}

	var db types.CandidateDatabase
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(content, &db)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &db)
	default:
		return nil, &LoadError{Message: fmt.Sprintf("unsupported file extension %q", ext)}
	}
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to decode %s", filepath.Base(path)),
			Cause:   err,
		}
	}

	Normalize(&db)
	if err := Validate(&db); err != nil {
		return nil, err
	}
	return &db, nil
}

// Validate checks that the contact has a name and that every record has an id
// unique across the whole database, since ids are citation sources.
func Validate(db *types.CandidateDatabase) error {
	var problems []string
	if strings.TrimSpace(db.Contact.Name) == "" {
		problems = append(problems, "contact.name is required")
	}

	seen := make(map[string]string)
	check := func(kind string, i int, id string) {
		if id == "" {
			problems = append(problems, fmt.Sprintf("%s[%d] has no id", kind, i))
			return
		}
		if prev, ok := seen[id]; ok {
			problems = append(problems, fmt.Sprintf("id %q is used by both %s and %s", id, prev, kind))
			return
		}
		seen[id] = kind
	}

	for i, r := range db.Experiences {
		check("experiences", i, r.ID)
	}
	for i, r := range db.Projects {
		check("projects", i, r.ID)
	}
	for i, r := range db.Education {
		check("education", i, r.ID)
	}
	for i, r := range db.Publications {
		check("publications", i, r.ID)
	}
	for i, r := range db.Certifications {
		check("certifications", i, r.ID)
	}
	for i, r := range db.WorkSamples {
		check("work_samples", i, r.ID)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
