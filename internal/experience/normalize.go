package experience

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Normalize trims ids and bullets, drops empty bullets and canonicalizes skill
// names
func Normalize(db *types.CandidateDatabase) {
	db.Contact.Name = strings.TrimSpace(db.Contact.Name)

	for i := range db.Experiences {
		e := &db.Experiences[i]
		e.ID = strings.TrimSpace(e.ID)
		e.Bullets = cleanBullets(e.Bullets)
		e.Skills = NormalizeSkills(e.Skills)
	}
	for i := range db.Projects {
		p := &db.Projects[i]
		p.ID = strings.TrimSpace(p.ID)
		p.Bullets = cleanBullets(p.Bullets)
		p.Skills = NormalizeSkills(p.Skills)
	}
	for i := range db.Education {
		db.Education[i].ID = strings.TrimSpace(db.Education[i].ID)
	}
	for i := range db.Publications {
		db.Publications[i].ID = strings.TrimSpace(db.Publications[i].ID)
	}
	for i := range db.Certifications {
		db.Certifications[i].ID = strings.TrimSpace(db.Certifications[i].ID)
	}
	for i := range db.WorkSamples {
		db.WorkSamples[i].ID = strings.TrimSpace(db.WorkSamples[i].ID)
	}

	for category, skills := range db.Skills {
		db.Skills[category] = NormalizeSkills(skills)
	}
}

// NormalizeSkills canonicalizes skill names and removes duplicates, keeping
// the first occurrence
func NormalizeSkills(skills []string) []string {
	if skills == nil {
		return nil
	}
	normalized := make([]string, 0, len(skills))
	seen := make(map[string]struct{})

	for _, skill := range skills {
		s := parsing.NormalizeSkillName(skill)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, exists := seen[key]; !exists {
			normalized = append(normalized, s)
			seen[key] = struct{}{}
		}
	}
	return normalized
}

func cleanBullets(bullets []string) []string {
	if bullets == nil {
		return nil
	}
	out := make([]string, 0, len(bullets))
	for _, b := range bullets {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
