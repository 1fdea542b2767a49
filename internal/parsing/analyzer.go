// Package parsing turns a job posting into a structured JobAnalysis using the
// job analyzer agent.
package parsing

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// Analyzer is the job analysis agent. Its input is the job description text.
type Analyzer = agent.Agent[string, *types.JobAnalysis]

// NewAnalyzer builds the job analyzer. The registry and catalog supply the
// section, agent and template names the model may recommend.
func NewAnalyzer(client llm.Client, registry *schemas.Registry, catalog *workflow.Catalog, opts agent.Options) *Analyzer {
	if opts.Tier == "" {
		// structured extraction needs reasoning
		opts.Tier = llm.TierAdvanced
	}
	return agent.New(workflow.AgentJobAnalyzer, client,
		buildAnalysisPrompt(registry, catalog, opts.Logger),
		parseAnalysis(registry),
		opts)
}

func buildAnalysisPrompt(registry *schemas.Registry, catalog *workflow.Catalog, logger *slog.Logger) agent.PromptFunc[string] {
	roles := make([]string, 0, len(types.RoleCategories()))
	for _, r := range types.RoleCategories() {
		roles = append(roles, string(r))
	}

	return func(jobDescription string) (string, error) {
		if strings.TrimSpace(jobDescription) == "" {
			return "", fmt.Errorf("job description is empty")
		}
		return prompts.Render("analysis.json", "analyze-job", map[string]string{
			"RoleCategories": strings.Join(roles, ", "),
			"SectionNames":   strings.Join(registry.Names(), ", "),
			"AgentNames":     strings.Join(catalog.AgentNames(), ", "),
			"TemplateNames":  strings.Join(catalog.TemplateNames(), ", "),
			"JobDescription": prompts.Sanitize(logger, "job_description", "job description", jobDescription),
		})
	}
}

func parseAnalysis(registry *schemas.Registry) agent.ParseFunc[*types.JobAnalysis] {
	parse := agent.WithCheck(agent.JSONParser(NormalizeAnalysis), func(a types.JobAnalysis) error {
		var unknown []string
		for _, s := range a.RecommendedSections {
			if !registry.Has(s) {
				unknown = append(unknown, s)
			}
		}
		if len(unknown) > 0 {
			return &agent.ParseError{Message: "unknown recommended sections", Fields: unknown}
		}
		return nil
	})

	return func(raw string) (*types.JobAnalysis, error) {
		analysis, err := parse(raw)
		if err != nil {
			return nil, err
		}
		return &analysis, nil
	}
}
