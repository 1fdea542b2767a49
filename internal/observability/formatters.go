// Package observability prints human-readable summaries of pipeline output
// for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/state"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

func writeList(sb *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", label)
	for _, item := range items[:min(len(items), limit)] {
		fmt.Fprintf(sb, "  • %s\n", item)
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
}

// PrintJobAnalysis outputs the analyzer's view of the posting
func (p *Printer) PrintJobAnalysis(a *types.JobAnalysis) {
	if a == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Company:  %s\n", a.CompanyName)
	fmt.Fprintf(&sb, "Role:     %s\n", a.JobTitle)
	fmt.Fprintf(&sb, "Category: %s\n", a.RoleCategory)
	if a.SeniorityLevel != "" {
		fmt.Fprintf(&sb, "Level:    %s\n", a.SeniorityLevel)
	}
	sb.WriteString("\n")

	reqs := make([]string, len(a.RequiredQualifications))
	for i, r := range a.RequiredQualifications {
		reqs[i] = r.Text
	}
	writeList(&sb, "Required", reqs, maxItemsToShow)
	writeList(&sb, "Recommended sections", a.RecommendedSections, maxItemsToShow)

	p.printBox("JOB ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintWorkflowConfig outputs the sections and agents a run will use
func (p *Printer) PrintWorkflowConfig(cfg *types.WorkflowConfig) {
	if cfg == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Template: %s (%s)\n", cfg.Template, cfg.Source)
	if cfg.Constraints.MaxPages > 0 {
		fmt.Fprintf(&sb, "Max pages: %d\n", cfg.Constraints.MaxPages)
	}
	sb.WriteString("\nSections:\n")
	for _, s := range cfg.EnabledSections {
		fmt.Fprintf(&sb, "  %3d  %s\n", s.Priority, s.Name)
	}
	fmt.Fprintf(&sb, "\nAgents: %s", strings.Join(cfg.ActiveAgents, ", "))
	if cfg.SkipStyleEdit {
		sb.WriteString("\nStyle edit: skipped")
	}

	p.printBox("WORKFLOW CONFIG", sb.String())
}

// PrintSelection outputs selection counts, which selector produced each field,
// and any warnings
func (p *Printer) PrintSelection(res *types.SelectionResult) {
	if res == nil {
		return
	}
	sel := res.Selection

	var sb strings.Builder
	fmt.Fprintf(&sb, "Experiences:    %d\n", len(sel.Experiences))
	fmt.Fprintf(&sb, "Projects:       %d\n", len(sel.Projects))
	fmt.Fprintf(&sb, "Education:      %d\n", len(sel.Education))
	fmt.Fprintf(&sb, "Publications:   %d\n", len(sel.Publications))
	fmt.Fprintf(&sb, "Certifications: %d\n", len(sel.Certifications))
	fmt.Fprintf(&sb, "Skill groups:   %d\n", len(sel.Skills))

	if len(res.Provenance) > 0 {
		fields := make([]string, 0, len(res.Provenance))
		for f := range res.Provenance {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		sb.WriteString("\nSource:\n")
		for _, f := range fields {
			fmt.Fprintf(&sb, "  %-15s %s\n", f, res.Provenance[f])
		}
	}
	if len(res.Removed) > 0 {
		fmt.Fprintf(&sb, "\nRemoved bullets: %d\n", len(res.Removed))
	}
	if len(res.Warnings) > 0 {
		sb.WriteString("\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&sb, "⚠ %s\n", w)
		}
	}

	p.printBox("CONTENT SELECTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidation outputs the fabrication check verdicts
func (p *Printer) PrintValidation(r *types.ValidationReport) {
	if r == nil {
		return
	}

	counts := r.CountByStatus()
	var fabricated []string
	for _, v := range r.Verdicts {
		if v.Status == types.VerdictFabricated && !v.Resolved {
			fabricated = append(fabricated, v.Claim)
		}
	}

	var sb strings.Builder
	status := "✅ no unresolved fabrication"
	if r.HasUnresolvedFabrication() {
		status = "⚠ unresolved fabrication"
	}
	fmt.Fprintf(&sb, "%s\n\n", status)
	fmt.Fprintf(&sb, "Verified:     %d\n", counts[types.VerdictVerified])
	fmt.Fprintf(&sb, "Unverifiable: %d\n", counts[types.VerdictUnverifiable])
	fmt.Fprintf(&sb, "Fabricated:   %d\n", counts[types.VerdictFabricated])
	fmt.Fprintf(&sb, "Issues:       %d\n", len(r.Issues))
	if len(fabricated) > 0 {
		sb.WriteString("\n")
		writeList(&sb, "Unresolved claims", fabricated, 3)
	}

	p.printBox("FABRICATION CHECK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQAReport outputs the final review
func (p *Printer) PrintQAReport(r *types.QAReport, threshold int) {
	if r == nil {
		return
	}

	var sb strings.Builder
	mark := "✅"
	if !r.Passes(threshold) {
		mark = "⚠"
	}
	fmt.Fprintf(&sb, "%s Score %d/100 (threshold %d), %s\n", mark, r.OverallScore, threshold, r.OverallStatus)
	fmt.Fprintf(&sb, "Ready to submit: %t\n", r.ReadyToSubmit)

	if len(r.SectionScores) > 0 {
		names := make([]string, 0, len(r.SectionScores))
		for name := range r.SectionScores {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString("\n")
		for _, name := range names {
			fmt.Fprintf(&sb, "  %-15s %3d\n", name, r.SectionScores[name])
		}
	}

	if len(r.Issues) > 0 {
		sb.WriteString("\n")
		issues := make([]string, len(r.Issues))
		for i, issue := range r.Issues {
			issues[i] = fmt.Sprintf("[%s] %s", issue.Severity, issue.Message)
		}
		writeList(&sb, "Issues", issues, maxItemsToShow)
	}

	p.printBox("QUALITY REVIEW", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunStatus outputs where a run stands and what still needs doing
func (p *Printer) PrintRunStatus(st *state.PipelineState) {
	if st == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Run:     %s\n", st.RunID)
	if st.RunDir != "" {
		fmt.Fprintf(&sb, "Dir:     %s\n", st.RunDir)
	}
	fmt.Fprintf(&sb, "Phase:   %s\n", st.Phase())
	fmt.Fprintf(&sb, "Updated: %s\n", st.UpdatedAt.Format("2006-01-02 15:04:05"))
	if st.JobSource != "" {
		fmt.Fprintf(&sb, "Source:  %s\n", st.JobSource)
	}
	if st.PDFPath != "" {
		fmt.Fprintf(&sb, "PDF:     %s\n", st.PDFPath)
	}

	sb.WriteString("\n")
	for _, stage := range state.Stages() {
		mark := "·"
		if _, err := st.StageOutput(stage); err == nil {
			mark = "✓"
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, stage)
	}

	if st.Flags.UnresolvedFabrication {
		sb.WriteString("\n⚠ unresolved fabrication")
	}
	if st.Flags.BelowQualityThreshold {
		sb.WriteString("\n⚠ below quality threshold")
	}
	if len(st.Errors) > 0 {
		last := st.Errors[len(st.Errors)-1]
		fmt.Fprintf(&sb, "\n✗ phase %d: %s", last.Phase, last.Message)
	}

	p.printBox("RUN STATUS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRuns outputs one line per run
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRuns(runs []state.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(p.out, "no runs found")
		return
	}
	for _, r := range runs {
		flags := ""
		if r.Flags.UnresolvedFabrication {
			flags += " [fabrication]"
		}
		if r.Flags.BelowQualityThreshold {
			flags += " [low score]"
		}
		fmt.Fprintf(p.out, "%s  %-16s %s / %s%s\n  %s\n",
			r.UpdatedAt.Format("2006-01-02 15:04"), r.Phase, r.Company, r.Title, flags, r.Dir)
	}
}

// PrintProgress writes one line per pipeline progress event
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(ev pipeline.ProgressEvent) {
	fmt.Fprintf(p.out, "[%s] %s\n", ev.Category, ev.Message)
}
