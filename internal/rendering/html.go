package rendering

import (
	"embed"
	"html/template"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/resume-tailor/internal/types"
)

//go:embed templates/resume.html.tmpl
var templateFS embed.FS

var resumeTemplate = template.Must(
	template.New("resume.html.tmpl").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/resume.html.tmpl"),
)

var titleCaser = cases.Title(language.English)

// field names tried in order for each part of an entry
var (
	headingKeys    = []string{"title", "name", "degree", "project"}
	subheadingKeys = []string{"company", "institution", "organization", "venue", "issuer", "event", "role"}
	descKeys       = []string{"description", "details", "summary"}
	singleDateKeys = []string{"dates", "date", "year"}
)

// Document is the view model the HTML template renders
type Document struct {
	Contact  ContactView
	Sections []SectionView
}

// ContactView is the header block
type ContactView struct {
	Name    string
	Details []string
}

// SectionView is one rendered section. Only the fields matching the section's
// shape are set.
type SectionView struct {
	Name      string
	Title     string
	Paragraph string
	Items     []string
	Groups    []GroupView
	Entries   []EntryView
}

// GroupView is a labelled list, such as one skills category
type GroupView struct {
	Label string
	Items []string
}

// EntryView is one role, degree, project or similar record
type EntryView struct {
	Heading     string
	Subheading  string
	Dates       string
	Location    string
	Description string
	URL         string
	Bullets     []string
}

// BuildDocument converts a draft into the template view model, in section
// order. The contact section becomes the header and must carry a name.
func BuildDocument(draft *types.ResumeDraft) (*Document, error) {
	if draft == nil {
		return nil, &RenderError{Message: "draft is nil"}
	}

	contact, _ := draft.Sections["contact"].(map[string]any)
	doc := &Document{Contact: buildContact(contact)}
	if doc.Contact.Name == "" {
		return nil, &RenderError{Message: "contact section has no name"}
	}

	for _, name := range draft.OrderedSections(sortedKeys(draft.Sections)) {
		if name == "contact" {
			continue
		}
		section := buildSection(name, draft.Sections[name])
		if section.empty() {
			continue
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc, nil
}

// RenderHTML renders a draft as a standalone HTML page
func RenderHTML(draft *types.ResumeDraft) (string, error) {
	doc, err := BuildDocument(draft)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if err := resumeTemplate.Execute(&out, doc); err != nil {
		return "", &TemplateError{Message: "failed to execute template", Cause: err}
	}
	return out.String(), nil
}

// SectionTitle turns a section name such as open_source into "Open Source"
func SectionTitle(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

func buildContact(m map[string]any) ContactView {
	c := ContactView{Name: str(m["name"])}
	for _, key := range []string{"email", "phone", "location"} {
		if v := str(m[key]); v != "" {
			c.Details = append(c.Details, v)
		}
	}
	c.Details = append(c.Details, strList(m["links"])...)
	return c
}

func buildSection(name string, content any) SectionView {
	s := SectionView{Name: name, Title: SectionTitle(name)}

	switch v := content.(type) {
	case string:
		s.Paragraph = strings.TrimSpace(v)
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				s.Entries = append(s.Entries, buildEntry(m))
			} else if text := str(item); text != "" {
				s.Items = append(s.Items, text)
			}
		}
	case map[string]any:
		for _, key := range sortedKeys(v) {
			if items := strList(v[key]); len(items) > 0 {
				s.Groups = append(s.Groups, GroupView{Label: SectionTitle(key), Items: items})
			}
		}
	}
	return s
}

func buildEntry(m map[string]any) EntryView {
	e := EntryView{
		Heading:     first(m, headingKeys),
		Subheading:  first(m, subheadingKeys),
		Location:    str(m["location"]),
		Description: first(m, descKeys),
		URL:         str(m["url"]),
		Bullets:     strList(m["bullets"]),
	}

	if field := str(m["field"]); field != "" && str(m["degree"]) != "" {
		e.Heading += " in " + field
	}
	if e.Description == "" {
		e.Description = strings.Join(strList(m["authors"]), ", ")
	}

	start, end := str(m["start_date"]), str(m["end_date"])
	if start != "" || end != "" {
		e.Dates = FormatDateRange(start, end)
	} else {
		e.Dates = StandardizeDate(first(m, singleDateKeys))
	}
	return e
}

func (s SectionView) empty() bool {
	return s.Paragraph == "" && len(s.Items) == 0 && len(s.Groups) == 0 && len(s.Entries) == 0
}

func first(m map[string]any, keys []string) string {
	for _, k := range keys {
		if v := str(m[k]); v != "" {
			return v
		}
	}
	return ""
}

func str(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	}
	return ""
}

func strList(v any) []string {
	var out []string
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := str(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, item := range val {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
