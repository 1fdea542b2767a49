package workflow

import (
	"errors"
	"fmt"

	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// EditAction is one kind of user customization
type EditAction string

// Supported edits
const (
	ActionEnable       EditAction = "enable"
	ActionDisable      EditAction = "disable"
	ActionMove         EditAction = "move"     // Section to Position (0-based)
	ActionPriority     EditAction = "priority" // set Section's Priority and re-sort
	ActionEnableAgent  EditAction = "enable_agent"
	ActionDisableAgent EditAction = "disable_agent"
)

// Edit is one user change to a WorkflowConfig
type Edit struct {
	Action   EditAction `json:"action"`
	Section  string     `json:"section,omitempty"`
	Agent    string     `json:"agent,omitempty"`
	Position int        `json:"position,omitempty"`
	Priority int        `json:"priority,omitempty"`
}

// Customize applies edits in order to a copy of cfg. The input is not modified.
func (c *Configurator) Customize(cfg *types.WorkflowConfig, edits []Edit) (*types.WorkflowConfig, error) {
	out := *cfg
	out.EnabledSections = append([]types.SectionPriority(nil), cfg.EnabledSections...)
	out.ActiveAgents = append([]string(nil), cfg.ActiveAgents...)

	for i, edit := range edits {
		var err error
		switch edit.Action {
		case ActionEnable:
			err = c.enable(&out, edit)
		case ActionDisable:
			err = c.disable(&out, edit)
		case ActionMove:
			err = c.move(&out, edit)
		case ActionPriority:
			err = c.setPriority(&out, edit)
		case ActionEnableAgent, ActionDisableAgent:
			err = c.toggleAgent(&out, edit)
		default:
			err = &EditError{Message: fmt.Sprintf("unknown action %q", edit.Action)}
		}
		if err != nil {
			var editErr *EditError
			if errors.As(err, &editErr) {
				editErr.Index = i
			}
			return nil, err
		}
	}

	out.SkipStyleEdit = !contains(out.ActiveAgents, AgentStyleEditor)
	out.Source = types.ConfigSourceCustomized
	return &out, nil
}

func indexOf(sections []types.SectionPriority, name string) int {
	for i, s := range sections {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func (c *Configurator) checkSection(name string) error {
	if !c.registry.Has(name) {
		return &schemas.UnknownSectionError{Section: name}
	}
	return nil
}

func (c *Configurator) enable(cfg *types.WorkflowConfig, edit Edit) error {
	if err := c.checkSection(edit.Section); err != nil {
		return err
	}
	if indexOf(cfg.EnabledSections, edit.Section) >= 0 {
		return nil
	}

	priority := edit.Priority
	if priority <= 0 {
		priority = FallbackPriority
		if tmpl, ok := c.catalog.Template(cfg.Template); ok {
			if p, ok := tmpl.Priority(edit.Section); ok {
				priority = p
			}
		}
	}

	// Insert after every section with priority >= the new one
	pos := len(cfg.EnabledSections)
	for i, s := range cfg.EnabledSections {
		if s.Priority < priority {
			pos = i
			break
		}
	}
	entry := types.SectionPriority{Name: edit.Section, Priority: priority}
	cfg.EnabledSections = append(cfg.EnabledSections[:pos], append([]types.SectionPriority{entry}, cfg.EnabledSections[pos:]...)...)
	return nil
}

func (c *Configurator) disable(cfg *types.WorkflowConfig, edit Edit) error {
	if err := c.checkSection(edit.Section); err != nil {
		return err
	}
	if schemas.IsCore(edit.Section) {
		return &CoreSectionError{Section: edit.Section}
	}
	if i := indexOf(cfg.EnabledSections, edit.Section); i >= 0 {
		cfg.EnabledSections = append(cfg.EnabledSections[:i], cfg.EnabledSections[i+1:]...)
	}
	return nil
}

func (c *Configurator) move(cfg *types.WorkflowConfig, edit Edit) error {
	if err := c.checkSection(edit.Section); err != nil {
		return err
	}
	i := indexOf(cfg.EnabledSections, edit.Section)
	if i < 0 {
		return &EditError{Message: fmt.Sprintf("section %q is not enabled", edit.Section)}
	}

	entry := cfg.EnabledSections[i]
	rest := append(cfg.EnabledSections[:i:i], cfg.EnabledSections[i+1:]...)
	pos := edit.Position
	if pos < 0 {
		pos = 0
	}
	if pos > len(rest) {
		pos = len(rest)
	}
	cfg.EnabledSections = append(rest[:pos:pos], append([]types.SectionPriority{entry}, rest[pos:]...)...)
	return nil
}

func (c *Configurator) setPriority(cfg *types.WorkflowConfig, edit Edit) error {
	if err := c.checkSection(edit.Section); err != nil {
		return err
	}
	i := indexOf(cfg.EnabledSections, edit.Section)
	if i < 0 {
		return &EditError{Message: fmt.Sprintf("section %q is not enabled", edit.Section)}
	}
	cfg.EnabledSections[i].Priority = edit.Priority
	c.sortSections(cfg.EnabledSections)
	return nil
}

func (c *Configurator) toggleAgent(cfg *types.WorkflowConfig, edit Edit) error {
	if !c.catalog.HasAgent(edit.Agent) {
		return &EditError{Message: fmt.Sprintf("unknown agent %q", edit.Agent)}
	}
	if edit.Action == ActionDisableAgent {
		if c.catalog.IsCoreAgent(edit.Agent) {
			return &EditError{Message: fmt.Sprintf("agent %q is a core agent and cannot be disabled", edit.Agent)}
		}
		filtered := cfg.ActiveAgents[:0]
		for _, a := range cfg.ActiveAgents {
			if a != edit.Agent {
				filtered = append(filtered, a)
			}
		}
		cfg.ActiveAgents = filtered
		return nil
	}

	if contains(cfg.ActiveAgents, edit.Agent) {
		return nil
	}
	wanted := map[string]bool{edit.Agent: true}
	for _, a := range cfg.ActiveAgents {
		wanted[a] = true
	}
	var ordered []string
	for _, a := range c.catalog.AgentNames() {
		if wanted[a] {
			ordered = append(ordered, a)
		}
	}
	cfg.ActiveAgents = ordered
	return nil
}
