package workflow

import "fmt"

// CoreSectionError means an edit tried to disable a core section
type CoreSectionError struct {
	Section string
}

func (e *CoreSectionError) Error() string {
	return fmt.Sprintf("section %q is a core section and cannot be disabled", e.Section)
}

// EditError represents an invalid customization edit
type EditError struct {
	Index   int
	Message string
}

func (e *EditError) Error() string {
	return fmt.Sprintf("edit %d: %s", e.Index, e.Message)
}
