package registry

import (
	"fmt"
	"strings"
)

// DuplicateNameError is returned when a component name is registered twice.
type DuplicateNameError struct {
	Name     string
	Existing string // origin of the definition that already holds the name
}

func (e *DuplicateNameError) Error() string {
	if e.Existing == "" {
		return fmt.Sprintf("component '%s' is already defined", e.Name)
	}
	return fmt.Sprintf("component '%s' is already defined at %s", e.Name, e.Existing)
}

// UnknownEntryError is returned when an explicitly requested entry component
// does not exist. Suggestions holds the closest registered names.
type UnknownEntryError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownEntryError) Error() string {
	msg := fmt.Sprintf("unknown entry component '%s'", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf("; did you mean %s?", quoteJoin(e.Suggestions))
	}
	return msg
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, " or ")
}
