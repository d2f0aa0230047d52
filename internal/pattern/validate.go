package pattern

import (
	"errors"
	"fmt"
)

// ErrDuplicateName is returned by Check when two patterns share a name.
var ErrDuplicateName = errors.New("duplicate pattern name")

// FieldError describes the first invalid field found in a definition.
type FieldError struct {
	Index int
	Name  string
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("pattern %d (%q): invalid %s", e.Index, e.Name, e.Field)
}

// Validate reports whether defs form a well-formed registry.
func Validate(defs []Definition) bool {
	return Check(defs) == nil
}

// Check returns the first problem in defs: duplicate names first, then the
// fields of each definition in order.
func Check(defs []Definition) error {
	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if _, ok := seen[d.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	for i, d := range defs {
		if field := checkDefinition(d); field != "" {
			return &FieldError{Index: i, Name: d.Name, Field: field}
		}
	}
	return nil
}

func checkDefinition(d Definition) string {
	if d.Name == "" {
		return "name"
	}
	if d.ClassName == "" {
		return "className"
	}
	if len(d.Detectors) == 0 {
		return "detectors"
	}
	for _, f := range d.Detectors {
		if f == nil {
			return "detectors"
		}
	}
	if d.InfoURL == "" {
		return "infoUrl"
	}
	if d.Info == "" {
		return "info"
	}
	if len(d.Languages) == 0 {
		return "languages"
	}
	for _, l := range d.Languages {
		if l == "" {
			return "languages"
		}
	}
	return ""
}
