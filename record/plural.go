package record

import (
	"fmt"
	"strings"
)

// PluralName returns the display name for n records of the type.
func (t Type) PluralName(n int) string {
	if n == 1 {
		return t.Name
	}
	if t.Plural != "" {
		return t.Plural
	}
	return pluralize(t.Name)
}

// CountString renders "1 Person" or "2 People".
func (t Type) CountString(n int) string {
	return fmt.Sprintf("%d %s", n, t.PluralName(n))
}

// pluralize applies the regular English suffix rules. Irregular nouns are
// handled by Type.Plural.
func pluralize(name string) string {
	if name == "" {
		return name
	}
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "s"), strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"), strings.HasSuffix(lower, "ch"),
		strings.HasSuffix(lower, "sh"):
		return name + "es"
	case strings.HasSuffix(lower, "y") && len(lower) > 1 && !strings.ContainsRune("aeiou", rune(lower[len(lower)-2])):
		return name[:len(name)-1] + "ies"
	default:
		return name + "s"
	}
}
