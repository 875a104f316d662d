package match

import (
	"sort"
	"strings"

	"github.com/roach88/createcheck/record"
)

// Template describes the attributes of one anticipated new record.
type Template map[string]Value

// Attrs is a convenience form of Template with plain Go values.
type Attrs map[string]any

// Template resolves a into a Template. Entries that already are a Value are
// kept; everything else becomes a Literal.
func (a Attrs) Template() Template {
	t := make(Template, len(a))
	for k, v := range a {
		if val, ok := v.(Value); ok {
			t[k] = val
			continue
		}
		t[k] = Literal{Want: v}
	}
	return t
}

// Keys returns the attribute names in sorted order.
func (t Template) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MatchedBy reports whether every attribute of the template is satisfied by
// the record. An attribute the record does not have is never satisfied.
func (t Template) MatchedBy(r record.Record) bool {
	for name, want := range t {
		actual, ok := r.Get(name)
		if !ok {
			return false
		}
		if !want.SatisfiedBy(actual) {
			return false
		}
	}
	return true
}

// String renders the template as {name: value, ...} with sorted keys.
func (t Template) String() string {
	parts := make([]string, 0, len(t))
	for _, k := range t.Keys() {
		parts = append(parts, k+": "+t[k].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// AttributeNames returns the sorted union of attribute names used by
// templates. Failure messages show these attributes for extra records.
func AttributeNames(templates []Template) []string {
	seen := make(map[string]struct{})
	for _, t := range templates {
		for k := range t {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DescribeRecord renders the named attributes of r as {name: value, ...}.
// Attributes the record lacks are shown as <missing>.
func DescribeRecord(r record.Record, names []string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		actual, ok := r.Get(name)
		rendered := "<missing>"
		if ok {
			rendered = FormatValue(actual)
		}
		parts = append(parts, name+": "+rendered)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
