package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/createcheck/detect"
	"github.com/roach88/createcheck/match"
	"github.com/roach88/createcheck/record"
)

// Created maps each declared type to the records the block created.
type Created map[record.Type][]record.Record

// Request declares what a block is expected to create.
type Request struct {
	// Counts is the exact number of new records expected per type.
	Counts map[record.Type]int

	// Attributes optionally lists one template per expected record.
	// len(Attributes[t]) must equal Counts[t].
	Attributes map[record.Type][]match.Template

	// Which is an optional extra check over every new record. Return an
	// *ExpectationError (see Failf) to fail the assertion.
	Which func(created Created) error

	// Strategy selects the change-detection strategy. Empty means the
	// default.
	Strategy detect.Key
}

// Validate checks the request without touching any store.
func (r Request) Validate() error {
	for _, t := range sortedTypes(r.Counts) {
		if n := r.Counts[t]; n < 0 {
			return &ConfigError{
				Type:    t,
				Message: fmt.Sprintf("expected count for %s must not be negative, got %d", t.Name, n),
			}
		}
	}

	for _, t := range sortedTypes(r.Attributes) {
		templates := r.Attributes[t]
		expected, declared := r.Counts[t]
		if !declared {
			return &ConfigError{
				Type:    t,
				Message: fmt.Sprintf("provided %d %s attribute templates, but no count is declared for %s", len(templates), t.Name, t.Name),
			}
		}
		if len(templates) != expected {
			return &ConfigError{
				Type: t,
				Message: fmt.Sprintf("specified the block should create %s, but provided %d %s attribute templates",
					t.CountString(expected), len(templates), t.Name),
			}
		}
	}

	return nil
}

// Types returns the declared types sorted by name.
func (r Request) Types() []record.Type {
	return sortedTypes(r.Counts)
}

// Description renders the request as "create 1 Person, 2 Pets".
func (r Request) Description() string {
	types := r.Types()
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.CountString(r.Counts[t])
	}
	return "create " + strings.Join(parts, ", ")
}

// sortedTypes returns the keys of m sorted by name, then table.
func sortedTypes[V any](m map[record.Type]V) []record.Type {
	types := make([]record.Type, 0, len(m))
	for t := range m {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].Name != types[j].Name {
			return types[i].Name < types[j].Name
		}
		return types[i].Table < types[j].Table
	})
	return types
}
