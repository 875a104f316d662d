package reconcile

import (
	"fmt"
	"strings"

	"github.com/roach88/createcheck/match"
	"github.com/roach88/createcheck/record"
)

// State is a step of the evaluation state machine.
type State int

const (
	StateInit State = iota
	StateCountsChecked
	StateAttributesChecked
	StatePredicateChecked
	StatePassed
	StateFailedCounts
	StateFailedAttributes
	StateFailedPredicate
)

var stateNames = map[State]string{
	StateInit:              "init",
	StateCountsChecked:     "counts_checked",
	StateAttributesChecked: "attributes_checked",
	StatePredicateChecked:  "predicate_checked",
	StatePassed:            "passed",
	StateFailedCounts:      "failed_counts",
	StateFailedAttributes:  "failed_attributes",
	StateFailedPredicate:   "failed_predicate",
}

// String returns the snake_case state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState returns the state named name.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return StateInit, fmt.Errorf("unknown state %q", name)
}

// Terminal reports whether evaluation stops in s.
func (s State) Terminal() bool {
	switch s {
	case StatePassed, StateFailedCounts, StateFailedAttributes, StateFailedPredicate:
		return true
	}
	return false
}

// CountMismatch is the expected and actual new-record count of one type.
type CountMismatch struct {
	Expected int
	Actual   int
}

// Report is the outcome of one evaluation.
type Report struct {
	// State is the terminal state reached.
	State State

	// Path lists every state entered, starting with StateInit.
	Path []State

	// Types are the declared types in rendering order.
	Types []record.Type

	// Expected is the declared count per type.
	Expected map[record.Type]int

	// Created holds the new records per type.
	Created Created

	// Counts holds only the types whose count did not match.
	Counts map[record.Type]CountMismatch

	// Templates and Matches hold the attribute templates and their match
	// result for every type that had templates, once attributes were checked.
	Templates map[record.Type][]match.Template
	Matches   map[record.Type]match.Result

	// Predicate is the predicate's failure, if it failed.
	Predicate *ExpectationError

	description string
}

func newReport(req Request) *Report {
	expected := make(map[record.Type]int, len(req.Counts))
	for t, n := range req.Counts {
		expected[t] = n
	}
	return &Report{
		State:       StateInit,
		Path:        []State{StateInit},
		Types:       req.Types(),
		Expected:    expected,
		Created:     Created{},
		Counts:      make(map[record.Type]CountMismatch),
		Templates:   make(map[record.Type][]match.Template),
		Matches:     make(map[record.Type]match.Result),
		description: req.Description(),
	}
}

func (r *Report) advance(s State) {
	r.State = s
	r.Path = append(r.Path, s)
}

// Passed reports whether the assertion held.
func (r *Report) Passed() bool {
	return r.State == StatePassed
}

// Description renders the assertion as "create 1 Person, 2 Pets".
func (r *Report) Description() string {
	return r.description
}

// FailureMessage renders why the assertion did not hold.
// Returns "" when the report passed.
func (r *Report) FailureMessage() string {
	switch r.State {
	case StateFailedCounts:
		return r.countsMessage()
	case StateFailedAttributes:
		return r.attributesMessage()
	case StateFailedPredicate:
		return r.Predicate.Message
	case StatePassed:
		return ""
	default:
		return "Unknown error"
	}
}

// NegatedFailureMessage renders why a negated assertion did not hold, that
// is, why the block did create what it should not have.
func (r *Report) NegatedFailureMessage() string {
	parts := make([]string, 0, len(r.Types))
	for _, t := range r.Types {
		parts = append(parts, fmt.Sprintf("The block should not have created %s, but created %d.",
			t.CountString(r.Expected[t]), len(r.Created[t])))
	}
	return strings.Join(parts, " ")
}

func (r *Report) countsMessage() string {
	parts := make([]string, 0, len(r.Counts))
	for _, t := range r.Types {
		mismatch, ok := r.Counts[t]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("The block should have created %s, but created %d.",
			t.CountString(mismatch.Expected), mismatch.Actual))
	}
	return strings.Join(parts, " ")
}

func (r *Report) attributesMessage() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "The block should have created:\n")
	for _, t := range r.Types {
		templates, ok := r.Templates[t]
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, "    %s with these attributes:\n", t.CountString(len(templates)))
		for _, tmpl := range templates {
			fmt.Fprintf(&buf, "        %s\n", tmpl)
		}
	}

	fmt.Fprintf(&buf, "Diff:")
	for _, t := range r.Types {
		result, ok := r.Matches[t]
		if !ok || len(result.Missing) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "\n    Missing %s with these attributes:", t.CountString(len(result.Missing)))
		for _, tmpl := range result.Missing {
			fmt.Fprintf(&buf, "\n        %s", tmpl)
		}
	}
	for _, t := range r.Types {
		result, ok := r.Matches[t]
		if !ok || len(result.Extra) == 0 {
			continue
		}
		names := match.AttributeNames(r.Templates[t])
		fmt.Fprintf(&buf, "\n    Extra %s with these attributes:", t.CountString(len(result.Extra)))
		for _, rec := range result.Extra {
			fmt.Fprintf(&buf, "\n        %s", match.DescribeRecord(rec, names))
		}
	}

	return buf.String()
}
