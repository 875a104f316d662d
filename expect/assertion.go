package expect

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/createcheck/match"
	"github.com/roach88/createcheck/reconcile"
	"github.com/roach88/createcheck/record"
)

// Assertion is a declared expectation about what a block creates.
//
// Chain methods record configuration problems instead of panicking; the
// problem is reported by Assert, Require, Refute or Evaluate before the block
// runs.
type Assertion struct {
	checker *Checker
	req     reconcile.Request
	err     error
}

// WithAttributes sets the attribute templates. Every type in attrs must have
// a declared count equal to its number of templates.
func (a *Assertion) WithAttributes(attrs Attributes) *Assertion {
	if a.req.Attributes == nil {
		a.req.Attributes = make(map[record.Type][]match.Template, len(attrs))
	}
	for t, templates := range attrs {
		a.req.Attributes[t] = append([]match.Template(nil), templates...)
	}
	if a.err == nil {
		a.err = a.req.Validate()
	}
	return a
}

// With sets the attribute templates of the only declared type.
func (a *Assertion) With(attrs ...match.Attrs) *Assertion {
	types := a.req.Types()
	if len(types) != 1 {
		if a.err == nil {
			a.err = &reconcile.ConfigError{
				Message: fmt.Sprintf("With needs exactly one declared type, got %d; use WithAttributes", len(types)),
			}
		}
		return a
	}

	templates := make([]match.Template, len(attrs))
	for i, at := range attrs {
		templates[i] = at.Template()
	}
	return a.WithAttributes(Attributes{types[0]: templates})
}

// Which adds a check over every new record. Return reconcile.Failf to fail
// the assertion; any other error is reported as an evaluation error.
func (a *Assertion) Which(fn func(created Created) error) *Assertion {
	a.req.Which = fn
	return a
}

// WhichAssert adds a check written with testify assertions. Assertion
// failures inside fn fail the assertion with their messages.
func (a *Assertion) WhichAssert(fn func(t assert.TestingT, created Created)) *Assertion {
	return a.Which(func(created Created) error {
		rec := &recorder{}
		fn(rec, created)
		return rec.err()
	})
}

// Description renders the assertion as "create 1 Person, 2 Pets".
func (a *Assertion) Description() string {
	return a.req.Description()
}

// Evaluate runs block and returns the report.
func (a *Assertion) Evaluate(ctx context.Context, block func() error) (*reconcile.Report, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.checker.engine().Evaluate(ctx, a.req, block)
}

// Assert runs block and reports a failure on t unless it created exactly
// what the assertion describes. Returns whether the assertion held.
func (a *Assertion) Assert(t assert.TestingT, block func() error, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}

	report, err := a.Evaluate(context.Background(), block)
	if err != nil {
		return assert.Fail(t, a.errorMessage(err), msgAndArgs...)
	}
	if !report.Passed() {
		return assert.Fail(t, report.FailureMessage(), msgAndArgs...)
	}
	return true
}

// Require is Assert followed by t.FailNow on failure.
func (a *Assertion) Require(t require.TestingT, block func() error, msgAndArgs ...any) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	if !a.Assert(t, block, msgAndArgs...) {
		t.FailNow()
	}
}

// Refute runs block and reports a failure on t if it created what the
// assertion describes. Configuration and block errors fail as well.
func (a *Assertion) Refute(t assert.TestingT, block func() error, msgAndArgs ...any) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}

	report, err := a.Evaluate(context.Background(), block)
	if err != nil {
		return assert.Fail(t, a.errorMessage(err), msgAndArgs...)
	}
	if report.Passed() {
		return assert.Fail(t, report.NegatedFailureMessage(), msgAndArgs...)
	}
	return true
}

func (a *Assertion) errorMessage(err error) string {
	if reconcile.IsConfigError(err) {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", a.Description(), err)
}
