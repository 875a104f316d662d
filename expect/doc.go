// Package expect provides testify-style assertions about the records a block
// of code creates.
//
// A Checker is bound to one record source:
//
//	c := expect.New(src)
//	c.Creates(expect.Counts{person: 1}).
//		WithAttributes(expect.Attributes{person: {match.Attrs{"first_name": "Pam"}.Template()}}).
//		Assert(t, func() error {
//			return people.Create(ctx, "Pam", "Greer")
//		})
//
// CreatesA is shorthand for a count of one:
//
//	c.CreatesA(person).With(match.Attrs{"first_name": "Pam"}).Assert(t, block)
//
// Refute passes only when the block did not produce what the assertion
// describes. Evaluate returns the underlying reconcile.Report for callers
// that render outcomes themselves.
package expect
