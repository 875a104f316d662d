// Package reconcile evaluates a record-creation assertion.
//
// An Engine runs the user's block once through a detect.Strategy and walks
// a fixed state machine over the result:
//
//	Init → CountsChecked → FailedCounts
//	                     → AttributesChecked → FailedAttributes
//	                                         → PredicateChecked → FailedPredicate
//	                                                            → Passed
//
// A count mismatch short-circuits attribute matching and the predicate.
// AttributesChecked is only entered when templates were supplied and
// PredicateChecked only when a predicate was; absent steps pass through.
//
// # Errors
//
// Malformed requests fail with *ConfigError before the block runs. Count,
// attribute and predicate mismatches are not errors: they are terminal
// states on the Report. A predicate signals a mismatch by returning an
// *ExpectationError; any other error from the predicate, and any error from
// the block, is returned unmodified.
package reconcile
