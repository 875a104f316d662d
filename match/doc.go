// Package match reconciles newly created records against expected attribute
// templates.
//
// # Values
//
// A template maps attribute names to a Value. Value is sealed with exactly
// two variants:
//
//   - Literal: equality, with the coercions SQL drivers need (int vs int64,
//     bool vs 0/1, []byte vs string)
//   - Predicate: a described test function (Regexp, Text, CUE, Present, Func)
//
// Plain Go values are wrapped in Literal once, when the template is built
// with Attrs.Template. Matching never inspects value types to decide how to
// compare.
//
// # Matching
//
// Match is greedy first-fit: templates are processed in declaration order and
// each takes the first remaining record that satisfies all of its attributes.
// This is deterministic and O(templates × records), but it is not an optimal
// bipartite assignment. With templates [{a:1}, {a:1, b:2}] and records
// [{a:1, b:2}, {a:1, b:5}], the first template takes the b:2 record and the
// second template is reported missing even though a different assignment
// would satisfy both. Callers that hit this should order templates from most
// to least specific.
package match
