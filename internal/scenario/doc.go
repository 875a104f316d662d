// Package scenario runs record-creation assertions described in YAML files
// against a scratch SQLite database.
//
// A scenario declares record types, optional schema and setup statements, the
// block statements whose effect is asserted, and the expected outcome:
//
//	name: person_created
//	description: one person with matching attributes
//	types:
//	  Person: {table: people, plural: People}
//	setup:
//	  - INSERT INTO people (first_name) VALUES ('Existing')
//	block:
//	  - INSERT INTO people (first_name, last_name, age) VALUES ('Pam', 'Greer', 31)
//	expect:
//	  counts: {Person: 1}
//	  attributes:
//	    Person:
//	      - {first_name: Pam, age: {cue: ">=18"}}
//	  want: passed
//
// Attribute values are literals, or one-key maps selecting a predicate:
// {cue: expr}, {regexp: pattern}, {text: string} or {present: true}.
//
// A table whose timestamps keep whole seconds, such as one defaulting to
// CURRENT_TIMESTAMP, sets "resolution: 1s" so creations in the start second
// are still found.
//
// Each scenario runs in a fresh in-memory database. Run reports whether the
// evaluation reached the wanted state; RunWithGolden also snapshots the
// rendered report.
package scenario
