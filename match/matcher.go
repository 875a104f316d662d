package match

import "github.com/roach88/createcheck/record"

// Pair is a template and the record it matched.
type Pair struct {
	Template Template
	Record   record.Record
}

// Result is the outcome of matching records against templates.
//
// Every template appears exactly once across Matched and Missing; every
// record appears exactly once across Matched and Extra.
type Result struct {
	// Matched holds (template, record) pairs in template order.
	Matched []Pair

	// Missing holds templates no remaining record satisfied.
	Missing []Template

	// Extra holds records no template claimed, in their original order.
	Extra []record.Record
}

// OK reports whether every template found a record.
func (r Result) OK() bool {
	return len(r.Missing) == 0
}

// Match assigns records to templates greedily.
//
// Templates are processed in order; each takes the first remaining record
// (in the given record order) that satisfies all of its attributes. The
// result is deterministic for the same inputs. See the package documentation
// for the cases first-fit under-reports.
func Match(records []record.Record, templates []Template) Result {
	remaining := make([]record.Record, len(records))
	copy(remaining, records)

	result := Result{
		Matched: []Pair{},
		Missing: []Template{},
	}

	for _, tmpl := range templates {
		idx := -1
		for i, r := range remaining {
			if tmpl.MatchedBy(r) {
				idx = i
				break
			}
		}

		if idx < 0 {
			result.Missing = append(result.Missing, tmpl)
			continue
		}

		result.Matched = append(result.Matched, Pair{Template: tmpl, Record: remaining[idx]})
		remaining = append(remaining[:idx:idx], remaining[idx+1:]...)
	}

	result.Extra = remaining
	return result
}
