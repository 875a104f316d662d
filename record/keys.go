package record

// KeySet is a set of record identities.
type KeySet map[Key]struct{}

// KeysOf collects the identities of records.
func KeysOf(records []Record) KeySet {
	set := make(KeySet, len(records))
	for _, r := range records {
		set[r.Key()] = struct{}{}
	}
	return set
}

// Has reports whether k is in the set.
func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Without returns the records whose identity is not in s, preserving order.
// Returns an empty slice (not nil) when nothing remains.
func Without(records []Record, s KeySet) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !s.Has(r.Key()) {
			out = append(out, r)
		}
	}
	return out
}
