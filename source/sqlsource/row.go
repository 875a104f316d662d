package sqlsource

import (
	"fmt"

	"github.com/roach88/createcheck/record"
)

// Row is one table row.
type Row struct {
	key    record.Key
	values map[string]any
}

var _ record.Record = (*Row)(nil)

// Key implements record.Record.
func (r *Row) Key() record.Key {
	return r.key
}

// Get implements record.Record. Byte slices are returned as strings.
func (r *Row) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Values returns a copy of the row's columns.
func (r *Row) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

func keyOf(v any) record.Key {
	switch k := v.(type) {
	case nil:
		return ""
	case string:
		return record.Key(k)
	case []byte:
		return record.Key(k)
	default:
		return record.Key(fmt.Sprint(k))
	}
}
