package boltsource

import (
	"time"

	"github.com/tidwall/gjson"

	"github.com/roach88/createcheck/record"
)

// Doc is a stored JSON document.
type Doc struct {
	key record.Key
	raw []byte
}

var _ record.Record = (*Doc)(nil)

// Key implements record.Record.
func (d *Doc) Key() record.Key {
	return d.key
}

// Get implements record.Record. name is a gjson path, so "owner.name" reads
// a nested field. Numbers are float64, objects map[string]any.
func (d *Doc) Get(name string) (any, bool) {
	res := gjson.GetBytes(d.raw, name)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// Time reads an RFC 3339 timestamp field.
func (d *Doc) Time(name string) (time.Time, bool) {
	res := gjson.GetBytes(d.raw, name)
	if res.Type != gjson.String {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, res.String())
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// JSON returns the raw document.
func (d *Doc) JSON() []byte {
	return d.raw
}
