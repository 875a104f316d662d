package record

import (
	"context"
	"errors"
	"time"
)

// DefaultPrimaryKey is the identity attribute used when a Type leaves
// PrimaryKey empty.
const DefaultPrimaryKey = "id"

// Type describes one class of persisted record.
//
// Type is a comparable value so it can key the expected-count and
// expected-attribute maps directly.
type Type struct {
	// Name is the display name used in failure messages (e.g. "Person").
	Name string

	// Plural overrides the default English plural of Name (e.g. "People").
	Plural string

	// Table is the storage collection: a SQL table or a bolt bucket.
	Table string

	// PrimaryKey is the identity attribute. Empty means DefaultPrimaryKey.
	PrimaryKey string
}

// Key returns the identity attribute name for the type.
func (t Type) Key() string {
	if t.PrimaryKey == "" {
		return DefaultPrimaryKey
	}
	return t.PrimaryKey
}

// String returns the display name.
func (t Type) String() string {
	return t.Name
}

// Key is the identity of a record within its type.
// Sources render native primary keys (integers, UUIDs) to their string form.
type Key string

// Record is an opaque persisted entity.
type Record interface {
	// Key returns the record's identity.
	Key() Key

	// Get reads a named attribute. ok is false when the record has no such
	// attribute.
	Get(name string) (value any, ok bool)
}

// Op is a timestamp comparison understood by StampReader.
type Op int

const (
	// OpEqual selects records stamped exactly at the instant.
	OpEqual Op = iota
	// OpAfter selects records stamped strictly after the instant.
	OpAfter
)

// String returns the SQL operator for the comparison.
func (o Op) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpAfter:
		return ">"
	default:
		return "?"
	}
}

// ErrNoTimestamps is returned by a StampReader whose store keeps no
// creation timestamp for a type.
var ErrNoTimestamps = errors.New("record: store has no creation timestamps")

// Snapshotter lists every record of a type currently stored.
//
// Results must be in a stable order (creation order where the store knows it).
type Snapshotter interface {
	All(ctx context.Context, t Type) ([]Record, error)
}

// StampQuery selects records by creation timestamp.
type StampQuery struct {
	// Column is the creation-timestamp attribute.
	Column string

	// Op compares each stored stamp to At.
	Op Op

	// At is the instant stamps are compared to.
	At time.Time

	// Resolution is the precision of the comparison. Both At and the stored
	// stamps are truncated to it first, so a store that keeps whole seconds
	// is compared in whole seconds. Zero compares exactly.
	Resolution time.Duration
}

// Matches reports whether a stored stamp satisfies the query.
func (q StampQuery) Matches(stamp time.Time) bool {
	stamp = Truncate(stamp, q.Resolution)
	at := Truncate(q.At, q.Resolution)
	switch q.Op {
	case OpEqual:
		return stamp.Equal(at)
	case OpAfter:
		return stamp.After(at)
	default:
		return false
	}
}

// Truncate rounds ts down to a multiple of res since the zero time, which
// for whole seconds, minutes, hours and days aligns with the UTC clock.
// A non-positive res returns ts unchanged.
func Truncate(ts time.Time, res time.Duration) time.Time {
	if res <= 0 {
		return ts
	}
	return ts.Truncate(res)
}

// StampReader lists records whose creation timestamp satisfies q.
//
// Results must be ordered by timestamp, then identity.
type StampReader interface {
	Stamped(ctx context.Context, t Type, q StampQuery) ([]Record, error)
}

// Source is a store that supports both change-detection strategies.
type Source interface {
	Snapshotter
	StampReader
}
