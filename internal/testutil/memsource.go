package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/roach88/createcheck/record"
)

// MemRecord is a record held by MemSource.
type MemRecord struct {
	ID    record.Key
	Attrs map[string]any
}

// Key implements record.Record.
func (r *MemRecord) Key() record.Key { return r.ID }

// Get implements record.Record.
func (r *MemRecord) Get(name string) (any, bool) {
	v, ok := r.Attrs[name]
	return v, ok
}

// MemSource is an in-memory record.Source for tests.
//
// Created records are stamped with the clock's current instant in Column
// (default "created_at") and get sequential integer identities.
type MemSource struct {
	mu     sync.Mutex
	clock  interface{ Now() time.Time }
	Column string
	tables map[string][]*MemRecord
	nextID int64

	// Err, when set, is returned by every read.
	Err error

	// Reads counts All and Stamped calls.
	Reads int
}

var _ record.Source = (*MemSource)(nil)

// NewMemSource creates an empty source stamping records with clock.
func NewMemSource(clock interface{ Now() time.Time }) *MemSource {
	return &MemSource{
		clock:  clock,
		Column: "created_at",
		tables: make(map[string][]*MemRecord),
	}
}

// Create stores a record of type t. A value for Column in attrs overrides
// the clock stamp.
func (s *MemSource) Create(t record.Type, attrs map[string]any) *MemRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	copied := make(map[string]any, len(attrs)+2)
	copied[t.Key()] = s.nextID
	copied[s.Column] = s.clock.Now()
	for k, v := range attrs {
		copied[k] = v
	}

	r := &MemRecord{ID: record.Key(strconv.FormatInt(s.nextID, 10)), Attrs: copied}
	s.tables[t.Table] = append(s.tables[t.Table], r)
	return r
}

// All implements record.Snapshotter.
func (s *MemSource) All(ctx context.Context, t record.Type) ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	if s.Err != nil {
		return nil, s.Err
	}

	out := make([]record.Record, 0, len(s.tables[t.Table]))
	for _, r := range s.tables[t.Table] {
		out = append(out, r)
	}
	return out, nil
}

// Stamped implements record.StampReader.
func (s *MemSource) Stamped(ctx context.Context, t record.Type, q record.StampQuery) ([]record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads++
	if s.Err != nil {
		return nil, s.Err
	}

	var matched []*MemRecord
	for _, r := range s.tables[t.Table] {
		stamp, ok := r.Attrs[q.Column].(time.Time)
		if !ok {
			return nil, fmt.Errorf("%s %s: %w", t.Name, r.ID, record.ErrNoTimestamps)
		}
		if q.Matches(stamp) {
			matched = append(matched, r)
		}
	}

	// Ordered by timestamp, then creation order
	sort.SliceStable(matched, func(i, j int) bool {
		a := matched[i].Attrs[q.Column].(time.Time)
		b := matched[j].Attrs[q.Column].(time.Time)
		return a.Before(b)
	})

	out := make([]record.Record, len(matched))
	for i, r := range matched {
		out[i] = r
	}
	return out, nil
}
