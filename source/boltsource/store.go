package boltsource

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/roach88/createcheck/detect"
	"github.com/roach88/createcheck/record"
)

// Store is a bbolt-backed document store.
type Store struct {
	db     *bolt.DB
	mu     sync.RWMutex
	clock  detect.Clock
	column string
}

var _ record.Source = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp inserted documents.
func WithClock(clock detect.Clock) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithColumn sets the creation-timestamp field. Defaults to
// detect.DefaultColumn.
func WithColumn(column string) Option {
	return func(s *Store) {
		s.column = column
	}
}

// Open creates or opens a bbolt database at path.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	s := &Store{
		db:     db,
		clock:  detect.SystemClock{},
		column: detect.DefaultColumn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores doc as a new record of type t and returns it.
//
// The document gets a UUIDv7 identity in t.Key() and the clock's current
// instant in the timestamp field, unless doc already sets them.
func (s *Store) Insert(t record.Type, doc map[string]any) (*Doc, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}

	fields := make(map[string]any, len(doc)+2)
	fields[t.Key()] = id.String()
	fields[s.column] = s.clock.Now().UTC().Format(time.RFC3339Nano)
	for k, v := range doc {
		fields[k] = v
	}

	key, ok := fields[t.Key()].(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("%s %s must be a non-empty string", t.Name, t.Key())
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", t.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(t.Table))
		if err != nil {
			return fmt.Errorf("create bucket %s: %w", t.Table, err)
		}
		if b.Get([]byte(key)) != nil {
			return fmt.Errorf("%s %s already exists", t.Name, key)
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return nil, err
	}

	return &Doc{key: record.Key(key), raw: data}, nil
}

// All implements record.Snapshotter. Documents are returned in key order.
func (s *Store) All(ctx context.Context, t record.Type) ([]record.Record, error) {
	docs, err := s.scan(t)
	if err != nil {
		return nil, err
	}
	out := make([]record.Record, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out, nil
}

// Stamped implements record.StampReader. A document whose field is missing
// or not an RFC 3339 string fails with record.ErrNoTimestamps.
func (s *Store) Stamped(ctx context.Context, t record.Type, q record.StampQuery) ([]record.Record, error) {
	if q.Op != record.OpEqual && q.Op != record.OpAfter {
		return nil, fmt.Errorf("unsupported timestamp comparison %v", q.Op)
	}

	docs, err := s.scan(t)
	if err != nil {
		return nil, err
	}

	type stamped struct {
		doc *Doc
		at  time.Time
	}
	var matched []stamped
	for _, d := range docs {
		at, ok := d.Time(q.Column)
		if !ok {
			return nil, fmt.Errorf("%s %s: %w", t.Name, d.key, record.ErrNoTimestamps)
		}
		if q.Matches(at) {
			matched = append(matched, stamped{d, at})
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].at.Before(matched[j].at)
	})

	out := make([]record.Record, len(matched))
	for i, m := range matched {
		out[i] = m.doc
	}
	return out, nil
}

func (s *Store) scan(t record.Type) ([]*Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*Doc, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(t.Table))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			if !json.Valid(v) {
				return fmt.Errorf("%s %s: invalid JSON document", t.Name, string(k))
			}
			raw := make([]byte, len(v))
			copy(raw, v)
			docs = append(docs, &Doc{key: record.Key(k), raw: raw})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}
