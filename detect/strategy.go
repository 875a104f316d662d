package detect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/createcheck/record"
)

// Strategy computes the records a block created.
type Strategy interface {
	// Capture runs block exactly once and returns the new records per type.
	// Every declared type has an entry, empty when nothing was created.
	//
	// An error returned by block is returned unmodified and no records are
	// computed. A panic in block is not recovered.
	Capture(ctx context.Context, types []record.Type, block func() error) (map[record.Type][]record.Record, error)
}

// Key selects a strategy.
type Key string

const (
	// KeyTimestamp selects TimestampStrategy.
	KeyTimestamp Key = "timestamp"
	// KeySnapshot selects SnapshotStrategy.
	KeySnapshot Key = "snapshot"

	// KeyDefault is used when no key is given.
	KeyDefault = KeyTimestamp
)

// Factory builds a strategy over a source.
type Factory func(src record.Source, cfg Config) Strategy

var factories = map[Key]Factory{
	KeyTimestamp: func(src record.Source, cfg Config) Strategy { return NewTimestamp(src, cfg) },
	KeySnapshot:  func(src record.Source, cfg Config) Strategy { return NewSnapshot(src) },
}

// Keys returns the valid strategy keys in sorted order.
func Keys() []Key {
	keys := make([]Key, 0, len(factories))
	for k := range factories {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// For returns the strategy registered under key. An empty key selects
// KeyDefault. Unknown keys return *UnknownStrategyError.
func For(key Key, src record.Source, cfg Config) (Strategy, error) {
	if key == "" {
		key = KeyDefault
	}
	factory, ok := factories[key]
	if !ok {
		return nil, &UnknownStrategyError{Key: key, Valid: Keys()}
	}
	return factory(src, cfg), nil
}

// UnknownStrategyError reports a strategy key that is not registered.
type UnknownStrategyError struct {
	Key   Key
	Valid []Key
}

// Error implements the error interface.
func (e *UnknownStrategyError) Error() string {
	valid := make([]string, len(e.Valid))
	for i, k := range e.Valid {
		valid[i] = string(k)
	}
	return fmt.Sprintf("unknown strategy %q: valid strategies are %s", e.Key, strings.Join(valid, ", "))
}
