package detect

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/createcheck/record"
)

// TimestampStrategy classifies records by their creation timestamp.
//
// It reads the start instant T0 once and truncates it to the configured
// resolution. Stamps are compared at that resolution too. Records stamped at
// T0 before the block ran are remembered by identity. After the block, a
// record is new if it is stamped after T0, or stamped at T0 and was not
// remembered. The identity check is what keeps coarse timestamps correct:
// several creations can share one tick.
type TimestampStrategy struct {
	src        record.StampReader
	column     string
	clock      Clock
	resolution time.Duration
}

var _ Strategy = (*TimestampStrategy)(nil)

// NewTimestamp creates a timestamp strategy reading src.
func NewTimestamp(src record.StampReader, cfg Config) *TimestampStrategy {
	cfg = cfg.normalized()
	return &TimestampStrategy{
		src:        src,
		column:     cfg.Column,
		clock:      cfg.Clock,
		resolution: cfg.Resolution,
	}
}

// Capture implements Strategy.
//
// The result lists records stamped at T0 first, then later ones, each in
// source order, so earlier creations come first.
func (s *TimestampStrategy) Capture(ctx context.Context, types []record.Type, block func() error) (map[record.Type][]record.Record, error) {
	start := record.Truncate(s.clock.Now(), s.resolution)
	atStart := record.StampQuery{Column: s.column, Op: record.OpEqual, At: start, Resolution: s.resolution}
	afterStart := atStart
	afterStart.Op = record.OpAfter

	existing := make(map[record.Type]record.KeySet, len(types))
	for _, t := range types {
		ties, err := s.src.Stamped(ctx, t, atStart)
		if err != nil {
			return nil, fmt.Errorf("read %s records stamped at start: %w", t.Name, err)
		}
		existing[t] = record.KeysOf(ties)
	}

	if err := block(); err != nil {
		return nil, err
	}

	created := make(map[record.Type][]record.Record, len(types))
	for _, t := range types {
		ties, err := s.src.Stamped(ctx, t, atStart)
		if err != nil {
			return nil, fmt.Errorf("read %s records stamped at start: %w", t.Name, err)
		}
		later, err := s.src.Stamped(ctx, t, afterStart)
		if err != nil {
			return nil, fmt.Errorf("read %s records stamped after start: %w", t.Name, err)
		}
		created[t] = append(record.Without(ties, existing[t]), later...)
	}

	return created, nil
}
