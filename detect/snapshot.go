package detect

import (
	"context"
	"fmt"

	"github.com/roach88/createcheck/record"
)

// SnapshotStrategy diffs complete identity snapshots taken before and after
// the block. It reads every record of each type twice, and needs no
// timestamp column.
type SnapshotStrategy struct {
	src record.Snapshotter
}

var _ Strategy = (*SnapshotStrategy)(nil)

// NewSnapshot creates a snapshot-diff strategy reading src.
func NewSnapshot(src record.Snapshotter) *SnapshotStrategy {
	return &SnapshotStrategy{src: src}
}

// Capture implements Strategy. New records keep the after-snapshot's order.
func (s *SnapshotStrategy) Capture(ctx context.Context, types []record.Type, block func() error) (map[record.Type][]record.Record, error) {
	before := make(map[record.Type]record.KeySet, len(types))
	for _, t := range types {
		all, err := s.src.All(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s before block: %w", t.Name, err)
		}
		before[t] = record.KeysOf(all)
	}

	if err := block(); err != nil {
		return nil, err
	}

	created := make(map[record.Type][]record.Record, len(types))
	for _, t := range types {
		all, err := s.src.All(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s after block: %w", t.Name, err)
		}
		created[t] = record.Without(all, before[t])
	}

	return created, nil
}
