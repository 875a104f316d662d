// Package detect finds the records a side-effecting block created.
//
// A Strategy runs the block exactly once and returns, per declared type, the
// records that did not exist before the block and do exist after it.
//
//   - TimestampStrategy (default, KeyTimestamp) reads the creation timestamp
//     column. Records stamped in the same clock tick as the start instant are
//     told apart by identity, so coarse timestamps never hide or invent a
//     creation.
//   - SnapshotStrategy (KeySnapshot) diffs full identity snapshots and needs
//     no timestamp column at all.
//
// Strategies are selected by key through For. The timestamp column and clock
// come from an explicit Config value; there is no package-level setting.
package detect
