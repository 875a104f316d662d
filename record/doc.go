// Package record defines the read-only view of persisted records that the
// change-detection and matching engine works with.
//
// A Type describes one class of persisted record (a SQL table, a bolt
// bucket). A Record exposes identity and named attribute reads; the engine
// never writes through it.
//
// Sources are the narrow persistence contract:
//
//   - Snapshotter: every record of a type currently stored
//   - StampReader: records whose creation timestamp compares to an instant
//
// Both sources shipped with this module (source/sqlsource and
// source/boltsource) implement the combined Source interface.
package record
