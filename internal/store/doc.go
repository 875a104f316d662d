// Package store provides the SQLite scratch database scenarios run against.
//
// Every store starts with the fixture schema:
//   - people: id, first_name, last_name, email, age, created_at
//   - pets: id, person_id, name, species, created_at
//
// created_at defaults to strftime('%Y-%m-%d %H:%M:%f', 'now'), millisecond
// UTC text that orders the same way as sqlsource.TimeLayout. Rows inserted
// within one millisecond share a timestamp, which is exactly the situation
// the timestamp strategy's tie handling exists for.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
