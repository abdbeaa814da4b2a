// Package workspace persists editor sessions as snapshots in SQLite.
//
// A snapshot records every live node in insertion order together with its
// kind, label, enabled flag, bounds and connected input slots, plus the
// container rectangle. Gate functions and output capabilities are not data;
// they are rebound by name through a Binder when a snapshot is loaded.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: node and input rows cascade with their snapshot
//
// Snapshots are listed by a logical seq, then id. Wall-clock time is never
// stored.
package workspace
