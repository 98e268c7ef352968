// Package store provides SQLite-backed persistence for game collections.
//
// The store is a key-value table: each collection key (tasks, actions,
// inventory, ...) maps to one JSON document holding the full collection.
// It implements state.KV.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
