// Package sqlite provides a SQLite-backed implementation of the analysis
// store, used by the HTTP server so chat can reference earlier results
// across restarts.
//
// The adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The schema is managed through versioned migrations in the
// migrations/ directory. All operations are thread-safe via SQLite's own
// locking in WAL mode.
package sqlite
