// Package sqlite provides the SQLite-backed run archive.
//
// One database file stores finished run reports and their per-invoice
// results. The archive is append-only from the core's point of view;
// pruning keeps the file bounded.
//
// Uses modernc.org/sqlite (pure Go, no CGO) with WAL mode and a busy
// timeout so a concurrent history query never hits a locked database.
package sqlite
