// Package database provides SQLite-based storage for wikibridge.
//
// StateDB holds the only state wikibridge persists:
//   - the auto-navigate preference (a single named boolean)
//   - the control-surface items, which outlive the background process
//
// Check results are never stored; every check is a fresh query.
//
// The driver is modernc.org/sqlite, which is CGO-free and keeps the whole
// store in one file under the XDG data directory.
package database
