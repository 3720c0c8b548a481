package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the name of the database file inside the data directory.
const FileName = "wikibridge.db"

// ErrItemExists is returned when creating a surface item whose id is taken.
var ErrItemExists = errors.New("surface item already exists")

// ErrItemNotFound is returned when updating a surface item that does not exist.
var ErrItemNotFound = errors.New("surface item not found")

// StateDB provides SQLite-based storage for preferences and surface items.
type StateDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures StateDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent reads.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a StateDB in dbDir.
func Open(dbDir string, opts Options) (*StateDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &StateDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *StateDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *StateDB) Close() error {
	return sdb.db.Close()
}

func (sdb *StateDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS surface_items (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		contexts TEXT NOT NULL DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// GetBool returns the boolean stored under key.
// The second return value is false when the key has never been written.
func (sdb *StateDB) GetBool(ctx context.Context, key string) (bool, bool, error) {
	var raw string
	err := sdb.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to read preference %q: %w", key, err)
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, true, fmt.Errorf("failed to parse preference %q: %w", key, err)
	}
	return v, true, nil
}

// SetBool stores value under key.
func (sdb *StateDB) SetBool(ctx context.Context, key string, value bool) error {
	query := `
	INSERT INTO preferences (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = CURRENT_TIMESTAMP
	`
	if _, err := sdb.db.ExecContext(ctx, query, key, strconv.FormatBool(value)); err != nil {
		return fmt.Errorf("failed to write preference %q: %w", key, err)
	}
	return nil
}

// FlipBool negates the boolean stored under key in a single transaction and
// returns the new value. An unset key flips from false to true.
func (sdb *StateDB) FlipBool(ctx context.Context, key string) (bool, error) {
	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	current := false
	err = tx.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, fmt.Errorf("failed to read preference %q: %w", key, err)
	default:
		if current, err = strconv.ParseBool(raw); err != nil {
			return false, fmt.Errorf("failed to parse preference %q: %w", key, err)
		}
	}

	next := !current
	query := `
	INSERT INTO preferences (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		updated_at = CURRENT_TIMESTAMP
	`
	if _, err := tx.ExecContext(ctx, query, key, strconv.FormatBool(next)); err != nil {
		return false, fmt.Errorf("failed to write preference %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit preference %q: %w", key, err)
	}
	return next, nil
}

// SurfaceItem is a persisted control-surface entry.
type SurfaceItem struct {
	ID        string
	Title     string
	Contexts  []string
	UpdatedAt time.Time
}

// CreateItem inserts a new surface item. It returns ErrItemExists when the
// id is already registered.
func (sdb *StateDB) CreateItem(ctx context.Context, item SurfaceItem) error {
	query := `INSERT INTO surface_items (id, title, contexts) VALUES (?, ?, ?)`
	_, err := sdb.db.ExecContext(ctx, query, item.ID, item.Title, strings.Join(item.Contexts, ","))
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrItemExists, item.ID)
		}
		return fmt.Errorf("failed to create surface item: %w", err)
	}
	return nil
}

// RemoveItem deletes a surface item. Removing a missing item is not an error.
func (sdb *StateDB) RemoveItem(ctx context.Context, id string) error {
	if _, err := sdb.db.ExecContext(ctx, `DELETE FROM surface_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove surface item: %w", err)
	}
	return nil
}

// UpdateItemTitle changes the title of an existing surface item.
func (sdb *StateDB) UpdateItemTitle(ctx context.Context, id, title string) error {
	query := `UPDATE surface_items SET title = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := sdb.db.ExecContext(ctx, query, title, id)
	if err != nil {
		return fmt.Errorf("failed to update surface item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update surface item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return nil
}

// GetItem retrieves a surface item by id. It returns nil when absent.
func (sdb *StateDB) GetItem(ctx context.Context, id string) (*SurfaceItem, error) {
	query := `SELECT id, title, contexts, updated_at FROM surface_items WHERE id = ?`

	var item SurfaceItem
	var contexts, timestamp string
	err := sdb.db.QueryRowContext(ctx, query, id).Scan(&item.ID, &item.Title, &contexts, &timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get surface item: %w", err)
	}

	if contexts != "" {
		item.Contexts = strings.Split(contexts, ",")
	}
	item.UpdatedAt = parseTimestamp(timestamp)
	return &item, nil
}

// isConstraintError reports whether err is a SQLite uniqueness violation.
func isConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed")
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each SQLite timestamp format and returns the zero
// time when none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
