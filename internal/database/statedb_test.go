package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *StateDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("database directory should not have been created")
		}
	})

	t.Run("data survives reopen", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		ctx := context.Background()

		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if err := db1.SetBool(ctx, "autoNavigate", true); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if err := db1.CreateItem(ctx, SurfaceItem{ID: "menu", Title: "ON", Contexts: []string{"action"}}); err != nil {
			t.Fatalf("failed to create item: %v", err)
		}
		_ = db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db2.Close()

		v, ok, err := db2.GetBool(ctx, "autoNavigate")
		if err != nil || !ok || !v {
			t.Errorf("expected persisted true, got %v (set=%v, err=%v)", v, ok, err)
		}
		item, err := db2.GetItem(ctx, "menu")
		if err != nil || item == nil || item.Title != "ON" {
			t.Errorf("expected persisted item, got %+v (err=%v)", item, err)
		}
	})
}

// TestPreferences tests boolean preference storage.
func TestPreferences(t *testing.T) {
	t.Parallel()

	t.Run("unset key reports not set", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		v, ok, err := db.GetBool(context.Background(), "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok || v {
			t.Errorf("expected unset false, got %v (set=%v)", v, ok)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		for _, want := range []bool{true, false, true} {
			if err := db.SetBool(ctx, "k", want); err != nil {
				t.Fatalf("failed to set: %v", err)
			}
			got, ok, err := db.GetBool(ctx, "k")
			if err != nil || !ok || got != want {
				t.Errorf("expected %v, got %v (set=%v, err=%v)", want, got, ok, err)
			}
		}
	})

	t.Run("flip from unset", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		got, err := db.FlipBool(context.Background(), "k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got {
			t.Error("expected unset key to flip to true")
		}
	})

	t.Run("concurrent flips are not lost", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		const flips = 20
		var wg sync.WaitGroup
		for range flips {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := db.FlipBool(ctx, "k"); err != nil {
					t.Errorf("flip failed: %v", err)
				}
			}()
		}
		wg.Wait()

		got, _, err := db.GetBool(ctx, "k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got {
			t.Error("an even number of flips must return to false")
		}
	})
}

// TestSurfaceItems tests control-surface item storage.
func TestSurfaceItems(t *testing.T) {
	t.Parallel()

	t.Run("create rejects duplicates", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		item := SurfaceItem{ID: "menu", Title: "OFF", Contexts: []string{"action"}}

		if err := db.CreateItem(ctx, item); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		if err := db.CreateItem(ctx, item); !errors.Is(err, ErrItemExists) {
			t.Errorf("expected ErrItemExists, got %v", err)
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.RemoveItem(ctx, "menu"); err != nil {
			t.Errorf("removing a missing item must succeed, got %v", err)
		}
		if err := db.CreateItem(ctx, SurfaceItem{ID: "menu", Title: "OFF"}); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		if err := db.RemoveItem(ctx, "menu"); err != nil {
			t.Fatalf("failed to remove: %v", err)
		}
		item, err := db.GetItem(ctx, "menu")
		if err != nil || item != nil {
			t.Errorf("expected item to be gone, got %+v (err=%v)", item, err)
		}
	})

	t.Run("update title", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.UpdateItemTitle(ctx, "menu", "ON"); !errors.Is(err, ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
		if err := db.CreateItem(ctx, SurfaceItem{ID: "menu", Title: "OFF", Contexts: []string{"action", "page"}}); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		if err := db.UpdateItemTitle(ctx, "menu", "ON"); err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		item, err := db.GetItem(ctx, "menu")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if item.Title != "ON" {
			t.Errorf("expected title ON, got %q", item.Title)
		}
		if len(item.Contexts) != 2 || item.Contexts[0] != "action" || item.Contexts[1] != "page" {
			t.Errorf("unexpected contexts %v", item.Contexts)
		}
		if item.UpdatedAt.IsZero() {
			t.Error("expected update timestamp")
		}
	})
}
