package preference

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/nao1215/wikibridge/internal/database"
	"github.com/nao1215/wikibridge/internal/surface"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openDB(t *testing.T, dir string) *database.StateDB {
	t.Helper()

	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	return db
}

func newToggle(db *database.StateDB) (*Toggle, *surface.Menu) {
	menu := surface.NewMenu(db)
	return NewToggle(db, menu, WithLogger(discardLogger())), menu
}

func assertLabel(t *testing.T, menu *surface.Menu, want string) {
	t.Helper()

	item, err := menu.Item(context.Background(), MenuID)
	if err != nil {
		t.Fatalf("failed to get toggle item: %v", err)
	}
	if item.Title != want {
		t.Errorf("expected label %q, got %q", want, item.Title)
	}
}

// TestLabel tests the label text for both states.
func TestLabel(t *testing.T) {
	t.Parallel()

	if got := Label(true); got != "Auto-navigate to Grokipedia: ON ✓" {
		t.Errorf("unexpected ON label %q", got)
	}
	if got := Label(false); got != "Auto-navigate to Grokipedia: OFF" {
		t.Errorf("unexpected OFF label %q", got)
	}
}

// TestReadDefault tests that an unset preference reads as false.
func TestReadDefault(t *testing.T) {
	t.Parallel()

	db := openDB(t, t.TempDir())
	defer db.Close()
	toggle, _ := newToggle(db)
	ctx := context.Background()

	if toggle.Read(ctx) {
		t.Error("expected unset preference to read false")
	}
	installed, err := toggle.Installed(ctx)
	if err != nil {
		t.Fatalf("failed to check install state: %v", err)
	}
	if installed {
		t.Error("expected toggle to be uninstalled")
	}
}

type brokenStore struct{}

func (brokenStore) GetBool(context.Context, string) (bool, bool, error) {
	return false, false, errors.New("disk on fire")
}

func (brokenStore) SetBool(context.Context, string, bool) error {
	return errors.New("disk on fire")
}

func (brokenStore) FlipBool(context.Context, string) (bool, error) {
	return false, errors.New("disk on fire")
}

// TestReadUnreadable tests that storage failures read as false.
func TestReadUnreadable(t *testing.T) {
	t.Parallel()

	toggle := NewToggle(brokenStore{}, nil, WithLogger(discardLogger()))
	if toggle.Read(context.Background()) {
		t.Error("expected unreadable preference to read false")
	}
	if _, err := toggle.Activate(context.Background()); err == nil {
		t.Error("expected Activate to fail on a broken store")
	}
}

// TestInstall tests install-time defaults.
func TestInstall(t *testing.T) {
	t.Parallel()

	t.Run("fresh install", func(t *testing.T) {
		t.Parallel()

		db := openDB(t, t.TempDir())
		defer db.Close()
		toggle, menu := newToggle(db)
		ctx := context.Background()

		if err := toggle.Install(ctx); err != nil {
			t.Fatalf("failed to install: %v", err)
		}
		if toggle.Read(ctx) {
			t.Error("expected OFF after install")
		}
		assertLabel(t, menu, Label(false))

		item, err := menu.Item(ctx, MenuID)
		if err != nil {
			t.Fatalf("failed to get toggle item: %v", err)
		}
		if len(item.Contexts) != 1 || item.Contexts[0] != surface.ContextAction {
			t.Errorf("expected contexts [action], got %v", item.Contexts)
		}
	})

	t.Run("reinstall resets to off", func(t *testing.T) {
		t.Parallel()

		db := openDB(t, t.TempDir())
		defer db.Close()
		toggle, menu := newToggle(db)
		ctx := context.Background()

		if err := toggle.Install(ctx); err != nil {
			t.Fatalf("failed to install: %v", err)
		}
		if _, err := toggle.Activate(ctx); err != nil {
			t.Fatalf("failed to activate: %v", err)
		}
		if err := toggle.Install(ctx); err != nil {
			t.Fatalf("failed to reinstall: %v", err)
		}
		if toggle.Read(ctx) {
			t.Error("expected OFF after reinstall")
		}
		assertLabel(t, menu, Label(false))
	})
}

// TestActivate tests the OFF/ON state machine.
func TestActivate(t *testing.T) {
	t.Parallel()

	db := openDB(t, t.TempDir())
	defer db.Close()
	toggle, menu := newToggle(db)
	ctx := context.Background()

	if err := toggle.Install(ctx); err != nil {
		t.Fatalf("failed to install: %v", err)
	}

	for i, want := range []bool{true, false, true} {
		got, err := toggle.Activate(ctx)
		if err != nil {
			t.Fatalf("activation %d failed: %v", i, err)
		}
		if got != want {
			t.Errorf("activation %d: expected %v, got %v", i, want, got)
		}
		if toggle.Read(ctx) != want {
			t.Errorf("activation %d: persisted value does not match", i)
		}
		assertLabel(t, menu, Label(want))
	}
}

// TestActivateConcurrent tests that concurrent activations serialize.
func TestActivateConcurrent(t *testing.T) {
	t.Parallel()

	db := openDB(t, t.TempDir())
	defer db.Close()
	toggle, menu := newToggle(db)
	ctx := context.Background()

	if err := toggle.Install(ctx); err != nil {
		t.Fatalf("failed to install: %v", err)
	}

	var wg sync.WaitGroup
	for range 9 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := toggle.Activate(ctx); err != nil {
				t.Errorf("activation failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if !toggle.Read(ctx) {
		t.Error("expected ON after an odd number of activations")
	}
	assertLabel(t, menu, Label(true))
}

// TestSet tests explicit value changes.
func TestSet(t *testing.T) {
	t.Parallel()

	db := openDB(t, t.TempDir())
	defer db.Close()
	toggle, menu := newToggle(db)
	ctx := context.Background()

	if err := toggle.Install(ctx); err != nil {
		t.Fatalf("failed to install: %v", err)
	}
	for _, want := range []bool{true, true, false} {
		if err := toggle.Set(ctx, want); err != nil {
			t.Fatalf("failed to set %v: %v", want, err)
		}
		if toggle.Read(ctx) != want {
			t.Errorf("expected %v", want)
		}
		assertLabel(t, menu, Label(want))
	}
}

// TestSurvivesRestart tests that the value and label survive a restart.
func TestSurvivesRestart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	db := openDB(t, dir)
	toggle, _ := newToggle(db)
	if err := toggle.Install(ctx); err != nil {
		t.Fatalf("failed to install: %v", err)
	}
	if err := toggle.Write(ctx, true); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	db = openDB(t, dir)
	defer db.Close()
	toggle, menu := newToggle(db)

	installed, err := toggle.Installed(ctx)
	if err != nil {
		t.Fatalf("failed to check install state: %v", err)
	}
	if !installed {
		t.Fatal("expected toggle to be installed after restart")
	}
	if err := toggle.Startup(ctx); err != nil {
		t.Fatalf("failed to start up: %v", err)
	}
	if !toggle.Read(ctx) {
		t.Error("expected ON after restart")
	}
	assertLabel(t, menu, Label(true))
}

// TestStartupRegistersMissingItem tests that startup restores a lost item.
func TestStartupRegistersMissingItem(t *testing.T) {
	t.Parallel()

	db := openDB(t, t.TempDir())
	defer db.Close()
	toggle, menu := newToggle(db)
	ctx := context.Background()

	if err := toggle.Write(ctx, true); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if err := toggle.Startup(ctx); err != nil {
		t.Fatalf("failed to start up: %v", err)
	}
	assertLabel(t, menu, Label(true))
}
