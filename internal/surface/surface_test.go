package surface

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/wikibridge/internal/database"
)

func newTestMenu(t *testing.T) (*Menu, *database.StateDB) {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewMenu(db), db
}

// TestRegister tests idempotent registration.
func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("registers new item", func(t *testing.T) {
		t.Parallel()

		menu, _ := newTestMenu(t)
		ctx := context.Background()
		want := Item{ID: "toggle", Title: "OFF", Contexts: []string{ContextAction}}

		if err := menu.Register(ctx, want); err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		got, err := menu.Item(ctx, "toggle")
		if err != nil {
			t.Fatalf("failed to get item: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("item mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("replaces stale item from a previous install", func(t *testing.T) {
		t.Parallel()

		menu, db := newTestMenu(t)
		ctx := context.Background()

		stale := database.SurfaceItem{ID: "toggle", Title: "ON (stale)", Contexts: []string{"page"}}
		if err := db.CreateItem(ctx, stale); err != nil {
			t.Fatalf("failed to seed stale item: %v", err)
		}

		fresh := Item{ID: "toggle", Title: "OFF", Contexts: []string{ContextAction}}
		if err := menu.Register(ctx, fresh); err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		if err := menu.Register(ctx, fresh); err != nil {
			t.Fatalf("repeated registration must succeed: %v", err)
		}

		got, err := menu.Item(ctx, "toggle")
		if err != nil {
			t.Fatalf("failed to get item: %v", err)
		}
		if diff := cmp.Diff(fresh, got); diff != "" {
			t.Errorf("item mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestSetTitle tests relabeling.
func TestSetTitle(t *testing.T) {
	t.Parallel()

	menu, _ := newTestMenu(t)
	ctx := context.Background()

	if err := menu.SetTitle(ctx, "toggle", "ON"); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}
	if _, err := menu.Item(ctx, "toggle"); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}

	if err := menu.Register(ctx, Item{ID: "toggle", Title: "OFF"}); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if err := menu.SetTitle(ctx, "toggle", "ON"); err != nil {
		t.Fatalf("failed to set title: %v", err)
	}
	got, err := menu.Item(ctx, "toggle")
	if err != nil {
		t.Fatalf("failed to get item: %v", err)
	}
	if got.Title != "ON" {
		t.Errorf("expected ON, got %q", got.Title)
	}
}
