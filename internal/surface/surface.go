// Package surface manages the control surface: the toggle item a user
// activates to change the auto-navigate preference.
//
// Surface items are persisted separately from the background logic, so they
// survive background restarts and reinstalls. Registration is therefore
// idempotent: an existing item with the same id is removed before the new
// one is created, so stale state from a previous install cannot leak in.
package surface

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/wikibridge/internal/database"
)

// ErrNotRegistered is returned when an operation targets an unknown item.
var ErrNotRegistered = errors.New("control surface item is not registered")

// ContextAction places an item on the toolbar action menu.
const ContextAction = "action"

// Item is a control-surface entry.
type Item struct {
	ID       string
	Title    string
	Contexts []string
}

// Store persists surface items.
type Store interface {
	CreateItem(ctx context.Context, item database.SurfaceItem) error
	RemoveItem(ctx context.Context, id string) error
	UpdateItemTitle(ctx context.Context, id, title string) error
	GetItem(ctx context.Context, id string) (*database.SurfaceItem, error)
}

// Menu registers and relabels control-surface items.
type Menu struct {
	store Store
}

// NewMenu creates a Menu backed by store.
func NewMenu(store Store) *Menu {
	return &Menu{store: store}
}

// Register removes any item with the same id, then creates item.
func (m *Menu) Register(ctx context.Context, item Item) error {
	if err := m.store.RemoveItem(ctx, item.ID); err != nil {
		return fmt.Errorf("failed to remove stale item %q: %w", item.ID, err)
	}
	err := m.store.CreateItem(ctx, database.SurfaceItem{
		ID:       item.ID,
		Title:    item.Title,
		Contexts: item.Contexts,
	})
	if err != nil {
		return fmt.Errorf("failed to register item %q: %w", item.ID, err)
	}
	return nil
}

// SetTitle relabels a registered item.
func (m *Menu) SetTitle(ctx context.Context, id, title string) error {
	if err := m.store.UpdateItemTitle(ctx, id, title); err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return fmt.Errorf("%w: %s", ErrNotRegistered, id)
		}
		return err
	}
	return nil
}

// Item returns a registered item.
func (m *Menu) Item(ctx context.Context, id string) (Item, error) {
	rec, err := m.store.GetItem(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if rec == nil {
		return Item{}, fmt.Errorf("%w: %s", ErrNotRegistered, id)
	}
	return Item{ID: rec.ID, Title: rec.Title, Contexts: rec.Contexts}, nil
}
