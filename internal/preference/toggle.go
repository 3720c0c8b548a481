// Package preference holds the single persisted user preference: whether a
// found counterpart article should be opened automatically.
package preference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nao1215/wikibridge/internal/surface"
)

const (
	// Key is the storage key of the auto-navigate preference.
	Key = "autoNavigate"
	// MenuID identifies the toggle item on the control surface.
	MenuID = "toggleAutoNavigate"

	labelOn  = "Auto-navigate to Grokipedia: ON ✓"
	labelOff = "Auto-navigate to Grokipedia: OFF"
)

// Label returns the control-surface label for a preference value.
func Label(on bool) string {
	if on {
		return labelOn
	}
	return labelOff
}

// Store persists boolean preferences.
type Store interface {
	GetBool(ctx context.Context, key string) (value bool, set bool, err error)
	SetBool(ctx context.Context, key string, value bool) error
	FlipBool(ctx context.Context, key string) (bool, error)
}

// Surface is the part of the control surface the toggle drives.
type Surface interface {
	Register(ctx context.Context, item surface.Item) error
	SetTitle(ctx context.Context, id, title string) error
}

// Toggle is the auto-navigate preference and its control-surface item.
type Toggle struct {
	store   Store
	surface Surface
	logger  *slog.Logger

	// mu serializes user-driven transitions so the label never lags the value.
	mu sync.Mutex
}

// Option configures a Toggle.
type Option func(*Toggle)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Toggle) {
		t.logger = logger
	}
}

// NewToggle creates a Toggle.
func NewToggle(store Store, surf Surface, opts ...Option) *Toggle {
	t := &Toggle{
		store:   store,
		surface: surf,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Read returns the persisted value. An unset or unreadable preference is false.
func (t *Toggle) Read(ctx context.Context) bool {
	on, _, err := t.store.GetBool(ctx, Key)
	if err != nil {
		t.logger.Warn("failed to read preference, treating as off", "key", Key, "error", err)
		return false
	}
	return on
}

// Write persists a value without touching the control surface.
func (t *Toggle) Write(ctx context.Context, on bool) error {
	if err := t.store.SetBool(ctx, Key, on); err != nil {
		return fmt.Errorf("failed to write preference %s: %w", Key, err)
	}
	return nil
}

// Installed reports whether the preference has ever been written.
func (t *Toggle) Installed(ctx context.Context) (bool, error) {
	_, set, err := t.store.GetBool(ctx, Key)
	if err != nil {
		return false, fmt.Errorf("failed to read preference %s: %w", Key, err)
	}
	return set, nil
}

// Install resets the preference to off and registers the toggle item.
func (t *Toggle) Install(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.Write(ctx, false); err != nil {
		return err
	}
	item := surface.Item{
		ID:       MenuID,
		Title:    Label(false),
		Contexts: []string{surface.ContextAction},
	}
	if err := t.surface.Register(ctx, item); err != nil {
		return fmt.Errorf("failed to register toggle: %w", err)
	}
	t.logger.Info("installed auto-navigate toggle", "value", false)
	return nil
}

// Startup resynchronizes the label with the persisted value. The toggle item
// is registered again if it has gone missing.
func (t *Toggle) Startup(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	on := t.Read(ctx)
	if err := t.sync(ctx, on); err != nil {
		return err
	}
	t.logger.Debug("restored auto-navigate toggle", "value", on)
	return nil
}

// Activate flips the preference and updates the label before returning.
func (t *Toggle) Activate(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	on, err := t.store.FlipBool(ctx, Key)
	if err != nil {
		return false, fmt.Errorf("failed to flip preference %s: %w", Key, err)
	}
	if err := t.sync(ctx, on); err != nil {
		return on, err
	}
	t.logger.Info("auto-navigate toggled", "value", on)
	return on, nil
}

// Set stores an explicit value chosen by the user and updates the label.
func (t *Toggle) Set(ctx context.Context, on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.Write(ctx, on); err != nil {
		return err
	}
	if err := t.sync(ctx, on); err != nil {
		return err
	}
	t.logger.Info("auto-navigate set", "value", on)
	return nil
}

func (t *Toggle) sync(ctx context.Context, on bool) error {
	err := t.surface.SetTitle(ctx, MenuID, Label(on))
	if err == nil {
		return nil
	}
	if !errors.Is(err, surface.ErrNotRegistered) {
		return fmt.Errorf("failed to update toggle label: %w", err)
	}
	item := surface.Item{
		ID:       MenuID,
		Title:    Label(on),
		Contexts: []string{surface.ContextAction},
	}
	if err := t.surface.Register(ctx, item); err != nil {
		return fmt.Errorf("failed to register toggle: %w", err)
	}
	return nil
}
