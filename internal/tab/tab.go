// Package tab models browser tabs: the unit a page request comes from and the
// only thing auto-navigation is allowed to change.
package tab

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/pkg/browser"
)

// ErrUnknownTab is returned when navigating a tab that does not exist.
var ErrUnknownTab = errors.New("unknown tab")

// ID identifies a tab.
type ID int

// None marks a sender that is not an addressable tab.
const None ID = -1

// Addressable reports whether the id can be navigated.
func (id ID) Addressable() bool {
	return id >= 0
}

// String returns the decimal form of the id.
func (id ID) String() string {
	return strconv.Itoa(int(id))
}

// ParseID parses a decimal tab id. Empty and negative values yield None.
func ParseID(s string) (ID, error) {
	if s == "" {
		return None, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return None, fmt.Errorf("invalid tab id %q: %w", s, err)
	}
	if n < 0 {
		return None, nil
	}
	return ID(n), nil
}

// Navigator changes the location of a single tab.
type Navigator interface {
	Navigate(ctx context.Context, id ID, url string) error
}

// Tab is a snapshot of a tab.
type Tab struct {
	ID  ID     `json:"id"`
	URL string `json:"url"`
}

// Registry is an in-memory set of tabs.
type Registry struct {
	mu   sync.Mutex
	next ID
	tabs map[ID]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tabs: make(map[ID]string)}
}

// Open creates a tab showing url and returns its id.
func (r *Registry) Open(url string) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++
	r.tabs[id] = url
	return id
}

// Get returns the tab with the given id.
func (r *Registry) Get(id ID) (Tab, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	url, ok := r.tabs[id]
	if !ok {
		return Tab{}, false
	}
	return Tab{ID: id, URL: url}, true
}

// Close removes a tab.
func (r *Registry) Close(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tabs, id)
}

// Navigate points one tab at url.
func (r *Registry) Navigate(ctx context.Context, id ID, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tabs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTab, id)
	}
	r.tabs[id] = url
	return nil
}

// SystemBrowser navigates by opening the url in the user's default browser.
// The CLI has a single logical tab, so the id is only used for addressing.
type SystemBrowser struct {
	open func(url string) error
}

// NewSystemBrowser creates a SystemBrowser.
func NewSystemBrowser() *SystemBrowser {
	return &SystemBrowser{open: browser.OpenURL}
}

// Navigate opens url in the system browser.
func (b *SystemBrowser) Navigate(ctx context.Context, id ID, url string) error {
	if !id.Addressable() {
		return fmt.Errorf("%w: %s", ErrUnknownTab, id)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.open(url); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
