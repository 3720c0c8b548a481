// Package notice renders the counterpart notice shown when a page has a
// counterpart article and the tab was not navigated automatically.
package notice

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
)

// Presenter shows a notice pointing at a counterpart article.
type Presenter interface {
	Present(url string, loginRequired bool)
}

// Message returns the notice text.
func Message(url string, loginRequired bool) string {
	msg := fmt.Sprintf("This Wikipedia article has a counterpart on Grokipedia: %s", url)
	if loginRequired {
		msg += " (log in to Grokipedia to confirm)"
	}
	return msg
}

// TerminalPresenter prints the notice to a terminal. At most one notice is
// shown until it is dismissed.
type TerminalPresenter struct {
	w     io.Writer
	mu    sync.Mutex
	shown bool
}

// NewTerminalPresenter creates a TerminalPresenter writing to w, or to
// stdout when w is nil.
func NewTerminalPresenter(w io.Writer) *TerminalPresenter {
	if w == nil {
		w = os.Stdout
	}
	return &TerminalPresenter{w: w}
}

// Present prints the notice unless one is already showing.
func (p *TerminalPresenter) Present(url string, loginRequired bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shown {
		return
	}
	p.shown = true

	if loginRequired {
		pterm.Warning.WithWriter(p.w).Println(Message(url, true))
		return
	}
	pterm.Success.WithWriter(p.w).Println(Message(url, false))
}

// Dismiss removes the current notice so the next one can be shown.
func (p *TerminalPresenter) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.shown = false
}

// Showing reports whether a notice is currently shown.
func (p *TerminalPresenter) Showing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.shown
}
