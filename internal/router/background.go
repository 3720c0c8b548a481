package router

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/wikibridge/internal/model"
	"github.com/nao1215/wikibridge/internal/tab"
)

// DefaultDeadline bounds how long a dispatched request may take.
const DefaultDeadline = 20 * time.Second

// Checker checks for a counterpart article.
type Checker interface {
	Check(ctx context.Context, req model.CheckRequest) model.CheckResult
	Target(id model.ArticleID) string
}

// Preference reports whether auto-navigation is enabled.
type Preference interface {
	Read(ctx context.Context) bool
}

// Sender describes where a request came from.
type Sender struct {
	// Tab is the requesting tab, or tab.None when the sender is not a tab.
	Tab tab.ID
}

// Background answers check requests.
type Background struct {
	checker   Checker
	pref      Preference
	navigator tab.Navigator
	deadline  time.Duration
	logger    *slog.Logger
}

// Option configures a Background.
type Option func(*Background)

// WithDeadline sets the dispatch deadline.
func WithDeadline(d time.Duration) Option {
	return func(b *Background) {
		if d > 0 {
			b.deadline = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Background) {
		b.logger = logger
	}
}

// NewBackground creates a Background.
func NewBackground(checker Checker, pref Preference, navigator tab.Navigator, opts ...Option) *Background {
	b := &Background{
		checker:   checker,
		pref:      pref,
		navigator: navigator,
		deadline:  DefaultDeadline,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handle checks req and navigates the sender's tab when the article was
// found and auto-navigation is on. It never panics and never returns a
// result with Navigated set unless the tab was actually navigated.
func (b *Background) Handle(ctx context.Context, sender Sender, req model.CheckRequest) model.CheckResult {
	logger := b.logger.With("request_id", uuid.New().String(), "article", req.ArticleID.String())
	return b.handle(ctx, logger, sender, req)
}

func (b *Background) handle(ctx context.Context, logger *slog.Logger, sender Sender, req model.CheckRequest) (result model.CheckResult) {
	target := b.checker.Target(req.ArticleID)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("check panicked", "panic", r)
			result = model.Failed(target, fmt.Errorf("%w: %v", ErrCheckPanicked, r))
		}
	}()

	logger.Debug("handling check", "tab", sender.Tab.String())
	result = b.checker.Check(ctx, req)
	logger.Debug("check finished", "status", result.Status.String(), "url", result.URL)

	if result.Status != model.StatusFound || !sender.Tab.Addressable() {
		return result.WithNavigated(false)
	}
	if !b.pref.Read(ctx) {
		return result.WithNavigated(false)
	}
	if err := b.navigator.Navigate(ctx, sender.Tab, result.URL); err != nil {
		logger.Warn("failed to navigate tab", "tab", sender.Tab.String(), "url", result.URL, "error", err)
		return result.WithNavigated(false)
	}
	logger.Info("navigated tab to counterpart", "tab", sender.Tab.String(), "url", result.URL)
	return result.WithNavigated(true)
}

// Dispatch handles req asynchronously. The returned channel receives exactly
// one response: the check outcome, or an error response if the check panics
// or does not finish before the deadline.
func (b *Background) Dispatch(ctx context.Context, sender Sender, req model.CheckRequest) <-chan model.Response {
	out := make(chan model.Response, 1)
	logger := b.logger.With("request_id", uuid.New().String(), "article", req.ArticleID.String())

	ctx, cancel := context.WithTimeout(ctx, b.deadline)
	done := make(chan model.CheckResult, 1)

	go func() {
		done <- b.handle(ctx, logger, sender, req)
	}()

	go func() {
		defer cancel()
		out <- b.settle(ctx, logger, req, done)
		close(out)
	}()

	return out
}

// settle waits for the check result or the deadline, whichever comes first.
// A result that is ready when the deadline fires wins, so a tab that was
// navigated is never reported as timed out.
func (b *Background) settle(ctx context.Context, logger *slog.Logger, req model.CheckRequest, done <-chan model.CheckResult) model.Response {
	select {
	case result := <-done:
		return model.NewResponse(result)
	case <-ctx.Done():
	}

	select {
	case result := <-done:
		return model.NewResponse(result)
	default:
	}
	logger.Warn("check did not finish in time", "deadline", b.deadline, "error", ctx.Err())
	target := b.checker.Target(req.ArticleID)
	return model.NewResponse(model.Failed(target, fmt.Errorf("%w: %v", ErrDeadlineExceeded, ctx.Err())))
}
