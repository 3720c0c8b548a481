package counterpart

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nao1215/wikibridge/internal/model"
)

// DefaultBase is the counterpart article base URL.
const DefaultBase = "https://grokipedia.com/page/"

// DefaultTimeout bounds a single check.
const DefaultTimeout = 15 * time.Second

// DefaultMaxBodySize limits how much of the counterpart page is read.
const DefaultMaxBodySize = 5 * 1024 * 1024

// DefaultAuthMarkers returns the path fragments that identify an auth wall.
func DefaultAuthMarkers() []string {
	return []string{"/login", "/signin", "/auth", "/account"}
}

// Checker classifies whether an article exists on the counterpart site.
// It is safe for concurrent use; checks share no mutable state.
type Checker struct {
	client      *http.Client
	base        string
	userAgent   string
	maxBodySize int64
	timeout     time.Duration
	authMarkers []string
	detector    PlaceholderDetector
	resolver    AnchorResolver
	logger      *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithBase overrides the counterpart base URL.
func WithBase(base string) Option {
	return func(c *Checker) {
		if base != "" {
			c.base = base
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Checker) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum body size read from the counterpart.
func WithMaxBodySize(size int64) Option {
	return func(c *Checker) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithTimeout sets the deadline applied to every check.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithAuthMarkers replaces the auth-wall path fragments.
func WithAuthMarkers(markers []string) Option {
	return func(c *Checker) {
		if len(markers) > 0 {
			c.authMarkers = append([]string(nil), markers...)
		}
	}
}

// WithPlaceholderDetector replaces the "does not exist" heuristic.
func WithPlaceholderDetector(d PlaceholderDetector) Option {
	return func(c *Checker) {
		if d != nil {
			c.detector = d
		}
	}
}

// WithAnchorResolver replaces the anchor heuristic.
func WithAnchorResolver(r AnchorResolver) Option {
	return func(c *Checker) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChecker creates a Checker that issues requests with client.
// Build client with NewHTTPClient so session credentials and redirects are
// handled the way the counterpart expects.
func NewChecker(client *http.Client, opts ...Option) *Checker {
	c := &Checker{
		client:      client,
		base:        DefaultBase,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
		authMarkers: DefaultAuthMarkers(),
		detector:    NewPhraseDetector(),
		resolver:    RegexAnchorResolver{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Base returns the counterpart base URL.
func (c *Checker) Base() string {
	return c.base
}

// Target returns the counterpart URL for an article.
func (c *Checker) Target(id model.ArticleID) string {
	return c.base + id.String()
}

// Check queries the counterpart once and classifies the outcome.
// It never returns a Go error: failures are reported as StatusError results.
func (c *Checker) Check(ctx context.Context, req model.CheckRequest) model.CheckResult {
	target := c.Target(req.ArticleID)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return model.Failed(target, err)
	}
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("checking counterpart", "target", target)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Warn("counterpart request failed", "target", target, "error", err)
		return model.Failed(target, err)
	}
	defer resp.Body.Close()

	landed := resp.Request.URL.String()
	if c.isAuthRedirect(target, landed) {
		c.logger.Debug("counterpart redirected to auth wall", "target", target, "landed", landed)
		return model.LoginRequired(req.Anchor.AppendTo(target))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.NotFound(target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		c.logger.Warn("failed to read counterpart body", "target", target, "error", err)
		return model.Failed(target, err)
	}
	html := string(body)

	if c.detector.IsPlaceholder(html) {
		return model.NotFound(target)
	}

	return model.Found(c.resolver.Resolve(html, target, req.Anchor))
}

// isAuthRedirect reports whether the request ended somewhere that hides the
// article behind authentication.
func (c *Checker) isAuthRedirect(target, landed string) bool {
	if landed == target {
		return false
	}
	for _, marker := range c.authMarkers {
		if strings.Contains(landed, marker) {
			return true
		}
	}
	return !strings.HasPrefix(landed, c.base)
}
