package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/wikibridge/internal/bridge"
	"github.com/nao1215/wikibridge/internal/counterpart"
	"github.com/nao1215/wikibridge/internal/page"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "wikibridge"

	// DefaultListenAddress is where the bridge listens. Loopback only.
	DefaultListenAddress = "127.0.0.1:7878"

	// DefaultDeadline bounds one dispatched check, including navigation.
	DefaultDeadline = 20 * time.Second

	// DefaultBatchSize is the number of concurrent checks in batch mode.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies wikibridge to the counterpart site.
	DefaultUserAgent = "wikibridge/1.0 (+https://github.com/nao1215/wikibridge)"
)

// Config holds every option of wikibridge. It is populated from defaults,
// the config file, the environment and CLI flags, then passed down
// explicitly.
type Config struct {
	// CounterpartBase is the URL prefix an ArticleID is appended to.
	// It must be absolute and end with "/".
	CounterpartBase string

	// SessionCookie is sent to the counterpart as the user's login.
	// Format: "name=value" or "name1=value1; name2=value2".
	SessionCookie string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// UserAgent is sent with every counterpart request.
	UserAgent string

	// Timeout is the per-check deadline for the counterpart request.
	Timeout time.Duration

	// MaxBodySize is the maximum number of body bytes inspected per check.
	MaxBodySize int64

	// AuthMarkers are path fragments that identify a login page.
	AuthMarkers []string

	// PlaceholderPhrases mark a "this article doesn't exist" page.
	PlaceholderPhrases []string

	// AnchorStrategy selects how anchors are matched: "regex" or "dom".
	AnchorStrategy string

	// RoutePrefix is the source-site path prefix of article pages.
	RoutePrefix string

	// HomePage is the source-site identifier of the front page.
	HomePage string

	// ReservedPrefixes are namespace prefixes that never name an article.
	ReservedPrefixes []string

	// ListenAddress is where the bridge serves.
	ListenAddress string

	// Deadline bounds one dispatched request end to end.
	Deadline time.Duration

	// AllowedOrigins are the source-site origins whose page scripts may send
	// check messages to the bridge. "https://*.wikipedia.org" matches every
	// language edition.
	AllowedOrigins []string

	// DBDir is the directory holding wikibridge.db.
	// Defaults to the XDG data directory (~/.local/share/wikibridge on Linux).
	DBDir string

	// BatchSize is the number of concurrent checks in batch mode.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// JSONReport writes batch results as JSON. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport writes batch results as Markdown.
	MarkdownReport bool

	// ReportFile is the output path for batch results. Empty means stdout.
	ReportFile string

	// ConfigFilePath is an explicit config file path. Empty means search.
	ConfigFilePath string

	// Targets are page locations to check in batch mode.
	Targets []string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		CounterpartBase:    counterpart.DefaultBase,
		UserAgent:          DefaultUserAgent,
		Timeout:            counterpart.DefaultTimeout,
		MaxBodySize:        counterpart.DefaultMaxBodySize,
		AuthMarkers:        counterpart.DefaultAuthMarkers(),
		PlaceholderPhrases: counterpart.DefaultPlaceholderPhrases(),
		AnchorStrategy:     counterpart.AnchorStrategyRegex,
		RoutePrefix:        page.DefaultRoutePrefix,
		HomePage:           page.DefaultHomePage,
		ReservedPrefixes:   page.DefaultReservedPrefixes(),
		ListenAddress:      DefaultListenAddress,
		Deadline:           DefaultDeadline,
		AllowedOrigins:     bridge.DefaultAllowedOrigins(),
		DBDir:              XDGDataDir(),
		BatchSize:          DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for wikibridge.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wikibridge.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if err := validateBase(c.CounterpartBase); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Deadline <= 0 {
		return ErrInvalidDeadline
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.AnchorStrategy != counterpart.AnchorStrategyRegex && c.AnchorStrategy != counterpart.AnchorStrategyDOM {
		return ErrInvalidAnchorStrategy
	}
	if c.RoutePrefix == "" || c.RoutePrefix[0] != '/' {
		return ErrInvalidRoutePrefix
	}
	if c.ListenAddress == "" {
		return ErrEmptyListenAddress
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// RequireTargets reports ErrNoTarget when batch mode has nothing to check.
func (c *Config) RequireTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return nil
}

func validateBase(base string) error {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return ErrInvalidCounterpartBase
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidCounterpartBase
	}
	if !strings.HasSuffix(base, "/") {
		return ErrInvalidCounterpartBase
	}
	return nil
}
