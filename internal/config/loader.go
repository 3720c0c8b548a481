package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".wikibridge"

// Environment variables read by LoadEnv.
const (
	EnvSessionCookie   = "WIKIBRIDGE_SESSION_COOKIE"
	EnvCounterpartBase = "WIKIBRIDGE_COUNTERPART_BASE"
	EnvProxy           = "WIKIBRIDGE_PROXY"
	EnvListenAddress   = "WIKIBRIDGE_LISTEN"
	EnvDBDir           = "WIKIBRIDGE_DB_DIR"
)

// Report formats accepted in the config file.
const (
	ReportFormatSimple   = "simple"
	ReportFormatJSON     = "json"
	ReportFormatMarkdown = "markdown"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the .wikibridge configuration file.
// Zero values leave the corresponding Config field untouched.
type File struct {
	Counterpart CounterpartFile `yaml:"counterpart,omitempty"`
	Source      SourceFile      `yaml:"source,omitempty"`
	Bridge      BridgeFile      `yaml:"bridge,omitempty"`
	Storage     StorageFile     `yaml:"storage,omitempty"`
	Batch       BatchFile       `yaml:"batch,omitempty"`
	Report      ReportFile      `yaml:"report,omitempty"`
}

// CounterpartFile configures the counterpart site and the existence check.
type CounterpartFile struct {
	Base               string        `yaml:"base,omitempty"`
	SessionCookie      string        `yaml:"session_cookie,omitempty"`
	Proxy              string        `yaml:"proxy,omitempty"`
	UserAgent          string        `yaml:"user_agent,omitempty"`
	Timeout            time.Duration `yaml:"timeout,omitempty"`
	MaxBodySize        int64         `yaml:"max_body_size,omitempty"`
	AuthMarkers        []string      `yaml:"auth_markers,omitempty"`
	PlaceholderPhrases []string      `yaml:"placeholder_phrases,omitempty"`
	AnchorStrategy     string        `yaml:"anchor_strategy,omitempty"`
}

// SourceFile configures how source-site pages are classified.
type SourceFile struct {
	RoutePrefix      string   `yaml:"route_prefix,omitempty"`
	HomePage         string   `yaml:"home_page,omitempty"`
	ReservedPrefixes []string `yaml:"reserved_prefixes,omitempty"`
}

// BridgeFile configures the local bridge.
type BridgeFile struct {
	Listen         string        `yaml:"listen,omitempty"`
	Deadline       time.Duration `yaml:"deadline,omitempty"`
	AllowedOrigins []string      `yaml:"allowed_origins,omitempty"`
}

// StorageFile configures persisted state.
type StorageFile struct {
	DBDir string `yaml:"db_dir,omitempty"`
}

// BatchFile configures batch checks.
type BatchFile struct {
	Size int `yaml:"size,omitempty"`
}

// ReportFile configures batch report output.
type ReportFile struct {
	Format string `yaml:"format,omitempty"`
	Output string `yaml:"output,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. configPath, if specified
// 2. .wikibridge in the current directory
// 3. .wikibridge in the user's home directory
// 4. config.yaml in the XDG config directory
//
// It returns an empty string if nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Apply overlays the non-zero values of the file onto c.
func (cf *File) Apply(c *Config) error {
	cp := cf.Counterpart
	setString(&c.CounterpartBase, cp.Base)
	setString(&c.SessionCookie, cp.SessionCookie)
	setString(&c.ProxyAddress, cp.Proxy)
	setString(&c.UserAgent, cp.UserAgent)
	setString(&c.AnchorStrategy, cp.AnchorStrategy)
	if cp.Timeout != 0 {
		c.Timeout = cp.Timeout
	}
	if cp.MaxBodySize != 0 {
		c.MaxBodySize = cp.MaxBodySize
	}
	if len(cp.AuthMarkers) > 0 {
		c.AuthMarkers = cp.AuthMarkers
	}
	if len(cp.PlaceholderPhrases) > 0 {
		c.PlaceholderPhrases = cp.PlaceholderPhrases
	}

	setString(&c.RoutePrefix, cf.Source.RoutePrefix)
	setString(&c.HomePage, cf.Source.HomePage)
	if len(cf.Source.ReservedPrefixes) > 0 {
		c.ReservedPrefixes = cf.Source.ReservedPrefixes
	}

	setString(&c.ListenAddress, cf.Bridge.Listen)
	if cf.Bridge.Deadline != 0 {
		c.Deadline = cf.Bridge.Deadline
	}
	if len(cf.Bridge.AllowedOrigins) > 0 {
		c.AllowedOrigins = cf.Bridge.AllowedOrigins
	}

	setString(&c.DBDir, cf.Storage.DBDir)

	if cf.Batch.Size != 0 {
		c.BatchSize = cf.Batch.Size
	}

	setString(&c.ReportFile, cf.Report.Output)
	switch strings.ToLower(cf.Report.Format) {
	case "":
	case ReportFormatSimple:
		c.JSONReport, c.MarkdownReport = false, false
	case ReportFormatJSON:
		c.JSONReport, c.MarkdownReport = true, false
	case ReportFormatMarkdown:
		c.JSONReport, c.MarkdownReport = false, true
	default:
		return fmt.Errorf("%w: %q", ErrInvalidReportFormat, cf.Report.Format)
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// LoadEnv overlays environment variables onto c. lookup is usually
// os.LookupEnv.
func (c *Config) LoadEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvSessionCookie); ok {
		c.SessionCookie = v
	}
	if v, ok := lookup(EnvCounterpartBase); ok && v != "" {
		c.CounterpartBase = v
	}
	if v, ok := lookup(EnvProxy); ok {
		c.ProxyAddress = v
	}
	if v, ok := lookup(EnvListenAddress); ok && v != "" {
		c.ListenAddress = v
	}
	if v, ok := lookup(EnvDBDir); ok && v != "" {
		c.DBDir = v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
