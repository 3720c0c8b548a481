package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/wikibridge/internal/config"
	"github.com/nao1215/wikibridge/internal/counterpart"
	"github.com/nao1215/wikibridge/internal/database"
	wblog "github.com/nao1215/wikibridge/internal/log"
	"github.com/nao1215/wikibridge/internal/page"
	"github.com/nao1215/wikibridge/internal/preference"
	"github.com/nao1215/wikibridge/internal/surface"
)

// getBoolFlag retrieves a boolean flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// getStringFlag retrieves a string flag from the command or the root's
// persistent flags.
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return v
}

// loadConfig builds a Config from defaults, .env, the config file, the
// environment and finally the command's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file, error if not found.
	// Otherwise run on defaults when no file exists.
	cfg.ConfigFilePath = getStringFlag(cmd, "config")
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		if err := file.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.LoadEnv(os.LookupEnv)

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// addCheckerFlags registers the flags shared by commands that query the
// counterpart.
func addCheckerFlags(cmd *cobra.Command) {
	cmd.Flags().String("base", "",
		"Counterpart base URL (default: "+counterpart.DefaultBase+")")
	cmd.Flags().DurationP("timeout", "t", counterpart.DefaultTimeout,
		"Timeout for each counterpart request")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for counterpart requests (e.g., 127.0.0.1:1080)")
	cmd.Flags().String("anchor-strategy", "",
		"How section anchors are matched: regex or dom")
}

// addStateFlags registers the flags of commands that open the state database.
func addStateFlags(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", "",
		"Directory holding "+database.FileName+" (default: XDG data directory)")
}

// applyFlags overlays explicitly set flags onto cfg. Flags the command does
// not define are skipped.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	var err error
	if changed("base") {
		if cfg.CounterpartBase, err = flags.GetString("base"); err != nil {
			return err
		}
	}
	if changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if changed("anchor-strategy") {
		if cfg.AnchorStrategy, err = flags.GetString("anchor-strategy"); err != nil {
			return err
		}
	}
	if changed("listen") {
		if cfg.ListenAddress, err = flags.GetString("listen"); err != nil {
			return err
		}
	}
	if changed("deadline") {
		if cfg.Deadline, err = flags.GetDuration("deadline"); err != nil {
			return err
		}
	}
	if changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return err
		}
	}
	if changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return err
		}
	}
	if changed("json") || changed("markdown") {
		jsonOut, err := flags.GetBool("json")
		if err != nil {
			return err
		}
		markdownOut, err := flags.GetBool("markdown")
		if err != nil {
			return err
		}
		cfg.JSONReport, cfg.MarkdownReport = jsonOut, markdownOut
	}
	if changed("output") {
		if cfg.ReportFile, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	return nil
}

// newLogger creates the process logger. Logs go to stderr so reports on
// stdout stay clean.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if cfg.LogJSON {
		return wblog.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return wblog.NewSecureLogger(w, cfg.Verbose)
}

// newClassifier creates the page classifier for the configured source site.
func newClassifier(cfg *config.Config) *page.Classifier {
	return page.NewClassifier(
		page.WithRoutePrefix(cfg.RoutePrefix),
		page.WithHomePage(cfg.HomePage),
		page.WithReservedPrefixes(cfg.ReservedPrefixes),
	)
}

// newChecker creates the existence checker for the configured counterpart.
func newChecker(cfg *config.Config, logger *slog.Logger) (*counterpart.Checker, error) {
	client, err := counterpart.NewHTTPClient(counterpart.ClientOptions{
		Base:          cfg.CounterpartBase,
		SessionCookie: cfg.SessionCookie,
		ProxyAddress:  cfg.ProxyAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create counterpart client: %w", err)
	}

	return counterpart.NewChecker(client,
		counterpart.WithBase(cfg.CounterpartBase),
		counterpart.WithUserAgent(cfg.UserAgent),
		counterpart.WithTimeout(cfg.Timeout),
		counterpart.WithMaxBodySize(cfg.MaxBodySize),
		counterpart.WithAuthMarkers(cfg.AuthMarkers),
		counterpart.WithPlaceholderDetector(counterpart.NewPhraseDetector(cfg.PlaceholderPhrases...)),
		counterpart.WithAnchorResolver(counterpart.NewAnchorResolver(cfg.AnchorStrategy)),
		counterpart.WithLogger(logger),
	), nil
}

// state is the persisted extension state: the preference store and the
// control surface it drives.
type state struct {
	db     *database.StateDB
	menu   *surface.Menu
	toggle *preference.Toggle
}

// openState opens the state database and brings the toggle up. A fresh
// database is installed (preference OFF); an existing one is started.
func openState(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*state, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", db.Path())

	menu := surface.NewMenu(db)
	toggle := preference.NewToggle(db, menu, preference.WithLogger(logger))

	installed, err := toggle.Installed(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if installed {
		err = toggle.Startup(ctx)
	} else {
		err = toggle.Install(ctx)
	}
	if err != nil {
		db.Close()
		return nil, err
	}

	return &state{db: db, menu: menu, toggle: toggle}, nil
}

// Close closes the state database.
func (s *state) Close() error {
	return s.db.Close()
}

// commandContext returns the command's context bounded by timeout.
func commandContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}
