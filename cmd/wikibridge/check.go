package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nao1215/wikibridge/internal/config"
	"github.com/nao1215/wikibridge/internal/pipeline"
	"github.com/nao1215/wikibridge/internal/report"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [wikipedia-url...]",
		Short: "Check many Wikipedia pages for Grokipedia counterparts",
		Long: `Check classifies each URL and checks the counterpart of every article page
concurrently. Pages that are not articles are reported as skipped. Nothing
is navigated and nothing is persisted.

Examples:
  # Check two articles
  wikibridge check https://en.wikipedia.org/wiki/Diplomacy https://en.wikipedia.org/wiki/Go_(game)

  # Check a list of URLs (one per line, # starts a comment)
  wikibridge check --list urls.txt --batch 8

  # Write a Markdown report
  wikibridge check --list urls.txt --markdown -o report.md`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	cmd.Flags().StringP("list", "L", "",
		"File with one Wikipedia URL per line")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent checks")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	addCheckerFlags(cmd)

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	listPath, err := cmd.Flags().GetString("list")
	if err != nil {
		return err
	}
	cfg.Targets = append(cfg.Targets, args...)
	if listPath != "" {
		listed, err := readLocations(listPath)
		if err != nil {
			return err
		}
		cfg.Targets = append(cfg.Targets, listed...)
	}
	if err := cfg.RequireTargets(); err != nil {
		return fmt.Errorf("%w (specify Wikipedia URLs as arguments or with --list)", err)
	}

	checker, err := newChecker(cfg, logger)
	if err != nil {
		return err
	}

	bp := pipeline.NewBatchProcessor(newClassifier(cfg), checker,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	pterm.Info.WithWriter(cmd.ErrOrStderr()).Printfln(
		"checking %d pages (concurrency: %d)", len(cfg.Targets), cfg.BatchSize)
	started := time.Now()

	entries, err := bp.ProcessBatch(cmd.Context(), cfg.Targets)
	if err != nil {
		return fmt.Errorf("batch check failed: %w", err)
	}
	logger.Info("batch completed", "elapsed", time.Since(started).Round(time.Millisecond))

	return writeReport(cmd.OutOrStdout(), cfg, func(w io.Writer) error {
		_, err := report.New(reportFormat(cfg), w, getVersion()).Write(entries)
		return err
	})
}

// reportFormat maps the config's report switches to a report format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatSimple
	}
}

// writeReport runs write against the configured report destination.
// Reports go to stdout unless a report file is configured.
func writeReport(stdout io.Writer, cfg *config.Config, write func(io.Writer) error) error {
	if cfg.ReportFile == "" {
		return write(stdout)
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return write(f)
}

// readLocations reads one location per line. Blank lines and lines starting
// with # are ignored.
func readLocations(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open list %s: %w", path, err)
	}
	defer f.Close()

	var locations []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		locations = append(locations, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list %s: %w", path, err)
	}
	return locations, nil
}
