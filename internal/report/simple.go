package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/wikibridge/internal/model"
)

// SimpleWriter outputs a plain-text report for terminals.
type SimpleWriter struct {
	baseWriter

	// verbose adds skipped locations and durations.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose includes skipped locations and check durations.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the entries followed by a summary.
func (w *SimpleWriter) Write(entries []model.BatchEntry) (int, error) {
	var sb strings.Builder

	sb.WriteString("Grokipedia counterpart check\n")
	sb.WriteString(strings.Repeat("=", 28) + "\n\n")

	for _, e := range entries {
		if e.Skipped {
			if w.verbose {
				fmt.Fprintf(&sb, "  [%-14s] %s\n", entryStatus(e), e.Location)
			}
			continue
		}
		fmt.Fprintf(&sb, "  [%-14s] %s\n", entryStatus(e), e.ArticleID)
		if e.URL != "" {
			fmt.Fprintf(&sb, "  %16s -> %s\n", "", e.URL)
		}
		if e.Error != "" {
			fmt.Fprintf(&sb, "  %16s    error: %s\n", "", e.Error)
		}
		if w.verbose {
			fmt.Fprintf(&sb, "  %16s    took %s\n", "", e.Duration)
		}
	}

	summary := model.Summarize(entries)
	sb.WriteString("\nSummary\n-------\n")
	for _, st := range model.Statuses() {
		fmt.Fprintf(&sb, "  %-15s %d\n", statusTitle(st)+":", summary.Counts[st])
	}
	fmt.Fprintf(&sb, "  %-15s %d\n", "Skipped:", summary.Skipped)
	fmt.Fprintf(&sb, "  %-15s %d\n", "Total:", summary.Total)

	return io.WriteString(w.output, sb.String())
}
