package report

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/wikibridge/internal/model"
)

// Writer writes batch check results.
type Writer interface {
	// Write outputs the entries and returns the number of bytes written.
	Write(entries []model.BatchEntry) (int, error)
}

// MultiWriter writes to multiple Writers, stopping on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the entries to every Writer.
func (m *MultiWriter) Write(entries []model.BatchEntry) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(entries)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Format names a report format.
type Format string

// Report formats.
const (
	FormatSimple   Format = "simple"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// New returns the Writer for format. Unknown formats fall back to simple.
func New(format Format, output io.Writer, version string) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, version, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

var titleCaser = cases.Title(language.English)

// statusTitle renders a status for humans, e.g. "login_required" becomes
// "Login Required".
func statusTitle(s model.Status) string {
	return titleCaser.String(strings.ReplaceAll(s.String(), "_", " "))
}

// entryStatus renders an entry's outcome, including skipped entries.
func entryStatus(e model.BatchEntry) string {
	if e.Skipped {
		return "Skipped"
	}
	return statusTitle(e.Status)
}

// truncateString truncates a string to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
