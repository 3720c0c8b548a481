package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/wikibridge/internal/model"
)

// JSONWriter outputs the batch as a JSON document.
type JSONWriter struct {
	baseWriter

	version      string
	indent       bool
	indentPrefix string
	indentString string
	now          func() time.Time
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		version:    version,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	Version     string             `json:"version"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Summary     model.BatchSummary `json:"summary"`
	Entries     []model.BatchEntry `json:"entries"`
}

// Write outputs the entries with their summary.
func (w *JSONWriter) Write(entries []model.BatchEntry) (int, error) {
	if entries == nil {
		entries = []model.BatchEntry{}
	}
	doc := JSONReport{
		Version:     w.version,
		GeneratedAt: w.now().UTC(),
		Summary:     model.Summarize(entries),
		Entries:     entries,
	}

	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(doc, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
