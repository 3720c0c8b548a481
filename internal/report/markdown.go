package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/wikibridge/internal/model"
)

// MarkdownWriter outputs the batch as GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the entries as Markdown.
func (w *MarkdownWriter) Write(entries []model.BatchEntry) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := model.Summarize(entries)

	md.H1("Grokipedia Counterpart Report")
	md.PlainText("")

	w.writeSummary(md, summary)
	w.writeEntries(md, entries)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary model.BatchSummary) {
	md.H2("Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.Statuses())+2)
	for _, st := range model.Statuses() {
		rows = append(rows, []string{statusTitle(st), strconv.Itoa(summary.Counts[st])})
	}
	rows = append(rows,
		[]string{"Skipped", strconv.Itoa(summary.Skipped)},
		[]string{"**Total**", "**" + strconv.Itoa(summary.Total) + "**"},
	)
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	checked := summary.Total - summary.Skipped
	if checked > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Check Outcomes"),
			piechart.WithShowData(true),
		)
		for _, st := range model.Statuses() {
			if n := summary.Counts[st]; n > 0 {
				chart.LabelAndIntValue(statusTitle(st), uint64(n)) //nolint:gosec // counts are non-negative
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case summary.Counts[model.StatusError] > 0:
		md.Warningf("%d check(s) failed; the counterpart may be unreachable.", summary.Counts[model.StatusError])
	case summary.Counts[model.StatusLoginRequired] > 0:
		md.Importantf("%d article(s) are behind a login; set a session cookie to confirm them.", summary.Counts[model.StatusLoginRequired])
	case checked > 0 && summary.Counts[model.StatusFound] == checked:
		md.Tip("Every checked article has a counterpart.")
	default:
		md.Note("Not every article has a counterpart.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeEntries(md *markdown.Markdown, entries []model.BatchEntry) {
	md.H2("Articles")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No page locations were given.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		article := "`" + truncateString(e.Location, 80) + "`"
		if !e.Skipped {
			article = "`" + e.ArticleID.String() + "`"
		}
		counterpart := "-"
		if e.URL != "" {
			counterpart = markdown.Link(truncateString(e.URL, 80), e.URL)
		}
		rows = append(rows, []string{article, entryStatus(e), counterpart})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Article", "Status", "Counterpart"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wikibridge](https://github.com/nao1215/wikibridge)*")
}
