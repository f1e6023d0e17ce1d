package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/searchcrawl/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.CrawlSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Report")
	md.PlainText("")

	w.writeOverview(md, summary)
	w.writeDepths(md, summary)
	w.writeLanguages(md, summary)

	return len(md.String()), md.Build()
}

// writeOverview writes the totals table.
func (w *MarkdownWriter) writeOverview(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H2("Overview")
	md.PlainText("")

	rows := [][]string{
		{"Pages", strconv.Itoa(summary.Pages)},
		{"Empty Pages", strconv.Itoa(summary.EmptyPages)},
		{"Max Depth", strconv.Itoa(summary.MaxDepth)},
	}
	for _, kind := range model.MediaKinds {
		rows = append(rows, []string{title(kind.Plural()), strconv.Itoa(summary.Assets[kind])})
	}
	rows = append(rows, []string{"Images With EXIF", strconv.Itoa(summary.ImagesWithEXIF)})

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary.Pages == 0 {
		md.Note("The store is empty. Run a crawl first.")
		md.PlainText("")
	}
}

// writeDepths writes the depth distribution as a table and a pie chart.
func (w *MarkdownWriter) writeDepths(md *markdown.Markdown, summary *model.CrawlSummary) {
	depths := sortedDepths(summary)
	if len(depths) == 0 {
		return
	}

	md.H2("Pages By Depth")
	md.PlainText("")

	rows := make([][]string, len(depths))
	for i, d := range depths {
		rows[i] = []string{strconv.Itoa(d.Depth), strconv.Itoa(d.Pages)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Depth", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Depth Distribution"),
		piechart.WithShowData(true),
	)
	for _, d := range depths {
		chart.LabelAndIntValue("Depth "+strconv.Itoa(d.Depth), uint64(d.Pages)) //nolint:gosec // counts are non-negative
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeLanguages writes the language distribution.
func (w *MarkdownWriter) writeLanguages(md *markdown.Markdown, summary *model.CrawlSummary) {
	langs := sortedLanguages(summary)
	if len(langs) == 0 {
		return
	}

	md.H2("Pages By Language")
	md.PlainText("")

	rows := make([][]string, len(langs))
	for i, l := range langs {
		code := l.Code
		if code == "" {
			code = "-"
		}
		rows[i] = []string{l.Name, code, strconv.Itoa(l.Pages)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Language", "Code", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")
}
