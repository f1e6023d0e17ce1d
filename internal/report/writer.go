package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/searchcrawl/internal/model"
)

// ErrUnknownFormat is returned by NewWriter for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Supported format names.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the summary and returns the number of bytes written.
	Write(summary *model.CrawlSummary) (int, error)
}

// NewWriter returns the Writer for format.
func NewWriter(format string, output io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q (expected %s, %s or %s)", ErrUnknownFormat, format, FormatText, FormatJSON, FormatMarkdown)
	}
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all Writers and stops on the first error.
func (m *MultiWriter) Write(summary *model.CrawlSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// depthCount is one row of the depth distribution.
type depthCount struct {
	Depth int `json:"depth"`
	Pages int `json:"pages"`
}

// sortedDepths returns the depth distribution in ascending depth order.
func sortedDepths(summary *model.CrawlSummary) []depthCount {
	rows := make([]depthCount, 0, len(summary.PagesByDepth))
	for depth, pages := range summary.PagesByDepth {
		rows = append(rows, depthCount{Depth: depth, Pages: pages})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Depth < rows[j].Depth })
	return rows
}

// languageCount is one row of the language distribution.
type languageCount struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Pages int    `json:"pages"`
}

// sortedLanguages returns the language distribution, most pages first.
func sortedLanguages(summary *model.CrawlSummary) []languageCount {
	rows := make([]languageCount, 0, len(summary.PagesByLanguage))
	for code, pages := range summary.PagesByLanguage {
		rows = append(rows, languageCount{Code: code, Name: languageName(code), Pages: pages})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Pages != rows[j].Pages {
			return rows[i].Pages > rows[j].Pages
		}
		return rows[i].Code < rows[j].Code
	})
	return rows
}

// languageName returns the English name of an ISO 639-3 code.
func languageName(code string) string {
	if code == "" {
		return "Unknown"
	}
	name := whatlanggo.CodeToLang(code).String()
	if name == "" {
		return code
	}
	return name
}

var titleCaser = cases.Title(language.English)

// title returns s in title case, e.g. "images" -> "Images".
func title(s string) string {
	return titleCaser.String(s)
}
