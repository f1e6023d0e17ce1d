package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/searchcrawl/internal/model"
)

// SimpleWriter outputs a plain text summary for terminals.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary.
func (w *SimpleWriter) Write(summary *model.CrawlSummary) (int, error) {
	var sb strings.Builder

	sb.WriteString("Crawl Summary\n")
	sb.WriteString("=============\n\n")
	fmt.Fprintf(&sb, "Pages:        %d\n", summary.Pages)
	fmt.Fprintf(&sb, "Empty pages:  %d\n", summary.EmptyPages)
	fmt.Fprintf(&sb, "Max depth:    %d\n", summary.MaxDepth)
	for _, kind := range model.MediaKinds {
		fmt.Fprintf(&sb, "%-13s %d\n", title(kind.Plural())+":", summary.Assets[kind])
	}
	fmt.Fprintf(&sb, "EXIF images:  %d\n", summary.ImagesWithEXIF)

	if depths := sortedDepths(summary); len(depths) > 0 {
		sb.WriteString("\nPages by depth\n")
		for _, d := range depths {
			fmt.Fprintf(&sb, "  %3d  %d\n", d.Depth, d.Pages)
		}
	}

	if langs := sortedLanguages(summary); len(langs) > 0 {
		sb.WriteString("\nPages by language\n")
		for _, l := range langs {
			fmt.Fprintf(&sb, "  %-20s %d\n", l.Name, l.Pages)
		}
	}

	return io.WriteString(w.output, sb.String())
}
