package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/searchcrawl/internal/model"
)

// JSONWriter outputs summaries in JSON format.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonSummary is the serialized form of a CrawlSummary. Maps keyed by
// non-string values become ordered lists.
type jsonSummary struct {
	Pages          int             `json:"pages"`
	EmptyPages     int             `json:"empty_pages"`
	MaxDepth       int             `json:"max_depth"`
	Depths         []depthCount    `json:"depths"`
	Languages      []languageCount `json:"languages"`
	Images         int             `json:"images"`
	Videos         int             `json:"videos"`
	ImagesWithEXIF int             `json:"images_with_exif"`
}

// Write outputs the summary as JSON followed by a newline.
func (w *JSONWriter) Write(summary *model.CrawlSummary) (int, error) {
	v := jsonSummary{
		Pages:          summary.Pages,
		EmptyPages:     summary.EmptyPages,
		MaxDepth:       summary.MaxDepth,
		Depths:         sortedDepths(summary),
		Languages:      sortedLanguages(summary),
		Images:         summary.Assets[model.MediaImage],
		Videos:         summary.Assets[model.MediaVideo],
		ImagesWithEXIF: summary.ImagesWithEXIF,
	}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
