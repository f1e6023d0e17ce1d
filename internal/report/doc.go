// Package report renders a summary of the crawl store.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with tables and a mermaid pie chart
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
