package model

import "time"

// TimestampLayout is the layout used for every human-facing timestamp:
// a page's last visit time and the last index update time.
const TimestampLayout = "2006-01-02 15:04:05"

// Page is the durable record of a fetched URL.
// Re-visiting the same URL replaces the previous record.
type Page struct {
	// URL is the page address and the record's primary key.
	URL string `json:"url"`

	// Text is the whitespace-normalized visible text of the page.
	// Empty when rendering failed.
	Text string `json:"text"`

	// Depth is the crawl depth at which the page was visited.
	Depth int `json:"depth"`

	// LastVisited is when the page was last fetched.
	LastVisited time.Time `json:"last_visited"`

	// Language is an ISO 639-3 code detected from Text.
	// Empty when detection was not reliable.
	Language string `json:"language,omitempty"`
}

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
