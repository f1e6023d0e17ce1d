package model

// CrawlSummary aggregates the durable store for reporting.
type CrawlSummary struct {
	// Pages is the number of page records.
	Pages int

	// EmptyPages counts pages stored with no text (failed renders).
	EmptyPages int

	// MaxDepth is the deepest stored page depth.
	MaxDepth int

	// PagesByDepth maps depth to page count.
	PagesByDepth map[int]int

	// PagesByLanguage maps a language code to page count.
	// Pages without a detected language are counted under "".
	PagesByLanguage map[string]int

	// Assets maps a media kind to the number of stored assets.
	Assets map[MediaKind]int

	// ImagesWithEXIF counts images that carried EXIF tags.
	ImagesWithEXIF int
}
