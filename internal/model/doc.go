// Package model defines the core data structures shared by the crawler,
// the stores, the search index, and the HTTP layer.
//
// This package contains the following main types:
//   - Page: A crawled page as recorded by the Page Store
//   - MediaAsset: A downloaded image or video and its local filename
//   - MediaKind: The image/video discriminator with its serving route
//   - CrawlStatus: The immutable snapshot published by the orchestrator
//   - CrawlSummary: Aggregate numbers used by the Markdown report
//
// Models live in their own package so that crawler, media, search and server
// can all depend on them without importing each other.
package model
