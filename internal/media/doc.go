// Package media implements the asset store: it downloads the images and
// videos referenced by crawled pages into per-kind directories and records
// one row per distinct asset URL.
//
// Deduplication is by URL, not by content. Two URLs serving identical bytes
// are stored twice, and two URLs sharing a final path segment write to the
// same file, the later download replacing the earlier bytes.
package media
