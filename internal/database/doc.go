// Package database provides the SQLite-backed durable store of searchcrawl.
//
// CrawlDB keeps three record sets:
//   - pages: one row per URL with its text, depth and last visit time
//     (INSERT OR REPLACE on every visit)
//   - images and videos: one row per distinct asset URL with the page that
//     first referenced it and the local filename
//
// Schema creation uses CREATE TABLE IF NOT EXISTS and is safe to run against
// an existing store. The driver is modernc.org/sqlite, which is CGO-free, so
// the database is a single file with no external service to run.
package database
