// Package search holds the in-memory index of crawled pages and answers
// keyword, image and video queries.
//
// The Index is a projection of the durable store. It is never patched: every
// Rebuild reads all pages and assets into a new snapshot and publishes it
// with a single atomic pointer swap, so concurrent queries see either the
// old or the new index, never a mix. Results are returned in rebuild order,
// which is the store's insertion order; there is no relevance ranking.
package search
