// Package crawler implements the crawl pipeline of searchcrawl.
//
// # Components
//
//   - Frontier: a binary min-heap of (depth, URL) entries bounded by a
//     maximum depth; equal depths pop in insertion order
//   - Extractor: turns markup into visible text and absolute image, video
//     and link URLs through the typed Document interface
//   - Renderer: produces markup for a URL; HTTPRenderer fetches it over HTTP
//   - Orchestrator: runs one crawl job at a time and publishes its status
//
// # Crawl loop
//
// On start the orchestrator loads the visited set from the page store and
// rebuilds the search index, then schedules every seed that was not stored
// before. Each iteration pops the shallowest entry, marks it visited,
// renders and extracts it, hands its media to the asset store, stores the
// page and schedules its unseen links one level deeper. The index is rebuilt
// whenever the crawl moves to a deeper level and once more when the loop
// ends.
//
// A page that fails to render is stored with empty text and no links, so it
// is never retried. Only storage failures abort a crawl.
//
// # Usage
//
//	orch := crawler.NewOrchestrator(db, assets, index,
//		crawler.HTTPRendererFactory(client),
//		crawler.WithSeeds(seeds),
//		crawler.WithMaxDepth(3),
//	)
//	if err := orch.Start(ctx); err != nil {
//		return err
//	}
package crawler
