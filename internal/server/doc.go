// Package server exposes the crawler and the search engine over HTTP.
//
// Routes:
//
//	POST /crawl                  start a crawl job
//	POST /crawl/stop             stop the running crawl job
//	GET  /search?q=              keyword search over indexed pages
//	GET  /search_images?q=       image search over stored assets
//	GET  /search_videos?q=       video search over stored assets
//	GET  /info                   crawl status
//	GET  /images/{filename}      stored image
//	GET  /videos/{filename}      stored video
//	GET  /metrics                Prometheus metrics
//	GET  /                       web UI
//
// At most Workers requests are handled at once; further requests wait.
package server
