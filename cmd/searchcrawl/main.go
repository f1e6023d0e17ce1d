// Package main provides the entry point for the searchcrawl CLI.
//
// searchcrawl is a bounded web crawler with keyword search over the pages,
// images and videos it has collected.
//
// Usage:
//
//	searchcrawl serve
//	searchcrawl crawl --max-depth 2
//	searchcrawl report --format markdown
//
// See --help for all available options.
package main

// main is the entry point for searchcrawl.
func main() {
	Execute()
}
