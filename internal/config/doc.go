// Package config provides the configuration of searchcrawl: the crawl
// core (seed URLs, maximum depth, timeouts, storage location) and the HTTP
// layer (listen address, worker concurrency), plus logging switches.
//
// Values come from three layers applied in order: NewConfig defaults, an
// optional YAML file (.searchcrawl.yaml), and CLI flags. The resulting
// Config is identical no matter which layer supplied a value.
package config
