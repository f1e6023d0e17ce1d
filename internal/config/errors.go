package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoSeeds is returned when the seed list is empty.
	ErrNoSeeds = errors.New("no seeds specified: provide at least one seed URL")

	// ErrInvalidSeed is returned when a seed is not an http(s) URL.
	ErrInvalidSeed = errors.New("invalid seed: must start with http:// or https://")

	// ErrInvalidMaxDepth is returned when the maximum depth is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidTimeout is returned when a render or asset timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when a size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid size limit: must be positive")

	// ErrNoDataDir is returned when no data directory is configured.
	ErrNoDataDir = errors.New("no data directory specified")
)
