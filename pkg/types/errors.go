// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Configuration validation errors.
var (
	ErrInvalidTimeout      = errors.New("timeout must be positive")
	ErrInvalidRetries      = errors.New("max retries must not be negative")
	ErrInvalidDepth        = errors.New("depth must not be negative")
	ErrInvalidMaxResults   = errors.New("max results out of range")
	ErrInvalidConcurrency  = errors.New("concurrency must be at least 1")
	ErrInvalidOutputFormat = errors.New("unknown output format")
)
