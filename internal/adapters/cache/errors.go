package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrCacheMiss   = errors.New("cache miss")
	ErrInvalidURL  = errors.New("invalid redis url")
	ErrInvalidSpec = errors.New("invalid refresh schedule")
)
