package cache

import (
	"time"

	"github.com/okian/pcdmatch/pkg/logger"
)

// Option applies a configuration option to the MappingCache.
type Option func(*MappingCache)

// WithTTL sets how long a barrier entry lives. Zero keeps entries forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *MappingCache) {
		if ttl >= 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix sets the key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(c *MappingCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithLogger sets the cache logger.
func WithLogger(l logger.Logger) Option {
	return func(c *MappingCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WarmerOption applies a configuration option to the Warmer.
type WarmerOption func(*Warmer)

// WithWarmerLogger sets the warmer logger.
func WithWarmerLogger(l logger.Logger) WarmerOption {
	return func(w *Warmer) {
		if l != nil {
			w.logger = l
		}
	}
}
