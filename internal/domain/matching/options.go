package matching

import (
	"github.com/okian/pcdmatch/internal/domain/scoring"
	"github.com/okian/pcdmatch/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithScorer replaces the compatibility scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithWorkerCount sets how many jobs are evaluated concurrently per request.
// Values below 2 keep evaluation sequential.
func WithWorkerCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSubtypeFallback toggles the barrier subtype fallback.
func WithSubtypeFallback(enabled bool) Option {
	return func(e *Engine) {
		e.subtypeFallback = enabled
	}
}
