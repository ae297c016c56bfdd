// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/okian/pcdmatch/internal/adapters/cache"
	"github.com/okian/pcdmatch/internal/adapters/repository"
	"github.com/okian/pcdmatch/internal/apperr"
	"github.com/okian/pcdmatch/internal/config"
	"github.com/okian/pcdmatch/internal/domain/matching"
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/internal/domain/types"
	"github.com/okian/pcdmatch/pkg/logger"
	"github.com/okian/pcdmatch/pkg/metrics"
)

// Service implements the API dependencies for candidate matching.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  *repository.Store
	rdb    *redis.Client
	cache  *cache.MappingCache
	warmer *cache.Warmer
	engine *matching.Engine

	// Ownership of components opened by Start
	ownsStore bool
	ownsRedis bool

	// Configuration
	cfg              *config.Config
	workerCount      int
	defaultThreshold float64
	thresholdSet     bool

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig sets the configuration. Defaults apply otherwise.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithStore injects an open store. The service does not close it.
func WithStore(store *repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithRedis injects a Redis client and enables the mapping cache. The
// service does not close it.
func WithRedis(rdb *redis.Client) Option {
	return func(s *Service) {
		s.rdb = rdb
	}
}

// WithWorkerCount sets how many jobs are evaluated concurrently per request.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithDefaultThreshold sets the threshold used when a request carries none.
func WithDefaultThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold >= 0 && threshold <= 1 {
			s.defaultThreshold = threshold
			s.thresholdSet = true
		}
	}
}

// New constructs a new Service. Values not set by options come from the
// configuration.
func New(opts ...Option) *Service {
	s := &Service{cfg: config.New()}

	for _, opt := range opts {
		opt(s)
	}

	if s.workerCount == 0 {
		s.workerCount = s.cfg.WorkerCount
	}
	if !s.thresholdSet {
		s.defaultThreshold = s.cfg.DefaultThreshold
	}
	return s
}

// Start opens the store and the optional cache and builds the engine.
func (s *Service) Start(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting matching service...")

	defer func() {
		if err != nil {
			s.release()
		}
	}()

	if s.store == nil {
		db := s.cfg.Database
		s.store, err = repository.Open(ctx, db.Driver, db.DSN,
			repository.WithMaxOpenConns(db.MaxOpenConns),
			repository.WithLogger(s.logger.Named("repository")),
		)
		if err != nil {
			return apperr.Wrap("service.Start", err)
		}
		s.ownsStore = true
	}

	if s.cfg.Database.Migrate {
		if err = s.store.Migrate(ctx); err != nil {
			return apperr.Wrap("service.Start", err)
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	var mappings matching.MappingLoader = s.store
	if s.rdb == nil && s.cfg.Redis.Enabled() {
		rdb, rerr := cache.NewRedisClient(ctx, s.cfg.Redis.URL)
		if rerr != nil {
			s.logger.Warn(ctx, "redis unavailable; mapping cache disabled", logger.Error(rerr))
		} else {
			s.rdb = rdb
			s.ownsRedis = true
		}
	}
	if s.rdb != nil {
		s.cache = cache.NewMappingCache(s.rdb, s.store,
			cache.WithTTL(s.cfg.Redis.TTL()),
			cache.WithLogger(s.logger.Named("cache")),
		)
		s.warmer = cache.NewWarmer(s.cache, s.store, s.cfg.Redis.RefreshSpec,
			cache.WithWarmerLogger(s.logger.Named("warmer")),
		)
		if err = s.warmer.Start(runCtx); err != nil {
			s.warmer = nil
			return apperr.Wrap("service.Start", err)
		}
		mappings = s.cache
	}

	s.engine = matching.New(s.store, s.store, mappings,
		matching.WithLogger(s.logger.Named("matching")),
		matching.WithWorkerCount(s.workerCount),
		matching.WithSubtypeFallback(s.cfg.SubtypeFallback),
	)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.String("driver", s.store.Driver()),
		logger.Int("workers", s.workerCount),
		logger.Float64("defaultThreshold", s.defaultThreshold),
		logger.Bool("cache", s.cache != nil),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping matching service...")
	s.release()
	s.started = false
	s.logger.Info(context.Background(), "matching service stopped")
}

// release stops background work and closes what Start opened.
func (s *Service) release() {
	if s.warmer != nil {
		s.warmer.Stop()
		s.warmer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.cache = nil
	s.engine = nil
	if s.ownsRedis && s.rdb != nil {
		_ = s.rdb.Close()
		s.rdb = nil
		s.ownsRedis = false
	}
	if s.ownsStore && s.store != nil {
		_ = s.store.Close()
		s.store = nil
		s.ownsStore = false
	}
}

// MatchForCandidate ranks the published catalog for a candidate. A nil
// threshold selects the default. The call is bounded by the configured
// request timeout.
func (s *Service) MatchForCandidate(ctx context.Context, id model.CandidateID, threshold *float64) ([]types.Match, error) {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	if engine == nil {
		return nil, apperr.WrapKind("service.MatchForCandidate", apperr.ErrDependency, ErrNotStarted)
	}

	t := s.defaultThreshold
	if threshold != nil {
		t = *threshold
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout())
	defer cancel()

	results, err := engine.MatchForCandidate(ctx, id, t)
	if err != nil {
		return nil, err
	}
	return types.FromResults(results), nil
}

// Ready reports whether the store answers. A stopped service is not ready.
func (s *Service) Ready(ctx context.Context) error {
	s.mu.RLock()
	store, started := s.store, s.started
	s.mu.RUnlock()
	if !started || store == nil {
		return apperr.WrapKind("service.Ready", apperr.ErrDependency, ErrNotStarted)
	}
	return store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"defaultThreshold": s.defaultThreshold,
		"cacheEnabled":     s.cache != nil,
	}

	if s.started {
		n, err := s.store.CountPublishedJobs(ctx)
		if err != nil {
			s.logger.Warn(ctx, "count published jobs failed", logger.Error(err))
		} else {
			stats["publishedJobs"] = n
			metrics.UpdatePublishedJobs(n)
		}
	}

	totals, err := metrics.Totals()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn(ctx, "gather metrics failed", logger.Error(err))
		}
		return stats
	}
	for name, v := range totals {
		stats[name] = v
	}
	return stats
}
