package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/pcdmatch/internal/domain/accessibility"
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/pkg/logger"
	"github.com/okian/pcdmatch/pkg/metrics"
)

const refreshTimeout = time.Minute

// FullSource lists every barrier and every mapping.
type FullSource interface {
	LoadBarrierIDs(ctx context.Context) ([]model.BarrierID, error)
	LoadAllBarrierAccessibilityMappings(ctx context.Context) ([]accessibility.Mapping, error)
}

// Warmer rewrites the whole mapping cache on a cron schedule.
type Warmer struct {
	cron   *cron.Cron
	spec   string
	cache  *MappingCache
	source FullSource
	logger logger.Logger
	// initial tracks the refresh fired by Start outside the scheduler.
	initial sync.WaitGroup
}

// ValidateSpec reports whether spec is an accepted schedule, for example
// "@every 10m" or "*/5 * * * *".
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSpec, spec, err)
	}
	return nil
}

// NewWarmer creates a warmer that refreshes c from source on spec.
func NewWarmer(c *MappingCache, source FullSource, spec string, opts ...WarmerOption) *Warmer {
	w := &Warmer{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:   spec,
		cache:  c,
		source: source,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start registers the refresh job, starts the scheduler and runs one
// refresh right away in the background.
func (w *Warmer) Start(ctx context.Context) error {
	if err := ValidateSpec(w.spec); err != nil {
		return err
	}
	if _, err := w.cron.AddFunc(w.spec, func() { w.refresh(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	w.cron.Start()
	w.logger.Info(ctx, "cache warmer started", logger.String("spec", w.spec))

	w.initial.Add(1)
	go func() {
		defer w.initial.Done()
		w.refresh(ctx)
	}()
	return nil
}

// Stop stops the scheduler and waits for every running refresh to finish,
// the one fired by Start included.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
	w.initial.Wait()
}

func (w *Warmer) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	if err := w.RefreshNow(ctx); err != nil {
		w.logger.Error(ctx, "cache refresh failed", logger.Error(err))
	}
}

// RefreshNow writes the feature list of every known barrier.
func (w *Warmer) RefreshNow(ctx context.Context) error {
	start := time.Now()
	barriers, err := w.source.LoadBarrierIDs(ctx)
	if err != nil {
		metrics.RecordMappingCacheRefresh(metrics.RefreshError)
		return err
	}
	mappings, err := w.source.LoadAllBarrierAccessibilityMappings(ctx)
	if err != nil {
		metrics.RecordMappingCacheRefresh(metrics.RefreshError)
		return err
	}
	if err := w.cache.Store(ctx, group(barriers, mappings)); err != nil {
		metrics.RecordMappingCacheRefresh(metrics.RefreshError)
		return fmt.Errorf("store mappings: %w", err)
	}
	metrics.RecordMappingCacheRefresh(metrics.RefreshOK)
	w.logger.Debug(ctx, "cache refreshed",
		logger.Int("barriers", len(barriers)),
		logger.Int("mappings", len(mappings)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}
