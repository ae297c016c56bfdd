package cache

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/pcdmatch/internal/domain/accessibility"
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/pkg/logger"
	"github.com/okian/pcdmatch/pkg/metrics"
)

const (
	defaultPrefix = "pcdmatch"
	defaultTTL    = 10 * time.Minute
)

// Source is where cache misses are loaded from.
type Source interface {
	LoadBarrierAccessibilityMappings(ctx context.Context, barriers []model.BarrierID) ([]accessibility.Mapping, error)
}

// MappingCache is a read-through cache of the features mitigating each
// barrier. Every barrier has its own key holding a JSON array of feature ids;
// unmapped barriers are cached as an empty array. Redis failures fall back to
// the source and never fail a lookup on their own.
type MappingCache struct {
	rdb    redis.Cmdable
	source Source
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

// NewMappingCache creates a cache in front of source.
func NewMappingCache(rdb redis.Cmdable, source Source, opts ...Option) *MappingCache {
	c := &MappingCache{
		rdb:    rdb,
		source: source,
		ttl:    defaultTTL,
		prefix: defaultPrefix,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the Redis key of a barrier.
func (c *MappingCache) Key(barrier model.BarrierID) string {
	return fmt.Sprintf("%s:barrier:%d:features", c.prefix, barrier)
}

// LoadBarrierAccessibilityMappings serves cached barriers from Redis and
// loads the rest from the source, writing them back.
func (c *MappingCache) LoadBarrierAccessibilityMappings(ctx context.Context, barriers []model.BarrierID) ([]accessibility.Mapping, error) {
	barriers = unique(barriers)
	if len(barriers) == 0 {
		return []accessibility.Mapping{}, nil
	}

	out, missing := c.lookup(ctx, barriers)
	metrics.RecordMappingCacheHits(len(barriers) - len(missing))
	metrics.RecordMappingCacheMisses(len(missing))
	if len(missing) == 0 {
		return sortMappings(out), nil
	}

	loaded, err := c.source.LoadBarrierAccessibilityMappings(ctx, missing)
	if err != nil {
		return nil, err
	}
	c.write(ctx, group(missing, loaded))
	return sortMappings(append(out, loaded...)), nil
}

// lookup returns the cached mappings and the barriers that were not cached.
// A Redis error reports every barrier as missing.
func (c *MappingCache) lookup(ctx context.Context, barriers []model.BarrierID) ([]accessibility.Mapping, []model.BarrierID) {
	keys := make([]string, len(barriers))
	for i, b := range barriers {
		keys[i] = c.Key(b)
	}

	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.degraded(ctx, "mget", err)
		return nil, barriers
	}

	var (
		out     []accessibility.Mapping
		missing []model.BarrierID
	)
	for i, v := range values {
		features, err := decode(v)
		if err != nil {
			if !errors.Is(err, ErrCacheMiss) {
				c.logger.Warn(ctx, "dropping unreadable cache entry", logger.String("key", keys[i]), logger.Error(err))
			}
			missing = append(missing, barriers[i])
			continue
		}
		for _, f := range features {
			out = append(out, accessibility.Mapping{Barrier: barriers[i], Feature: f})
		}
	}
	return out, missing
}

// Store writes the feature lists of the given barriers.
func (c *MappingCache) Store(ctx context.Context, byBarrier map[model.BarrierID][]model.FeatureID) error {
	if len(byBarrier) == 0 {
		return nil
	}
	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for barrier, features := range byBarrier {
			if features == nil {
				features = []model.FeatureID{}
			}
			raw, err := json.Marshal(features)
			if err != nil {
				return err
			}
			p.Set(ctx, c.Key(barrier), raw, c.ttl)
		}
		return nil
	})
	return err
}

func (c *MappingCache) write(ctx context.Context, byBarrier map[model.BarrierID][]model.FeatureID) {
	if err := c.Store(ctx, byBarrier); err != nil {
		c.degraded(ctx, "set", err)
	}
}

func (c *MappingCache) degraded(ctx context.Context, op string, err error) {
	metrics.RecordMappingCacheDegraded()
	c.logger.Warn(ctx, "mapping cache unavailable, using database", logger.String("op", op), logger.Error(err))
}

func decode(v any) ([]model.FeatureID, error) {
	var raw []byte
	switch x := v.(type) {
	case nil:
		return nil, ErrCacheMiss
	case string:
		raw = []byte(x)
	case []byte:
		raw = x
	default:
		return nil, fmt.Errorf("unexpected cache value type %T", v)
	}
	var features []model.FeatureID
	if err := json.Unmarshal(raw, &features); err != nil {
		return nil, err
	}
	return features, nil
}

// group lists the features of every requested barrier, empty when unmapped.
func group(barriers []model.BarrierID, mappings []accessibility.Mapping) map[model.BarrierID][]model.FeatureID {
	out := make(map[model.BarrierID][]model.FeatureID, len(barriers))
	for _, b := range barriers {
		out[b] = []model.FeatureID{}
	}
	for _, m := range mappings {
		out[m.Barrier] = append(out[m.Barrier], m.Feature)
	}
	return out
}

func unique(ids []model.BarrierID) []model.BarrierID {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func sortMappings(ms []accessibility.Mapping) []accessibility.Mapping {
	if ms == nil {
		return []accessibility.Mapping{}
	}
	slices.SortFunc(ms, func(a, b accessibility.Mapping) int {
		return cmp.Or(cmp.Compare(a.Barrier, b.Barrier), cmp.Compare(a.Feature, b.Feature))
	})
	return ms
}
