package repository

import (
	"context"
	"fmt"

	"github.com/okian/pcdmatch/internal/apperr"
	"github.com/okian/pcdmatch/internal/domain/accessibility"
	"github.com/okian/pcdmatch/internal/domain/model"
)

const (
	mappingsQuery    = `SELECT barrier_id, accessibility_id FROM barrier_accessibilities WHERE barrier_id IN (%s) ORDER BY barrier_id, accessibility_id`
	allMappingsQuery = `SELECT barrier_id, accessibility_id FROM barrier_accessibilities ORDER BY barrier_id, accessibility_id`
	allBarriersQuery = `SELECT id FROM barriers ORDER BY id`
)

// LoadBarrierAccessibilityMappings returns the (barrier, feature) pairs for
// the given barriers. No barriers means no query.
func (s *Store) LoadBarrierAccessibilityMappings(ctx context.Context, barriers []model.BarrierID) ([]accessibility.Mapping, error) {
	if len(barriers) == 0 {
		return []accessibility.Mapping{}, nil
	}
	args := make([]any, len(barriers))
	for i, b := range barriers {
		args[i] = int64(b)
	}
	out, err := s.mappings(ctx, fmt.Sprintf(mappingsQuery, placeholders(1, len(barriers))), args...)
	return out, apperr.Wrap("repository.LoadBarrierAccessibilityMappings", err)
}

// LoadAllBarrierAccessibilityMappings returns every mapping in the database.
func (s *Store) LoadAllBarrierAccessibilityMappings(ctx context.Context) ([]accessibility.Mapping, error) {
	out, err := s.mappings(ctx, allMappingsQuery)
	return out, apperr.Wrap("repository.LoadAllBarrierAccessibilityMappings", err)
}

// LoadBarrierIDs returns every known barrier, mapped or not.
func (s *Store) LoadBarrierIDs(ctx context.Context) ([]model.BarrierID, error) {
	rows, err := s.db.QueryContext(ctx, allBarriersQuery)
	if err != nil {
		return nil, apperr.Wrap("repository.LoadBarrierIDs", err)
	}
	defer rows.Close()

	var out []model.BarrierID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Wrap("repository.LoadBarrierIDs", err)
		}
		out = append(out, model.BarrierID(id))
	}
	return out, apperr.Wrap("repository.LoadBarrierIDs", rows.Err())
}

func (s *Store) mappings(ctx context.Context, query string, args ...any) ([]accessibility.Mapping, error) {
	out := []accessibility.Mapping{}
	err := eachPair(ctx, s.db, query, func(barrier, feature int64) {
		out = append(out, accessibility.Mapping{Barrier: model.BarrierID(barrier), Feature: model.FeatureID(feature)})
	}, args...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
