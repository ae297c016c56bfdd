// Package accessibility resolves which accessibility features mitigate a
// barrier and evaluates whether a job covers a candidate's reported barriers.
package accessibility

import (
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/internal/domain/sets"
)

// Mapping is one barrier -> feature edge of the reference data.
type Mapping struct {
	Barrier model.BarrierID `json:"barrier_id"`
	Feature model.FeatureID `json:"feature_id"`
}

// Index answers barrier -> mitigating features lookups. It is immutable once
// built and may be shared by any number of concurrent readers.
type Index struct {
	features map[model.BarrierID]sets.Set[model.FeatureID]
}

// NewIndex builds an index from mapping edges. Duplicate edges are harmless.
func NewIndex(mappings []Mapping) *Index {
	idx := &Index{features: make(map[model.BarrierID]sets.Set[model.FeatureID])}
	for _, m := range mappings {
		fs, ok := idx.features[m.Barrier]
		if !ok {
			fs = sets.New[model.FeatureID](1)
			idx.features[m.Barrier] = fs
		}
		fs.Add(m.Feature)
	}
	return idx
}

// FeaturesFor returns the mitigating features of each requested barrier.
// Unmapped barriers get an empty set; an empty request yields an empty map.
// The returned sets are copies.
func (i *Index) FeaturesFor(barriers sets.Set[model.BarrierID]) map[model.BarrierID]sets.Set[model.FeatureID] {
	out := make(map[model.BarrierID]sets.Set[model.FeatureID], len(barriers))
	for b := range barriers {
		out[b] = i.lookup(b).Clone()
	}
	return out
}

// Mitigates reports whether any of offered mitigates barrier.
func (i *Index) Mitigates(barrier model.BarrierID, offered sets.Set[model.FeatureID]) bool {
	return i.lookup(barrier).Intersects(offered)
}

// Len returns the number of barriers with at least one mapped feature.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.features)
}

func (i *Index) lookup(b model.BarrierID) sets.Set[model.FeatureID] {
	if i == nil {
		return nil
	}
	return i.features[b]
}
