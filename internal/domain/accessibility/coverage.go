package accessibility

import (
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/internal/domain/sets"
)

// Coverage is the outcome of checking a job's features against a candidate's barriers.
type Coverage struct {
	Compatible bool
	Ratio      float64
	Total      int
	Covered    int
	// Uncovered lists the barriers no offered feature mitigates, ascending.
	Uncovered []model.BarrierID
}

// Evaluate checks that every barrier reported under the relevant subtypes is
// mitigated by at least one offered feature. Only full coverage is compatible.
// With no relevant barriers the pair is trivially compatible.
func Evaluate(
	barriersBySubtype map[model.SubtypeID]sets.Set[model.BarrierID],
	relevant sets.Set[model.SubtypeID],
	offered sets.Set[model.FeatureID],
	index *Index,
) Coverage {
	barriers := sets.New[model.BarrierID](0)
	for subtype := range relevant {
		for b := range barriersBySubtype[subtype] {
			barriers.Add(b)
		}
	}
	if barriers.Empty() {
		return Coverage{Compatible: true, Ratio: 1}
	}

	c := Coverage{Total: barriers.Len()}
	for _, b := range sets.Sorted(barriers) {
		if index.Mitigates(b, offered) {
			c.Covered++
			continue
		}
		c.Uncovered = append(c.Uncovered, b)
	}
	c.Ratio = float64(c.Covered) / float64(c.Total)
	c.Compatible = c.Covered == c.Total
	return c
}
