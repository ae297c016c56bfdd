// Package eligibility decides whether a job's subtype restriction admits a candidate.
package eligibility

import (
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/internal/domain/sets"
)

// IsEligible reports whether a candidate with the given subtypes may match a
// job accepting the given subtypes. A job with no accepted subtypes is open
// to everyone; a restricted job requires at least one shared subtype, so a
// candidate without subtypes never passes it.
func IsEligible(candidate, accepted sets.Set[model.SubtypeID]) bool {
	if accepted.Empty() {
		return true
	}
	return candidate.Intersects(accepted)
}

// EffectiveSubtypes returns the subtypes the engine treats as the candidate's.
// Normally these are the declared subtypes. With fallback enabled and no
// declarations, the subtypes under which barriers were reported stand in for
// them (barrier subtype fallback).
func EffectiveSubtypes(p model.CandidateProfile, fallback bool) sets.Set[model.SubtypeID] {
	if !p.Subtypes.Empty() || !fallback {
		return p.Subtypes.Clone()
	}
	out := sets.New[model.SubtypeID](len(p.BarriersBySubtype))
	for subtype, barriers := range p.BarriersBySubtype {
		if !barriers.Empty() {
			out.Add(subtype)
		}
	}
	return out
}

// RelevantSubtypes returns the candidate subtypes whose barriers count for a
// job: the shared ones, or all of them when the job is unrestricted.
func RelevantSubtypes(candidate, accepted sets.Set[model.SubtypeID]) sets.Set[model.SubtypeID] {
	if accepted.Empty() {
		return candidate.Clone()
	}
	return candidate.Intersection(accepted)
}
