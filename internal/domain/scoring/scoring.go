// Package scoring computes the compatibility bonus awarded on top of the
// eligibility floor to a job that cleared every gate.
package scoring

import (
	"github.com/okian/pcdmatch/internal/domain/model"
)

// Point allocation. The floor is split between the accessibility and
// education gates; the three bonuses add up to MaxScore - EligibilityFloor.
const (
	AccessibilityPoints = 50.0
	EducationPoints     = 15.0
	EligibilityFloor    = AccessibilityPoints + EducationPoints

	AreaMax = 20.0

	LocalityMax               = 10.0
	LocalityStatePoints       = 5.0
	LocalityUnknownCityPoints = 2.0

	AvailabilityMax            = 5.0
	AvailabilityScopePoints    = 3.0
	AvailabilityTravelPoints   = 2.0
	AvailabilityRelocatePoints = 1.0

	CompatibilityMax = AreaMax + LocalityMax + AvailabilityMax
	MaxScore         = EligibilityFloor + CompatibilityMax
)

// Breakdown is the explainable composition of a match score.
type Breakdown struct {
	Accessibility float64
	Education     float64
	Area          float64
	Locality      float64
	Availability  float64
	// Compatibility is Area + Locality + Availability.
	Compatibility float64
	// Total is the eligibility floor plus Compatibility.
	Total float64
}

// Scorer computes a Breakdown for a candidate/job pair that passed all gates.
type Scorer interface {
	Score(candidate model.CandidateProfile, job model.JobListing) Breakdown
}

// Option applies a configuration option to the CompatibilityScorer.
type Option func(*CompatibilityScorer)

// WithRemoteFullLocality controls whether fully remote jobs earn full
// locality points regardless of where the candidate lives.
func WithRemoteFullLocality(enabled bool) Option {
	return func(s *CompatibilityScorer) {
		s.remoteFullLocality = enabled
	}
}

// WithRelocationFullLocality controls whether candidates willing to relocate
// earn full locality points.
func WithRelocationFullLocality(enabled bool) Option {
	return func(s *CompatibilityScorer) {
		s.relocationFullLocality = enabled
	}
}

// CompatibilityScorer implements Scorer with fixed, bounded sub-scores.
type CompatibilityScorer struct {
	remoteFullLocality     bool
	relocationFullLocality bool
}

// NewCompatibilityScorer creates a scorer with configuration options.
func NewCompatibilityScorer(opts ...Option) *CompatibilityScorer {
	s := &CompatibilityScorer{
		remoteFullLocality:     true,
		relocationFullLocality: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the full breakdown. The caller is responsible for only
// scoring pairs that passed eligibility, coverage and education.
func (s *CompatibilityScorer) Score(c model.CandidateProfile, j model.JobListing) Breakdown {
	b := Breakdown{
		Accessibility: AccessibilityPoints,
		Education:     EducationPoints,
		Area:          s.area(c, j),
		Locality:      s.locality(c, j),
		Availability:  s.availability(c),
	}
	b.Compatibility = b.Area + b.Locality + b.Availability
	b.Total = EligibilityFloor + b.Compatibility
	return b
}

// area is binary: the job's field is among the candidate's fields, or not.
func (s *CompatibilityScorer) area(c model.CandidateProfile, j model.JobListing) float64 {
	if j.FieldOfStudy == nil {
		return 0
	}
	if c.FieldsOfStudy.Has(*j.FieldOfStudy) {
		return AreaMax
	}
	return 0
}

func (s *CompatibilityScorer) locality(c model.CandidateProfile, j model.JobListing) float64 {
	switch {
	case s.remoteFullLocality && j.Remote():
		return LocalityMax
	case c.Mobility.Scope.Broad():
		return LocalityMax
	case s.relocationFullLocality && c.Mobility.WillingToRelocate:
		return LocalityMax
	case c.Location.SameCity(j.Location):
		return LocalityMax
	case c.Location.SameState(j.Location):
		return LocalityStatePoints
	case j.Location.HasCity() && !c.Location.HasCity():
		// Weak credit for uncertainty, not a match.
		return LocalityUnknownCityPoints
	default:
		return 0
	}
}

func (s *CompatibilityScorer) availability(c model.CandidateProfile) float64 {
	points := 0.0
	if c.Mobility.Scope.Broad() {
		points += AvailabilityScopePoints
	}
	if c.Mobility.WillingToTravel {
		points += AvailabilityTravelPoints
	}
	if c.Mobility.WillingToRelocate {
		points += AvailabilityRelocatePoints
	}
	return min(points, AvailabilityMax)
}
