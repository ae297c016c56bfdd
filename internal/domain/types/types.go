// Package types contains the records returned to API clients.
package types

import (
	"math"

	"github.com/okian/pcdmatch/internal/domain/matching"
)

// Breakdown is the per-component score of a match.
type Breakdown struct {
	Accessibility float64 `json:"accessibility"`
	Education     float64 `json:"education"`
	Area          float64 `json:"area"`
	Locality      float64 `json:"locality"`
	Availability  float64 `json:"availability"`
}

// AccessibilityMatch summarises barrier coverage for a match.
type AccessibilityMatch struct {
	IsCompatible    bool    `json:"isCompatible"`
	Coverage        float64 `json:"coverage"`
	TotalBarriers   int     `json:"totalBarriers"`
	CoveredBarriers int     `json:"coveredBarriers"`
}

// Match is one ranked job for a candidate.
type Match struct {
	JobID              int64              `json:"jobId"`
	Title              string             `json:"title"`
	Company            string             `json:"company"`
	City               string             `json:"city"`
	State              string             `json:"state"`
	EmploymentType     string             `json:"employmentType"`
	WorkModel          string             `json:"workModel"`
	Location           string             `json:"location"`
	FieldOfStudy       *string            `json:"fieldOfStudy"`
	MinEducation       *string            `json:"minEducation"`
	Status             string             `json:"status"`
	MatchPercent       int                `json:"matchPercent"`
	Compatibility      float64            `json:"compatibility"`
	TotalScore         float64            `json:"totalScore"`
	Breakdown          Breakdown          `json:"breakdown"`
	AccessibilityMatch AccessibilityMatch `json:"accessibilityMatch"`
}

// FromResult builds the response record of an included job.
func FromResult(r matching.Result) Match {
	j := r.Job
	m := Match{
		JobID:          int64(j.ID),
		Title:          j.Title,
		Company:        j.Company,
		City:           j.Location.City,
		State:          j.Location.State,
		EmploymentType: j.EmploymentType,
		WorkModel:      j.WorkModel,
		Location:       j.Location.String(),
		Status:         j.Status,
		MatchPercent:   int(math.Round(r.Breakdown.Total)),
		Compatibility:  r.Breakdown.Compatibility,
		TotalScore:     r.Breakdown.Total,
		Breakdown: Breakdown{
			Accessibility: r.Breakdown.Accessibility,
			Education:     r.Breakdown.Education,
			Area:          r.Breakdown.Area,
			Locality:      r.Breakdown.Locality,
			Availability:  r.Breakdown.Availability,
		},
		AccessibilityMatch: AccessibilityMatch{
			IsCompatible:    r.Coverage.Compatible,
			Coverage:        r.Coverage.Ratio,
			TotalBarriers:   r.Coverage.Total,
			CoveredBarriers: r.Coverage.Covered,
		},
	}
	if j.FieldOfStudyName != "" {
		name := j.FieldOfStudyName
		m.FieldOfStudy = &name
	}
	switch {
	case j.MinEducationLabel != "":
		label := j.MinEducationLabel
		m.MinEducation = &label
	case j.MinEducation.Known():
		label := j.MinEducation.String()
		m.MinEducation = &label
	}
	return m
}

// FromResults converts an ordered result list, keeping its order. The
// returned slice is never nil so it encodes as an empty JSON array.
func FromResults(results []matching.Result) []Match {
	out := make([]Match, 0, len(results))
	for _, r := range results {
		out = append(out, FromResult(r))
	}
	return out
}
