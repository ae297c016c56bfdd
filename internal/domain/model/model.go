// Package model contains the read-only snapshots the matching engine works on.
package model

import (
	"strings"

	"github.com/okian/pcdmatch/internal/domain/education"
	"github.com/okian/pcdmatch/internal/domain/sets"
)

// Identifier types. They are distinct so a barrier id can never be passed
// where a feature id is expected.
type (
	CandidateID    int64
	SubtypeID      int64
	BarrierID      int64
	FeatureID      int64
	FieldOfStudyID int64
	JobID          int64
)

// Job status and work model values stored by the job editor.
const (
	StatusPublished = "published"
	WorkModelRemote = "remote"
)

// Location is a city/state pair. Empty strings mean "unknown".
type Location struct {
	City  string
	State string
}

// HasCity reports whether a city is set.
func (l Location) HasCity() bool { return normalize(l.City) != "" }

// HasState reports whether a state is set.
func (l Location) HasState() bool { return normalize(l.State) != "" }

// SameCity reports whether both locations name the same city and their states
// do not contradict each other.
func (l Location) SameCity(o Location) bool {
	if !l.HasCity() || !o.HasCity() || normalize(l.City) != normalize(o.City) {
		return false
	}
	if l.HasState() && o.HasState() {
		return l.SameState(o)
	}
	return true
}

// SameState reports whether both locations name the same state.
func (l Location) SameState(o Location) bool {
	return l.HasState() && o.HasState() && normalize(l.State) == normalize(o.State)
}

// String renders "City - ST", falling back to whichever part is known.
func (l Location) String() string {
	city, state := strings.TrimSpace(l.City), strings.TrimSpace(l.State)
	switch {
	case city != "" && state != "":
		return city + " - " + state
	case city != "":
		return city
	default:
		return state
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Scope is how far from home a candidate is available to work.
type Scope int

// Availability scopes.
const (
	ScopeUnknown Scope = iota
	ScopeLocal
	ScopeRegional
	ScopeNational
	ScopeInternational
)

// ParseScope maps a stored availability label to a Scope.
func ParseScope(s string) Scope {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "city", "cidade":
		return ScopeLocal
	case "regional", "state", "estadual":
		return ScopeRegional
	case "national", "nationwide", "nacional":
		return ScopeNational
	case "international", "internacional":
		return ScopeInternational
	default:
		return ScopeUnknown
	}
}

// Broad reports whether the scope reaches beyond the candidate's own city.
func (s Scope) Broad() bool {
	return s == ScopeRegional || s == ScopeNational || s == ScopeInternational
}

// Mobility holds a candidate's relocation and travel preferences.
type Mobility struct {
	WillingToRelocate bool
	WillingToTravel   bool
	Scope             Scope
}

// CandidateProfile is an immutable snapshot of what the engine reads about a candidate.
type CandidateProfile struct {
	ID        CandidateID
	Active    bool
	Education education.Level
	Location  Location
	Mobility  Mobility

	// Subtypes are the declared disability subtypes.
	Subtypes sets.Set[SubtypeID]
	// BarriersBySubtype holds the barriers reported for each subtype.
	BarriersBySubtype map[SubtypeID]sets.Set[BarrierID]
	FieldsOfStudy     sets.Set[FieldOfStudyID]
}

// AllBarriers returns the union of barriers across every subtype.
func (p CandidateProfile) AllBarriers() sets.Set[BarrierID] {
	out := sets.New[BarrierID](0)
	for _, bs := range p.BarriersBySubtype {
		for b := range bs {
			out.Add(b)
		}
	}
	return out
}

// JobListing is an immutable snapshot of a job and the data shown next to a match.
type JobListing struct {
	ID                JobID
	Title             string
	Company           string
	Status            string
	MinEducation      education.Level
	MinEducationLabel string
	// FieldOfStudy is nil when the job does not target a field.
	FieldOfStudy     *FieldOfStudyID
	FieldOfStudyName string
	Location         Location
	EmploymentType   string
	WorkModel        string

	// AcceptedSubtypes is empty when the job is open to every subtype.
	AcceptedSubtypes sets.Set[SubtypeID]
	OfferedFeatures  sets.Set[FeatureID]
}

// Published reports whether the job can be matched.
func (j JobListing) Published() bool {
	return strings.EqualFold(strings.TrimSpace(j.Status), StatusPublished)
}

// Remote reports whether the job is fully remote.
func (j JobListing) Remote() bool {
	return strings.EqualFold(strings.TrimSpace(j.WorkModel), WorkModelRemote)
}
