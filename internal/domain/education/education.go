// Package education models educational attainment as a totally ordered level
// and implements the minimum-education gate.
package education

import "strings"

// Level is an ordinal education rank. Unknown sorts below every real level.
type Level int

// Unrecognised is a label that was present but matched no level. As a job
// minimum it cannot be satisfied.
const Unrecognised Level = -1

// Levels in ascending order.
const (
	Unknown Level = iota
	IncompletePrimary
	Primary
	Secondary
	Technical
	IncompleteHigher
	Higher
	Postgraduate
	Masters
	Doctorate
)

var names = map[Level]string{
	Unknown:           "",
	IncompletePrimary: "incomplete_primary",
	Primary:           "primary",
	Secondary:         "secondary",
	Technical:         "technical",
	IncompleteHigher:  "incomplete_higher",
	Higher:            "higher",
	Postgraduate:      "postgraduate",
	Masters:           "masters",
	Doctorate:         "doctorate",
}

// aliases maps normalised labels to levels. Portuguese labels are what the
// profile editor historically stored.
var aliases = map[string]Level{
	"incomplete_primary":     IncompletePrimary,
	"primary_incomplete":     IncompletePrimary,
	"fundamental_incompleto": IncompletePrimary,
	"primary":                Primary,
	"fundamental":            Primary,
	"fundamental_completo":   Primary,
	"secondary":              Secondary,
	"high_school":            Secondary,
	"medio_incompleto":       Primary,
	"medio":                  Secondary,
	"medio_completo":         Secondary,
	"technical":              Technical,
	"tecnico":                Technical,
	"tecnico_completo":       Technical,
	"incomplete_higher":      IncompleteHigher,
	"higher_incomplete":      IncompleteHigher,
	"superior_incompleto":    IncompleteHigher,
	"superior_incompleta":    IncompleteHigher,
	"graduacao_incompleta":   IncompleteHigher,
	"graduacao_incompleto":   IncompleteHigher,
	"higher":                 Higher,
	"bachelor":               Higher,
	"superior":               Higher,
	"superior_completo":      Higher,
	"graduacao":              Higher,
	"postgraduate":           Postgraduate,
	"pos_graduacao":          Postgraduate,
	"especializacao":         Postgraduate,
	"masters":                Masters,
	"master":                 Masters,
	"mestrado":               Masters,
	"doctorate":              Doctorate,
	"phd":                    Doctorate,
	"doutorado":              Doctorate,
}

var (
	accents     = strings.NewReplacer("-", "_", " ", "_", "á", "a", "à", "a", "â", "a", "ã", "a", "é", "e", "ê", "e", "í", "i", "ó", "o", "ô", "o", "õ", "o", "ú", "u", "ç", "c")
	completions = []string{"_complete", "_completo", "_completa"}
)

// Parse maps a stored label to a Level. Case, accents, surrounding spaces,
// hyphens, an "ensino" prefix and a trailing "complete" qualifier are
// ignored. An empty label is Unknown; any other unmatched label is
// Unrecognised.
func Parse(s string) Level {
	key := accents.Replace(strings.ToLower(strings.TrimSpace(s)))
	if key == "" {
		return Unknown
	}
	keys := []string{key}
	if trimmed, ok := strings.CutPrefix(key, "ensino_"); ok {
		keys = append(keys, trimmed)
	}
	for _, k := range keys {
		if l, ok := aliases[k]; ok {
			return l
		}
		for _, suffix := range completions {
			if trimmed, ok := strings.CutSuffix(k, suffix); ok {
				if l, ok := aliases[trimmed]; ok {
					return l
				}
			}
		}
	}
	return Unrecognised
}

// String returns the canonical key, or "" for Unknown and Unrecognised.
func (l Level) String() string {
	return names[l]
}

// Known reports whether l is a recognised level.
func (l Level) Known() bool {
	return l > Unknown && l <= Doctorate
}

// Passes reports whether a candidate at level candidate satisfies a job's
// minimum. Only a job without a minimum accepts everyone. An unrecognised
// minimum and an unknown candidate level both fail closed.
func Passes(candidate, jobMinimum Level) bool {
	if jobMinimum == Unknown {
		return true
	}
	if !jobMinimum.Known() || !candidate.Known() {
		return false
	}
	return candidate >= jobMinimum
}
