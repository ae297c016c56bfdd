package matching

// Stage is a step of the per-job evaluation. Evaluation stops at the first
// stage a job fails; StageIncluded means it passed every one.
type Stage int

// Evaluation stages in order.
const (
	StageEligibility Stage = iota
	StageCoverage
	StageEducation
	StageScoring
	StageIncluded
)

func (s Stage) String() string {
	switch s {
	case StageEligibility:
		return "eligibility"
	case StageCoverage:
		return "coverage"
	case StageEducation:
		return "education"
	case StageScoring:
		return "scoring"
	case StageIncluded:
		return "included"
	default:
		return "unknown"
	}
}
