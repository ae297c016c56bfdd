// Package matching ranks published jobs for a candidate. Each job goes through
// eligibility, accessibility coverage, the education gate and scoring, in that
// order; a job failing any gate is left out of the result.
package matching

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"
	"time"

	"github.com/okian/pcdmatch/internal/apperr"
	"github.com/okian/pcdmatch/internal/domain/accessibility"
	"github.com/okian/pcdmatch/internal/domain/education"
	"github.com/okian/pcdmatch/internal/domain/eligibility"
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/internal/domain/scoring"
	"github.com/okian/pcdmatch/internal/domain/sets"
	"github.com/okian/pcdmatch/pkg/logger"
	"github.com/okian/pcdmatch/pkg/metrics"
)

// ProfileLoader loads a candidate snapshot. A missing candidate must be
// reported with an error matching apperr.ErrNotFound.
type ProfileLoader interface {
	LoadCandidateProfile(ctx context.Context, id model.CandidateID) (model.CandidateProfile, error)
}

// CatalogLoader loads the published job catalog.
type CatalogLoader interface {
	LoadPublishedJobs(ctx context.Context) ([]model.JobListing, error)
}

// MappingLoader loads barrier to feature mappings for the given barriers.
type MappingLoader interface {
	LoadBarrierAccessibilityMappings(ctx context.Context, barriers []model.BarrierID) ([]accessibility.Mapping, error)
}

// Result is an included job with the evidence behind its score.
type Result struct {
	Job             model.JobListing
	Coverage        accessibility.Coverage
	EducationPassed bool
	Breakdown       scoring.Breakdown
}

// Engine is safe for concurrent use; it holds no per-request state.
type Engine struct {
	profiles ProfileLoader
	catalog  CatalogLoader
	mappings MappingLoader

	scorer          scoring.Scorer
	workers         int
	subtypeFallback bool
	logger          logger.Logger
}

// New creates an engine over the three collaborators.
func New(profiles ProfileLoader, catalog CatalogLoader, mappings MappingLoader, opts ...Option) *Engine {
	e := &Engine{
		profiles:        profiles,
		catalog:         catalog,
		mappings:        mappings,
		scorer:          scoring.NewCompatibilityScorer(),
		workers:         1,
		subtypeFallback: true,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MatchForCandidate returns the jobs the candidate matches, best first,
// keeping only those whose total reaches threshold * MaxScore.
func (e *Engine) MatchForCandidate(ctx context.Context, id model.CandidateID, threshold float64) ([]Result, error) {
	const op = "matching.MatchForCandidate"
	start := time.Now()

	results, err := e.match(ctx, id, threshold)
	metrics.RecordMatchDuration(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordMatchRequest(outcome(err))
	if err != nil {
		return nil, apperr.Wrap(op, err)
	}

	e.logger.Info(ctx, "matched candidate",
		logger.Int64("candidate_id", int64(id)),
		logger.Float64("threshold", threshold),
		logger.Int("matches", len(results)),
		logger.Duration("took", time.Since(start)),
	)
	return results, nil
}

func (e *Engine) match(ctx context.Context, id model.CandidateID, threshold float64) ([]Result, error) {
	if id <= 0 {
		return nil, apperr.WrapKind("validate", apperr.ErrValidation, ErrInvalidCandidateID)
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, apperr.WrapKind("validate", apperr.ErrValidation, ErrInvalidThreshold)
	}

	profile, err := e.profiles.LoadCandidateProfile(ctx, id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return nil, apperr.WrapKind("load profile", apperr.ErrNotFound, err)
	case err != nil:
		metrics.RecordDependencyError("profile")
		return nil, apperr.WrapKind("load profile", apperr.ErrDependency, err)
	}
	if !profile.Active {
		return nil, apperr.WrapKind("load profile", apperr.ErrForbidden, ErrInactiveCandidate)
	}

	jobs, err := e.catalog.LoadPublishedJobs(ctx)
	if err != nil {
		metrics.RecordDependencyError("catalog")
		return nil, apperr.WrapKind("load catalog", apperr.ErrDependency, err)
	}
	metrics.UpdatePublishedJobs(len(jobs))

	index := accessibility.NewIndex(nil)
	if barriers := sets.Sorted(profile.AllBarriers()); len(barriers) > 0 && len(jobs) > 0 {
		mappings, err := e.mappings.LoadBarrierAccessibilityMappings(ctx, barriers)
		if err != nil {
			metrics.RecordDependencyError("mappings")
			return nil, apperr.WrapKind("load mappings", apperr.ErrDependency, err)
		}
		index = accessibility.NewIndex(mappings)
	}

	results := e.rank(ctx, profile, jobs, index)
	return applyThreshold(results, threshold), nil
}

// rank evaluates every job and returns the included ones sorted by total
// score, descending. Ties keep catalog order.
func (e *Engine) rank(ctx context.Context, p model.CandidateProfile, jobs []model.JobListing, index *accessibility.Index) []Result {
	subtypes := eligibility.EffectiveSubtypes(p, e.subtypeFallback)
	evaluated := e.evaluateAll(p, subtypes, jobs, index)
	metrics.RecordJobsEvaluated(len(jobs))

	out := make([]Result, 0, len(evaluated))
	for i, ev := range evaluated {
		if ev.stage != StageIncluded {
			metrics.RecordJobExcluded(ev.stage.String())
			e.logger.Debug(ctx, "job excluded",
				logger.Int64("candidate_id", int64(p.ID)),
				logger.Int64("job_id", int64(jobs[i].ID)),
				logger.String("stage", ev.stage.String()),
			)
			continue
		}
		metrics.RecordJobIncluded()
		metrics.RecordCoverageRatio(ev.result.Coverage.Ratio)
		metrics.RecordMatchScore(ev.result.Breakdown.Total)
		out = append(out, ev.result)
	}

	slices.SortStableFunc(out, func(a, b Result) int {
		return cmp.Compare(b.Breakdown.Total, a.Breakdown.Total)
	})
	return out
}

// Evaluate runs a single candidate/job pair through every stage. It returns
// the stage the job stopped at; the Result is only complete when that stage
// is StageIncluded.
func (e *Engine) Evaluate(p model.CandidateProfile, job model.JobListing, index *accessibility.Index) (Result, Stage) {
	return e.evaluate(p, eligibility.EffectiveSubtypes(p, e.subtypeFallback), job, index)
}

func (e *Engine) evaluate(p model.CandidateProfile, subtypes sets.Set[model.SubtypeID], job model.JobListing, index *accessibility.Index) (Result, Stage) {
	res := Result{Job: job}

	if job.ID <= 0 || !job.Published() {
		return res, StageEligibility
	}
	if !eligibility.IsEligible(subtypes, job.AcceptedSubtypes) {
		return res, StageEligibility
	}

	res.Coverage = accessibility.Evaluate(p.BarriersBySubtype, relevantSubtypes(p, subtypes, job), job.OfferedFeatures, index)
	if !res.Coverage.Compatible {
		return res, StageCoverage
	}

	res.EducationPassed = education.Passes(p.Education, job.MinEducation)
	if !res.EducationPassed {
		return res, StageEducation
	}

	res.Breakdown = e.scorer.Score(p, job)
	if res.Breakdown.Total < scoring.EligibilityFloor || res.Breakdown.Total > scoring.MaxScore {
		return res, StageScoring
	}
	return res, StageIncluded
}

// relevantSubtypes picks the subtypes whose barriers must be covered. An
// unrestricted job also counts barriers filed under undeclared subtypes.
func relevantSubtypes(p model.CandidateProfile, subtypes sets.Set[model.SubtypeID], job model.JobListing) sets.Set[model.SubtypeID] {
	relevant := eligibility.RelevantSubtypes(subtypes, job.AcceptedSubtypes)
	if job.AcceptedSubtypes.Empty() {
		for subtype := range p.BarriersBySubtype {
			relevant.Add(subtype)
		}
	}
	return relevant
}

func applyThreshold(results []Result, threshold float64) []Result {
	// Rounded so 0.7 * 100 compares as 70.
	cutoff := math.Round(threshold*scoring.MaxScore*1e9) / 1e9
	out := results[:0]
	for _, r := range results {
		if r.Breakdown.Total >= cutoff {
			out = append(out, r)
		}
	}
	return out
}

func outcome(err error) string {
	switch apperr.KindOf(err) {
	case nil:
		if err != nil {
			return metrics.OutcomeDependency
		}
		return metrics.OutcomeOK
	case apperr.ErrValidation:
		return metrics.OutcomeValidation
	case apperr.ErrNotFound:
		return metrics.OutcomeNotFound
	case apperr.ErrForbidden:
		return metrics.OutcomeForbidden
	default:
		return metrics.OutcomeDependency
	}
}
