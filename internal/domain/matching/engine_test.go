package matching_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/pcdmatch/internal/apperr"
	"github.com/okian/pcdmatch/internal/domain/accessibility"
	"github.com/okian/pcdmatch/internal/domain/education"
	"github.com/okian/pcdmatch/internal/domain/matching"
	"github.com/okian/pcdmatch/internal/domain/model"
	"github.com/okian/pcdmatch/internal/domain/scoring"
	"github.com/okian/pcdmatch/internal/domain/sets"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	s1 model.SubtypeID = 1
	s2 model.SubtypeID = 2
	b1 model.BarrierID = 11
	b2 model.BarrierID = 12
	f1 model.FeatureID = 21
	f2 model.FeatureID = 22
)

type fakeStore struct {
	profiles    map[model.CandidateID]model.CandidateProfile
	jobs        []model.JobListing
	mappings    []accessibility.Mapping
	profileErr  error
	catalogErr  error
	mappingErr  error
	mappingHits int
}

func (f *fakeStore) LoadCandidateProfile(_ context.Context, id model.CandidateID) (model.CandidateProfile, error) {
	if f.profileErr != nil {
		return model.CandidateProfile{}, f.profileErr
	}
	p, ok := f.profiles[id]
	if !ok {
		return model.CandidateProfile{}, apperr.NewKind("fake.LoadCandidateProfile", apperr.ErrNotFound)
	}
	return p, nil
}

func (f *fakeStore) LoadPublishedJobs(context.Context) ([]model.JobListing, error) {
	return f.jobs, f.catalogErr
}

func (f *fakeStore) LoadBarrierAccessibilityMappings(_ context.Context, ids []model.BarrierID) ([]accessibility.Mapping, error) {
	f.mappingHits++
	if f.mappingErr != nil {
		return nil, f.mappingErr
	}
	wanted := sets.Of(ids...)
	var out []accessibility.Mapping
	for _, m := range f.mappings {
		if wanted.Has(m.Barrier) {
			out = append(out, m)
		}
	}
	return out, nil
}

func field(id model.FieldOfStudyID) *model.FieldOfStudyID { return &id }

// candidate declares S1 with barrier B1, has secondary education and lives in Recife.
func candidate() model.CandidateProfile {
	return model.CandidateProfile{
		ID:                1,
		Active:            true,
		Education:         education.Secondary,
		Location:          model.Location{City: "Recife", State: "PE"},
		Subtypes:          sets.Of(s1),
		BarriersBySubtype: map[model.SubtypeID]sets.Set[model.BarrierID]{s1: sets.Of(b1)},
		FieldsOfStudy:     sets.Of[model.FieldOfStudyID](7),
	}
}

func job(id model.JobID, accepted []model.SubtypeID, offered []model.FeatureID) model.JobListing {
	return model.JobListing{
		ID:               id,
		Title:            fmt.Sprintf("job %d", id),
		Status:           model.StatusPublished,
		MinEducation:     education.Secondary,
		AcceptedSubtypes: sets.Of(accepted...),
		OfferedFeatures:  sets.Of(offered...),
	}
}

func newStore(jobs ...model.JobListing) *fakeStore {
	return &fakeStore{
		profiles: map[model.CandidateID]model.CandidateProfile{1: candidate()},
		jobs:     jobs,
		mappings: []accessibility.Mapping{{Barrier: b1, Feature: f1}},
	}
}

func newEngine(store *fakeStore, opts ...matching.Option) *matching.Engine {
	return matching.New(store, store, store, opts...)
}

func ids(results []matching.Result) []model.JobID {
	out := make([]model.JobID, len(results))
	for i, r := range results {
		out[i] = r.Job.ID
	}
	return out
}

func TestMatchForCandidate_EndToEnd(t *testing.T) {
	ctx := context.Background()

	Convey("Given the only barrier is mitigated by an offered feature", t, func() {
		store := newStore(job(100, []model.SubtypeID{s1}, []model.FeatureID{f1}))
		results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)

		So(err, ShouldBeNil)
		So(results, ShouldHaveLength, 1)
		So(results[0].Job.ID, ShouldEqual, 100)
		So(results[0].Coverage.Ratio, ShouldEqual, 1.0)
		So(results[0].Coverage.Compatible, ShouldBeTrue)
		So(results[0].EducationPassed, ShouldBeTrue)
		So(results[0].Breakdown.Total, ShouldBeGreaterThanOrEqualTo, scoring.EligibilityFloor)
	})

	Convey("Given the job offers an unrelated feature", t, func() {
		store := newStore(job(100, []model.SubtypeID{s1}, []model.FeatureID{f2}))
		results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)

		So(err, ShouldBeNil)
		So(results, ShouldBeEmpty)
	})

	Convey("Given a candidate without subtypes meets a restricted job", t, func() {
		store := newStore(job(100, []model.SubtypeID{s1}, []model.FeatureID{f1}))
		p := candidate()
		p.Subtypes = nil
		p.BarriersBySubtype = nil
		store.profiles[1] = p

		results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)
		So(err, ShouldBeNil)
		So(results, ShouldBeEmpty)
	})

	Convey("Given secondary education against a higher education minimum", t, func() {
		j := job(100, []model.SubtypeID{s1}, []model.FeatureID{f1})
		j.MinEducation = education.Higher
		store := newStore(j)

		results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)
		So(err, ShouldBeNil)
		So(results, ShouldBeEmpty)
	})

	Convey("Given two passing jobs, one matching field and city", t, func() {
		y := job(200, nil, []model.FeatureID{f1})
		y.FieldOfStudy = field(8)
		y.Location = model.Location{City: "Manaus", State: "AM"}
		x := job(300, nil, []model.FeatureID{f1})
		x.FieldOfStudy = field(7)
		x.Location = model.Location{City: "Recife", State: "PE"}
		store := newStore(y, x)

		results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)
		So(err, ShouldBeNil)
		So(ids(results), ShouldResemble, []model.JobID{300, 200})
		So(results[0].Breakdown.Total, ShouldBeGreaterThan, results[1].Breakdown.Total)
	})
}

func TestProperties(t *testing.T) {
	ctx := context.Background()

	Convey("Given an unrestricted job", t, func() {
		open := job(100, nil, []model.FeatureID{f1})

		Convey("Then a candidate without subtypes or barriers is included", func() {
			store := newStore(open)
			p := candidate()
			p.Subtypes = nil
			p.BarriersBySubtype = nil
			store.profiles[1] = p

			results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 1)
			So(results[0].Coverage.Ratio, ShouldEqual, 1.0)
		})

		Convey("Then barriers filed under any subtype still need coverage", func() {
			store := newStore(open)
			p := candidate()
			p.BarriersBySubtype[s2] = sets.Of(b2)
			store.profiles[1] = p
			store.mappings = append(store.mappings, accessibility.Mapping{Barrier: b2, Feature: f2})

			results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)
			So(err, ShouldBeNil)
			So(results, ShouldBeEmpty)
		})
	})

	Convey("Given a job restricted to a subtype the candidate lacks", t, func() {
		store := newStore(job(100, []model.SubtypeID{s2}, []model.FeatureID{f1}))
		results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)
		So(err, ShouldBeNil)
		So(results, ShouldBeEmpty)
	})

	Convey("Given a restricted job", t, func() {
		Convey("When the candidate's barrier under another subtype is uncovered", func() {
			store := newStore(job(100, []model.SubtypeID{s1}, []model.FeatureID{f1}))
			p := candidate()
			p.Subtypes.Add(s2)
			p.BarriersBySubtype[s2] = sets.Of(b2)
			store.profiles[1] = p

			Convey("Then only barriers of shared subtypes count", func() {
				results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)
				So(err, ShouldBeNil)
				So(results, ShouldHaveLength, 1)
				So(results[0].Coverage.Total, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a barrier without any mapping", t, func() {
		store := newStore(job(100, nil, []model.FeatureID{f1, f2}))
		store.mappings = nil

		Convey("Then no job is compatible", func() {
			results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)
			So(err, ShouldBeNil)
			So(results, ShouldBeEmpty)
		})
	})

	Convey("Given a catalog of varied jobs", t, func() {
		var jobs []model.JobListing
		for i := 1; i <= 12; i++ {
			j := job(model.JobID(i), nil, []model.FeatureID{f1})
			if i%2 == 0 {
				j.FieldOfStudy = field(7)
			}
			if i%3 == 0 {
				j.Location = model.Location{City: "Recife", State: "PE"}
			}
			if i%4 == 1 {
				j.Location = model.Location{City: "Olinda", State: "PE"}
			}
			if i%5 == 0 {
				j.OfferedFeatures = sets.Of(f2)
			}
			jobs = append(jobs, j)
		}
		store := newStore(jobs...)
		engine := newEngine(store)

		Convey("Then every included total lies in the score range and results are sorted", func() {
			results, err := engine.MatchForCandidate(ctx, 1, 0)
			So(err, ShouldBeNil)
			So(results, ShouldNotBeEmpty)
			for i, r := range results {
				So(r.Breakdown.Total, ShouldBeBetweenOrEqual, scoring.EligibilityFloor, scoring.MaxScore)
				if i > 0 {
					So(r.Breakdown.Total, ShouldBeLessThanOrEqualTo, results[i-1].Breakdown.Total)
				}
			}
		})

		Convey("Then raising the threshold never grows the result", func() {
			prev := len(jobs) + 1
			for _, th := range []float64{0, 0.5, 0.65, 0.7, 0.75, 0.8, 0.9, 0.95, 1} {
				results, err := engine.MatchForCandidate(ctx, 1, th)
				So(err, ShouldBeNil)
				So(len(results), ShouldBeLessThanOrEqualTo, prev)
				for _, r := range results {
					So(r.Breakdown.Total, ShouldBeGreaterThanOrEqualTo, th*scoring.MaxScore-1e-9)
				}
				prev = len(results)
			}
		})

		Convey("Then a threshold equal to a score keeps that score", func() {
			results, err := engine.MatchForCandidate(ctx, 1, 0.7)
			So(err, ShouldBeNil)
			totals := make([]float64, len(results))
			for i, r := range results {
				totals[i] = r.Breakdown.Total
			}
			So(totals, ShouldContain, 70.0)
		})

		Convey("Then parallel evaluation returns the same ranking", func() {
			sequential, err := engine.MatchForCandidate(ctx, 1, 0)
			So(err, ShouldBeNil)
			parallel, err := newEngine(store, matching.WithWorkerCount(4)).MatchForCandidate(ctx, 1, 0)
			So(err, ShouldBeNil)
			So(ids(parallel), ShouldResemble, ids(sequential))
		})

		Convey("Then equal scores keep catalog order", func() {
			results, err := engine.MatchForCandidate(ctx, 1, 0)
			So(err, ShouldBeNil)
			for i := 1; i < len(results); i++ {
				if results[i].Breakdown.Total == results[i-1].Breakdown.Total {
					So(results[i].Job.ID, ShouldBeGreaterThan, results[i-1].Job.ID)
				}
			}
		})
	})

	Convey("Given unpublished and id-less jobs", t, func() {
		draft := job(100, nil, []model.FeatureID{f1})
		draft.Status = "draft"
		store := newStore(draft, job(0, nil, []model.FeatureID{f1}), job(101, nil, []model.FeatureID{f1}))

		results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)
		So(err, ShouldBeNil)
		So(ids(results), ShouldResemble, []model.JobID{101})
	})

	Convey("Given an empty catalog", t, func() {
		store := newStore()
		results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)

		So(err, ShouldBeNil)
		So(results, ShouldBeEmpty)
		So(store.mappingHits, ShouldEqual, 0)
	})
}

func TestSubtypeFallback(t *testing.T) {
	ctx := context.Background()

	Convey("Given a candidate with barriers under S1 but no declared subtypes", t, func() {
		store := newStore(job(100, []model.SubtypeID{s1}, []model.FeatureID{f1}))
		p := candidate()
		p.Subtypes = nil
		store.profiles[1] = p

		Convey("When the fallback is on", func() {
			results, err := newEngine(store).MatchForCandidate(ctx, 1, 0)
			So(err, ShouldBeNil)
			So(results, ShouldHaveLength, 1)
		})

		Convey("When the fallback is off", func() {
			results, err := newEngine(store, matching.WithSubtypeFallback(false)).MatchForCandidate(ctx, 1, 0)
			So(err, ShouldBeNil)
			So(results, ShouldBeEmpty)
		})
	})
}

func TestErrors(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine", t, func() {
		store := newStore(job(100, nil, []model.FeatureID{f1}))
		engine := newEngine(store)

		Convey("When the candidate id is not positive", func() {
			_, err := engine.MatchForCandidate(ctx, 0, 0.5)
			So(errors.Is(err, apperr.ErrValidation), ShouldBeTrue)
			So(errors.Is(err, matching.ErrInvalidCandidateID), ShouldBeTrue)
		})

		Convey("When the threshold is out of range", func() {
			for _, th := range []float64{-0.1, 1.01} {
				_, err := engine.MatchForCandidate(ctx, 1, th)
				So(errors.Is(err, apperr.ErrValidation), ShouldBeTrue)
				So(errors.Is(err, matching.ErrInvalidThreshold), ShouldBeTrue)
			}
		})

		Convey("When the candidate does not exist", func() {
			_, err := engine.MatchForCandidate(ctx, 42, 0.5)
			So(apperr.KindOf(err), ShouldEqual, apperr.ErrNotFound)
		})

		Convey("When the candidate is inactive", func() {
			p := candidate()
			p.Active = false
			store.profiles[1] = p
			_, err := engine.MatchForCandidate(ctx, 1, 0.5)
			So(apperr.KindOf(err), ShouldEqual, apperr.ErrForbidden)
			So(errors.Is(err, matching.ErrInactiveCandidate), ShouldBeTrue)
		})

		Convey("When the profile store fails", func() {
			store.profileErr = errors.New("connection refused")
			_, err := engine.MatchForCandidate(ctx, 1, 0.5)
			So(apperr.KindOf(err), ShouldEqual, apperr.ErrDependency)
		})

		Convey("When the catalog fails", func() {
			store.catalogErr = errors.New("timeout")
			_, err := engine.MatchForCandidate(ctx, 1, 0.5)
			So(apperr.KindOf(err), ShouldEqual, apperr.ErrDependency)
		})

		Convey("When the mapping lookup fails", func() {
			store.mappingErr = errors.New("timeout")
			_, err := engine.MatchForCandidate(ctx, 1, 0.5)
			So(apperr.KindOf(err), ShouldEqual, apperr.ErrDependency)
			So(store.mappingHits, ShouldEqual, 1)
		})
	})
}

func TestEvaluate(t *testing.T) {
	Convey("Given a single pair", t, func() {
		engine := newEngine(newStore())
		index := accessibility.NewIndex([]accessibility.Mapping{{Barrier: b1, Feature: f1}})

		Convey("Then each failing gate reports its own stage", func() {
			_, stage := engine.Evaluate(candidate(), job(1, []model.SubtypeID{s2}, nil), index)
			So(stage, ShouldEqual, matching.StageEligibility)

			_, stage = engine.Evaluate(candidate(), job(1, nil, []model.FeatureID{f2}), index)
			So(stage, ShouldEqual, matching.StageCoverage)

			j := job(1, nil, []model.FeatureID{f1})
			j.MinEducation = education.Doctorate
			res, stage := engine.Evaluate(candidate(), j, index)
			So(stage, ShouldEqual, matching.StageEducation)
			So(res.Coverage.Compatible, ShouldBeTrue)
			So(res.EducationPassed, ShouldBeFalse)
		})

		Convey("Then a job without a minimum passes an unknown candidate level", func() {
			p := candidate()
			p.Education = education.Unknown
			j := job(1, nil, []model.FeatureID{f1})
			j.MinEducation = education.Unknown
			_, stage := engine.Evaluate(p, j, index)
			So(stage, ShouldEqual, matching.StageIncluded)
		})

		Convey("Then a job minimum no level matches excludes every candidate", func() {
			for _, label := range []string{"Nível Astronauta", "curso livre avançado"} {
				j := job(1, nil, []model.FeatureID{f1})
				j.MinEducationLabel = label
				j.MinEducation = education.Parse(label)

				for _, level := range []education.Level{education.Unknown, education.IncompletePrimary, education.Doctorate} {
					p := candidate()
					p.Education = level
					res, stage := engine.Evaluate(p, j, index)
					So(stage, ShouldEqual, matching.StageEducation)
					So(res.EducationPassed, ShouldBeFalse)
				}
			}
		})

		Convey("Then Portuguese minimum labels are enforced", func() {
			j := job(1, nil, []model.FeatureID{f1})
			j.MinEducationLabel = "Ensino Superior Completo"
			j.MinEducation = education.Parse(j.MinEducationLabel)

			p := candidate()
			p.Education = education.IncompletePrimary
			_, stage := engine.Evaluate(p, j, index)
			So(stage, ShouldEqual, matching.StageEducation)

			p.Education = education.Parse("Graduação completa")
			_, stage = engine.Evaluate(p, j, index)
			So(stage, ShouldEqual, matching.StageIncluded)
		})

		Convey("Then a scorer outside the range is rejected at scoring", func() {
			broken := newEngine(newStore(), matching.WithScorer(badScorer{}))
			_, stage := broken.Evaluate(candidate(), job(1, nil, []model.FeatureID{f1}), index)
			So(stage, ShouldEqual, matching.StageScoring)
		})

		Convey("Then stages have names", func() {
			So(matching.StageCoverage.String(), ShouldEqual, "coverage")
			So(matching.StageIncluded.String(), ShouldEqual, "included")
			So(matching.Stage(99).String(), ShouldEqual, "unknown")
		})
	})
}

type badScorer struct{}

func (badScorer) Score(model.CandidateProfile, model.JobListing) scoring.Breakdown {
	return scoring.Breakdown{Total: 10}
}
