package education_test

import (
	"testing"

	"github.com/okian/pcdmatch/internal/domain/education"
	. "github.com/smartystreets/goconvey/convey"
)

var allLevels = []education.Level{
	education.IncompletePrimary,
	education.Primary,
	education.Secondary,
	education.Technical,
	education.IncompleteHigher,
	education.Higher,
	education.Postgraduate,
	education.Masters,
	education.Doctorate,
}

func TestParse(t *testing.T) {
	Convey("Given stored education labels", t, func() {
		cases := map[string]education.Level{
			"secondary":                education.Secondary,
			"Secondary Complete":       education.Secondary,
			"higher-complete":          education.Higher,
			"superior_completo":        education.Higher,
			"Médio Completo":           education.Secondary,
			"pós graduação":            education.Postgraduate,
			" DOCTORATE ":              education.Doctorate,
			"incomplete_primary":       education.IncompletePrimary,
			"superior incompleto":      education.IncompleteHigher,
			"":                         education.Unknown,
			"   ":                      education.Unknown,
			"astronaut":                education.Unrecognised,
			"Ensino Superior Completo": education.Higher,
			"ensino medio completo":    education.Secondary,
			"Ensino Médio Incompleto":  education.Primary,
			"ensino_fundamental":       education.Primary,
			"Graduação completa":       education.Higher,
			"graduação incompleta":     education.IncompleteHigher,
		}

		Convey("Then each maps to its level", func() {
			for label, want := range cases {
				So(education.Parse(label), ShouldEqual, want)
			}
		})

		Convey("Then canonical keys round trip", func() {
			for _, l := range allLevels {
				So(education.Parse(l.String()), ShouldEqual, l)
			}
		})
	})
}

func TestPasses(t *testing.T) {
	Convey("Given the education gate", t, func() {
		Convey("Then it is reflexive for every level", func() {
			for _, l := range allLevels {
				So(education.Passes(l, l), ShouldBeTrue)
			}
		})

		Convey("Then raising the candidate level never turns a pass into a fail", func() {
			for _, job := range allLevels {
				passed := false
				for _, cand := range allLevels {
					ok := education.Passes(cand, job)
					if passed {
						So(ok, ShouldBeTrue)
					}
					passed = passed || ok
				}
			}
		})

		Convey("When the job has no minimum", func() {
			Convey("Then any candidate passes, even an unknown one", func() {
				So(education.Passes(education.Unknown, education.Unknown), ShouldBeTrue)
				So(education.Passes(education.Primary, education.Unknown), ShouldBeTrue)
			})
		})

		Convey("When the candidate level is unknown and the job has a minimum", func() {
			Convey("Then the gate fails closed", func() {
				So(education.Passes(education.Unknown, education.IncompletePrimary), ShouldBeFalse)
			})
		})

		Convey("When the job minimum is a label no level matches", func() {
			Convey("Then no candidate passes", func() {
				minimum := education.Parse("nível astronauta")
				So(minimum, ShouldEqual, education.Unrecognised)
				So(minimum.Known(), ShouldBeFalse)
				So(education.Passes(education.Doctorate, minimum), ShouldBeFalse)
				So(education.Passes(education.IncompletePrimary, minimum), ShouldBeFalse)
				So(education.Passes(education.Unknown, minimum), ShouldBeFalse)
			})
		})

		Convey("When the candidate label is unrecognised and the job has no minimum", func() {
			So(education.Passes(education.Unrecognised, education.Unknown), ShouldBeTrue)
		})

		Convey("When a secondary candidate applies to a higher-education job", func() {
			So(education.Passes(education.Parse("secondary complete"), education.Parse("higher complete")), ShouldBeFalse)
		})
	})
}
