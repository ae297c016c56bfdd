package seed

// Ids of the demo dataset referenced by tests and the seed command.
const (
	SubtypeDeafness   int64 = 1
	SubtypeLowVision  int64 = 2
	SubtypeParaplegia int64 = 3

	BarrierSpokenInstructions int64 = 11
	BarrierSmallPrint         int64 = 12
	BarrierStairs             int64 = 13

	FeatureInterpreter int64 = 21
	FeatureMagnifier   int64 = 22
	FeatureRamp        int64 = 23
	FeatureCaptions    int64 = 24

	FieldComputing int64 = 7
	FieldLaw       int64 = 8

	// CandidateAna has a declared subtype, a mapped barrier, a degree and a city.
	CandidateAna int64 = 1
	// CandidateBruno declared nothing about accessibility.
	CandidateBruno int64 = 2
	// CandidateCarla finished secondary school only.
	CandidateCarla int64 = 3
	// CandidateDavi is inactive.
	CandidateDavi int64 = 4

	// JobBackend fully covers Ana's barrier in her city and field.
	JobBackend int64 = 100
	// JobSupport covers Ana's barrier in another state and field.
	JobSupport int64 = 101
	// JobDataEntry offers only a feature unrelated to Ana's barrier.
	JobDataEntry int64 = 102
	// JobParalegal accepts a subtype nobody in the dataset declared.
	JobParalegal int64 = 103
	// JobDraft is not published.
	JobDraft int64 = 104
	// JobCallCenter is remote and asks for secondary school.
	JobCallCenter int64 = 105
)

// Demo returns the development dataset.
func Demo() Dataset {
	return Dataset{
		FieldsOfStudy: []Named{{FieldComputing, "Computing"}, {FieldLaw, "Law"}},
		Subtypes: []Subtype{
			{SubtypeDeafness, "Profound deafness", "hearing"},
			{SubtypeLowVision, "Low vision", "visual"},
			{SubtypeParaplegia, "Paraplegia", "physical"},
		},
		Barriers: []Named{
			{BarrierSpokenInstructions, "Spoken instructions"},
			{BarrierSmallPrint, "Small print"},
			{BarrierStairs, "Stairs"},
		},
		Accessibilities: []Named{
			{FeatureInterpreter, "Sign language interpreter"},
			{FeatureMagnifier, "Screen magnifier"},
			{FeatureRamp, "Access ramp"},
			{FeatureCaptions, "Live captions"},
		},
		Mappings: []Pair{
			{BarrierSpokenInstructions, FeatureInterpreter},
			{BarrierSpokenInstructions, FeatureCaptions},
			{BarrierSmallPrint, FeatureMagnifier},
			{BarrierStairs, FeatureRamp},
		},
		Companies: []Named{{1, "Acme"}, {2, "Globex"}},
		Candidates: []Candidate{
			{
				ID: CandidateAna, Name: "Ana", Education: "higher", City: "Recife", State: "PE",
				Travel: true, Scope: "local", Active: true,
				Subtypes: []int64{SubtypeDeafness},
				Barriers: []Pair{{SubtypeDeafness, BarrierSpokenInstructions}},
				Fields:   []int64{FieldComputing},
			},
			{
				ID: CandidateBruno, Name: "Bruno", Education: "higher", City: "Olinda", State: "PE",
				Active: true,
			},
			{
				ID: CandidateCarla, Name: "Carla", Education: "secondary", City: "Recife", State: "PE",
				Active:   true,
				Subtypes: []int64{SubtypeDeafness},
				Barriers: []Pair{{SubtypeDeafness, BarrierSpokenInstructions}},
			},
			{
				ID: CandidateDavi, Name: "Davi", Education: "higher", Active: false,
				Subtypes: []int64{SubtypeDeafness},
			},
		},
		Jobs: []Job{
			{
				ID: JobBackend, CompanyID: 1, Title: "Backend Developer", Status: "published",
				MinEducation: "higher", FieldOfStudyID: FieldComputing, City: "Recife", State: "PE",
				EmploymentType: "full_time", WorkModel: "hybrid",
				Subtypes: []int64{SubtypeDeafness}, Accessibilities: []int64{FeatureInterpreter},
			},
			{
				ID: JobSupport, CompanyID: 2, Title: "Support Analyst", Status: "published",
				MinEducation: "higher", FieldOfStudyID: FieldLaw, City: "São Paulo", State: "SP",
				EmploymentType: "full_time", WorkModel: "on_site",
				Subtypes: []int64{SubtypeDeafness}, Accessibilities: []int64{FeatureInterpreter},
			},
			{
				ID: JobDataEntry, CompanyID: 2, Title: "Data Entry", Status: "published",
				City: "Recife", State: "PE", WorkModel: "on_site",
				Subtypes: []int64{SubtypeDeafness}, Accessibilities: []int64{FeatureMagnifier},
			},
			{
				ID: JobParalegal, CompanyID: 1, Title: "Paralegal", Status: "published",
				FieldOfStudyID: FieldLaw, City: "Recife", State: "PE",
				Subtypes: []int64{SubtypeParaplegia}, Accessibilities: []int64{FeatureRamp},
			},
			{
				ID: JobDraft, CompanyID: 1, Title: "Draft role", Status: "draft",
				Subtypes: []int64{SubtypeDeafness}, Accessibilities: []int64{FeatureInterpreter},
			},
			{
				ID: JobCallCenter, CompanyID: 2, Title: "Call Center Agent", Status: "published",
				MinEducation: "secondary", WorkModel: "remote", EmploymentType: "part_time",
				Subtypes: []int64{SubtypeDeafness}, Accessibilities: []int64{FeatureCaptions},
			},
		},
	}
}
