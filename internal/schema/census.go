package schema

// Field names of the built-in census layout.
const (
	FieldAge                = "age"
	FieldHoursPerWeek       = "hours_per_week"
	FieldCapitalGain        = "capital_gain"
	FieldCapitalLoss        = "capital_loss"
	FieldWorkclassPrivate   = "workclass_private"
	FieldWorkclassSelfEmp   = "workclass_self_employed"
	FieldWorkclassGov       = "workclass_government"
	FieldWorkclassWithoutPy = "workclass_without_pay"
	FieldEducation          = "education"
	FieldSex                = "sex"
	FieldNativeCountry      = "native_country"
	FieldIncome             = "income"
)

// Census returns the schema of the cleaned census extract: continuous
// measurements, one-hot work-class indicators, and coded categories. Education
// is stored as the level scaled to [0,1] in steps of 1/8; the merge table below
// is the one the published dashboards use.
func Census() *Schema {
	indicator := mustMapping("indicator", []Bucket{
		{Key: "0", Label: "no", Codes: []float64{0}},
		{Key: "1", Label: "yes", Codes: []float64{1}},
	})
	education := mustMapping("education", []Bucket{
		{Key: "B1", Label: "Elementary", Codes: []float64{0, 0.125}},
		{Key: "B2", Label: "Middle school", Codes: []float64{0.25}},
		{Key: "B3", Label: "High school", Codes: []float64{0.375, 0.5, 0.625}},
		{Key: "B4", Label: "Some college", Codes: []float64{0.75}},
		{Key: "B5", Label: "Bachelors", Codes: []float64{0.875}},
		{Key: "B6", Label: "Graduate", Codes: []float64{1}},
	})
	sex := mustMapping("sex", []Bucket{
		{Key: "F", Label: "female", Codes: []float64{0}},
		{Key: "M", Label: "male", Codes: []float64{1}},
	})
	country := mustMapping("country", []Bucket{
		{Key: "NA", Label: "North America", Codes: []float64{0, 1}},
		{Key: "LA", Label: "Latin America", Codes: []float64{2, 3, 4, 5, 6, 7, 8, 9}},
		{Key: "AS", Label: "Asia", Codes: []float64{10, 11, 12, 13, 14, 15}},
		{Key: "EU", Label: "Europe", Codes: []float64{16, 17, 18, 19, 20}},
		{Key: "OT", Label: "Other", Codes: []float64{21}},
	})
	income := mustMapping("income", []Bucket{
		{Key: "0", Label: "low", Codes: []float64{0}},
		{Key: "1", Label: "high", Codes: []float64{1}},
	})

	s, err := New([]FieldSpec{
		{Name: FieldAge, Role: Continuous},
		{Name: FieldWorkclassPrivate, Role: Indicator, Mapping: "indicator"},
		{Name: FieldWorkclassSelfEmp, Role: Indicator, Mapping: "indicator"},
		{Name: FieldWorkclassGov, Role: Indicator, Mapping: "indicator"},
		{Name: FieldWorkclassWithoutPy, Role: Indicator, Mapping: "indicator"},
		{Name: FieldEducation, Role: Categorical, Mapping: "education"},
		{Name: FieldSex, Role: Categorical, Mapping: "sex"},
		{Name: FieldNativeCountry, Role: Categorical, Mapping: "country"},
		{Name: FieldHoursPerWeek, Role: Continuous},
		{Name: FieldCapitalGain, Role: Continuous},
		{Name: FieldCapitalLoss, Role: Continuous},
		{Name: FieldIncome, Role: Categorical, Mapping: "income"},
	}, []*Mapping{indicator, education, sex, country, income})
	if err != nil {
		panic("schema: invalid census schema: " + err.Error())
	}
	return s
}

func mustMapping(name string, buckets []Bucket) *Mapping {
	m, err := NewMapping(name, buckets)
	if err != nil {
		panic("schema: " + err.Error())
	}
	return m
}
