package explore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/cohortlens/internal/cohort"
	"github.com/KaramelBytes/cohortlens/internal/probability"
	"github.com/KaramelBytes/cohortlens/internal/schema"
)

// Group names a set of category values of Params.GroupField.
type Group struct {
	Name   string    `json:"name" yaml:"name" mapstructure:"name"`
	Values []float64 `json:"values" yaml:"values" mapstructure:"values"`
}

// Params is the full parameter state of one exploration. Every computation
// reads its inputs from here; nothing is kept between runs.
type Params struct {
	// GroupField is the categorical field whose values define both groups.
	GroupField string `json:"group_field" yaml:"group_field" mapstructure:"group_field"`
	GroupA     Group  `json:"group_a" yaml:"group_a" mapstructure:"group_a"`
	GroupB     Group  `json:"group_b" yaml:"group_b" mapstructure:"group_b"`
	// Workclass narrows both groups to one indicator, e.g. workclass_private == 1.
	Workclass *cohort.Exact `json:"workclass,omitempty" yaml:"workclass,omitempty" mapstructure:"workclass"`
	// Hours narrows both groups to an inclusive hours_per_week range.
	Hours *cohort.Range `json:"hours,omitempty" yaml:"hours,omitempty" mapstructure:"hours"`

	DistributionField string   `json:"distribution_field" yaml:"distribution_field" mapstructure:"distribution_field"`
	HeatmapFields     []string `json:"heatmap_fields" yaml:"heatmap_fields" mapstructure:"heatmap_fields"`

	ProbabilityField string        `json:"probability_field" yaml:"probability_field" mapstructure:"probability_field"`
	AgeRange         *cohort.Range `json:"age_range,omitempty" yaml:"age_range,omitempty" mapstructure:"age_range"`
	Threshold        float64       `json:"threshold" yaml:"threshold" mapstructure:"threshold"`
	DensityPoints    int           `json:"density_points" yaml:"density_points" mapstructure:"density_points"`

	ProjectionFields []string `json:"projection_fields" yaml:"projection_fields" mapstructure:"projection_fields"`
	ColorField       string   `json:"color_field" yaml:"color_field" mapstructure:"color_field"`
	ShapeField       string   `json:"shape_field" yaml:"shape_field" mapstructure:"shape_field"`
}

// DefaultParams compares North America with Asia by education, asks how many
// work more than 40 hours a week across adult ages, and projects the four
// continuous census fields colored by income and shaped by sex.
func DefaultParams() Params {
	return Params{
		GroupField:        schema.FieldNativeCountry,
		GroupA:            Group{Name: "North America", Values: []float64{0, 1}},
		GroupB:            Group{Name: "Asia", Values: []float64{10, 11, 12, 13, 14, 15}},
		DistributionField: schema.FieldEducation,
		HeatmapFields:     []string{schema.FieldHoursPerWeek, schema.FieldAge},
		ProbabilityField:  schema.FieldHoursPerWeek,
		AgeRange:          &cohort.Range{Field: schema.FieldAge, Min: 17, Max: 90},
		Threshold:         40,
		DensityPoints:     probability.DefaultPoints,
		ProjectionFields: []string{
			schema.FieldAge, schema.FieldHoursPerWeek, schema.FieldCapitalGain, schema.FieldCapitalLoss,
		},
		ColorField: schema.FieldIncome,
		ShapeField: schema.FieldSex,
	}
}

// Validate checks parameter consistency that does not depend on a schema.
func (p Params) Validate() error {
	var errs []error
	if strings.TrimSpace(p.GroupField) == "" {
		errs = append(errs, errors.New("group_field is required"))
	}
	if p.GroupA.Name == "" || p.GroupB.Name == "" {
		errs = append(errs, errors.New("both groups need a name"))
	} else if p.GroupA.Name == p.GroupB.Name {
		errs = append(errs, fmt.Errorf("groups share the name %q", p.GroupA.Name))
	}
	if p.DistributionField == "" {
		errs = append(errs, errors.New("distribution_field is required"))
	}
	if p.ProbabilityField == "" {
		errs = append(errs, errors.New("probability_field is required"))
	}
	if p.Threshold < 0 {
		errs = append(errs, fmt.Errorf("threshold must be non-negative, got %g", p.Threshold))
	}
	if p.DensityPoints < 0 {
		errs = append(errs, fmt.Errorf("density_points must be non-negative, got %d", p.DensityPoints))
	}
	for _, r := range []struct {
		name string
		r    *cohort.Range
	}{{"hours", p.Hours}, {"age_range", p.AgeRange}} {
		if r.r != nil && r.r.Min > r.r.Max {
			errs = append(errs, fmt.Errorf("%s: min %g exceeds max %g", r.name, r.r.Min, r.r.Max))
		}
	}
	return errors.Join(errs...)
}

func (p Params) criteria(g Group) cohort.Criteria {
	c := cohort.Criteria{Name: g.Name, Field: p.GroupField, Allowed: g.Values, Exact: p.Workclass}
	if p.Hours != nil {
		h := *p.Hours
		if h.Field == "" {
			h.Field = schema.FieldHoursPerWeek
		}
		c.Ranges = append(c.Ranges, h)
	}
	return c
}
