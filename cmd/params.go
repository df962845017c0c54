package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/cohortlens/internal/cohort"
	"github.com/KaramelBytes/cohortlens/internal/explore"
	"github.com/KaramelBytes/cohortlens/internal/schema"
)

// Parameter flags shared by the analysis commands. Each command registers
// the subset it reads; values override config only when Changed.
var (
	parGroupField string
	parGroupA     string
	parGroupB     string
	parWorkclass  string
	parHoursMin   float64
	parHoursMax   float64
	parField      string
	parHeatmap    []string
	parProbField  string
	parThreshold  float64
	parAgeMin     float64
	parAgeMax     float64
	parNoAgeRange bool
	parPoints     int
	parPCAFields  []string
	parColor      string
	parShape      string
)

func addGroupFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&parGroupField, "group-field", "", "categorical field that defines the groups")
	f.StringVar(&parGroupA, "group-a", "", "group A as 'Name=code,code,...'")
	f.StringVar(&parGroupB, "group-b", "", "group B as 'Name=code,code,...'")
	f.StringVar(&parWorkclass, "workclass", "", "restrict both groups to one workclass indicator (e.g. workclass_private)")
	f.Float64Var(&parHoursMin, "hours-min", 0, "restrict both groups to hours_per_week >= value")
	f.Float64Var(&parHoursMax, "hours-max", 0, "restrict both groups to hours_per_week <= value")
}

func addDistributionFlags(c *cobra.Command) {
	c.Flags().StringVar(&parField, "field", "", "categorical field to compare")
	c.Flags().StringSliceVar(&parHeatmap, "heatmap", nil, "numeric fields averaged per bucket (comma-separated)")
}

func addProbabilityFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVar(&parProbField, "prob-field", "", "continuous field tested against the threshold")
	f.Float64Var(&parThreshold, "threshold", 0, "count values strictly above this threshold")
	f.Float64Var(&parAgeMin, "age-min", 0, "lower bound of the age range")
	f.Float64Var(&parAgeMax, "age-max", 0, "upper bound of the age range")
	f.BoolVar(&parNoAgeRange, "all-ages", false, "do not restrict by age")
	f.IntVar(&parPoints, "points", 0, "number of density curve samples")
}

func addProjectionFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringSliceVar(&parPCAFields, "fields", nil, "continuous fields to project (comma-separated)")
	f.StringVar(&parColor, "color", "", "field echoed per point for color")
	f.StringVar(&parShape, "shape", "", "field echoed per point for shape")
}

// resolveParams starts from the configured parameters and applies the flags
// the user set on c.
func resolveParams(c *cobra.Command) (explore.Params, error) {
	p := effectiveConfig().Explore
	f := c.Flags()
	changed := func(name string) bool { return f.Lookup(name) != nil && f.Changed(name) }

	if changed("group-field") {
		p.GroupField = parGroupField
	}
	if changed("group-a") {
		g, err := parseGroup(parGroupA)
		if err != nil {
			return p, fmt.Errorf("--group-a: %w", err)
		}
		p.GroupA = g
	}
	if changed("group-b") {
		g, err := parseGroup(parGroupB)
		if err != nil {
			return p, fmt.Errorf("--group-b: %w", err)
		}
		p.GroupB = g
	}
	if changed("workclass") {
		p.Workclass = nil
		if parWorkclass != "" {
			p.Workclass = &cohort.Exact{Field: parWorkclass, Value: 1}
		}
	}
	if changed("hours-min") || changed("hours-max") {
		h := cohort.Range{Field: schema.FieldHoursPerWeek, Min: 0, Max: 168}
		if p.Hours != nil {
			h = *p.Hours
		}
		if changed("hours-min") {
			h.Min = parHoursMin
		}
		if changed("hours-max") {
			h.Max = parHoursMax
		}
		p.Hours = &h
	}
	if changed("field") {
		p.DistributionField = parField
	}
	if changed("heatmap") {
		p.HeatmapFields = parHeatmap
	}
	if changed("prob-field") {
		p.ProbabilityField = parProbField
	}
	if changed("threshold") {
		p.Threshold = parThreshold
	}
	if changed("age-min") || changed("age-max") {
		r := cohort.Range{Field: schema.FieldAge, Min: 0, Max: 150}
		if p.AgeRange != nil {
			r = *p.AgeRange
		}
		if changed("age-min") {
			r.Min = parAgeMin
		}
		if changed("age-max") {
			r.Max = parAgeMax
		}
		p.AgeRange = &r
	}
	if changed("all-ages") && parNoAgeRange {
		p.AgeRange = nil
	}
	if changed("points") {
		p.DensityPoints = parPoints
	}
	if changed("fields") {
		p.ProjectionFields = parPCAFields
	}
	if changed("color") {
		p.ColorField = parColor
	}
	if changed("shape") {
		p.ShapeField = parShape
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid parameters: %w", err)
	}
	return p, nil
}

// parseGroup reads 'Name=v1,v2'. Values are category codes.
func parseGroup(s string) (explore.Group, error) {
	name, vals, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return explore.Group{}, fmt.Errorf("expected 'Name=code,...', got %q", s)
	}
	g := explore.Group{Name: name}
	for _, v := range strings.Split(vals, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return explore.Group{}, fmt.Errorf("invalid code %q", v)
		}
		g.Values = append(g.Values, x)
	}
	return g, nil
}
