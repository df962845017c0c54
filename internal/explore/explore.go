// Package explore runs the cohort comparison pipeline for one parameter
// state and renders the result for display.
package explore

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/KaramelBytes/cohortlens/internal/cohort"
	"github.com/KaramelBytes/cohortlens/internal/dataset"
	"github.com/KaramelBytes/cohortlens/internal/distribution"
	"github.com/KaramelBytes/cohortlens/internal/probability"
	"github.com/KaramelBytes/cohortlens/internal/projection"
	"github.com/KaramelBytes/cohortlens/internal/schema"
)

// Parts selects which computations Run performs.
type Parts uint8

const (
	PartDistribution Parts = 1 << iota
	PartHeatmap
	PartProbability
	PartProjection

	AllParts = PartDistribution | PartHeatmap | PartProbability | PartProjection

	// cohortParts need group A and group B selected.
	cohortParts = PartDistribution | PartHeatmap | PartProbability
)

// CohortSummary is the name and population of a selected group.
type CohortSummary struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Report collects the outputs of one run for the rendering layer. Sections
// that were not requested are nil; Cohorts is empty when no requested part
// compares the groups.
type Report struct {
	ID           string                   `json:"id"`
	Dataset      string                   `json:"dataset,omitempty"`
	Records      int                      `json:"records"`
	Params       Params                   `json:"params"`
	Cohorts      []CohortSummary          `json:"cohorts,omitempty"`
	Distribution *distribution.Comparison `json:"distribution,omitempty"`
	Heatmaps     []*distribution.Heatmap  `json:"heatmaps,omitempty"`
	Probability  []*probability.Result    `json:"probability,omitempty"`
	Projection   *projection.Projection   `json:"projection,omitempty"`
	Warnings     []string                 `json:"warnings,omitempty"`
}

// Cohorts selects group A and group B.
func Cohorts(ds *dataset.Dataset, p Params) (*cohort.Cohort, *cohort.Cohort, error) {
	a, err := cohort.Select(ds, p.criteria(p.GroupA))
	if err != nil {
		return nil, nil, err
	}
	b, err := cohort.Select(ds, p.criteria(p.GroupB))
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// Run computes the requested parts for p over ds. Groups are selected only
// when a requested part compares them, so a projection-only run does not
// depend on the group field. Recoverable conditions (empty groups, empty
// field selections) become report warnings.
func Run(ds *dataset.Dataset, p Params, parts Parts) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	rep := &Report{
		ID:      uuid.NewString(),
		Dataset: ds.Name,
		Records: ds.Len(),
		Params:  p,
	}
	var a, b *cohort.Cohort
	if parts&cohortParts != 0 {
		var err error
		if a, b, err = Cohorts(ds, p); err != nil {
			return nil, err
		}
		for _, c := range []*cohort.Cohort{a, b} {
			rep.Cohorts = append(rep.Cohorts, CohortSummary{Name: c.Name, Size: c.Len()})
			if c.Len() == 0 {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("group %q is empty; its figures are all 0", c.Name))
			}
		}
	}

	if parts&PartDistribution != 0 {
		da, err := distribution.Aggregate(a, p.DistributionField)
		if err != nil {
			return nil, err
		}
		db, err := distribution.Aggregate(b, p.DistributionField)
		if err != nil {
			return nil, err
		}
		if rep.Distribution, err = distribution.Compare(da, db); err != nil {
			return nil, err
		}
	}

	if parts&PartHeatmap != 0 {
		for _, c := range []*cohort.Cohort{a, b} {
			h, err := distribution.MeanByBucket(c, p.DistributionField, p.HeatmapFields)
			if errors.Is(err, schema.ErrNothingSelected) {
				rep.Warnings = append(rep.Warnings, "heatmap: no numeric fields selected")
				break
			}
			if err != nil {
				return nil, err
			}
			rep.Heatmaps = append(rep.Heatmaps, h)
		}
	}

	if parts&PartProbability != 0 {
		for _, c := range []*cohort.Cohort{a, b} {
			res, err := probability.Estimate(c, probability.Query{
				Field:     p.ProbabilityField,
				Threshold: p.Threshold,
				Range:     p.AgeRange,
				Points:    p.DensityPoints,
			})
			if err != nil {
				return nil, err
			}
			rep.Probability = append(rep.Probability, res)
		}
	}

	if parts&PartProjection != 0 {
		proj, err := projection.Project(ds, projection.Request{
			Fields:     p.ProjectionFields,
			ColorField: p.ColorField,
			ShapeField: p.ShapeField,
		})
		switch {
		case errors.Is(err, schema.ErrNothingSelected):
			rep.Warnings = append(rep.Warnings, "projection: no numeric fields selected")
		case err != nil:
			return nil, err
		default:
			rep.Projection = proj
		}
	}
	return rep, nil
}
