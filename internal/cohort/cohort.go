// Package cohort selects named, read-only subsets of a dataset.
package cohort

import (
	"fmt"

	"github.com/KaramelBytes/cohortlens/internal/dataset"
	"github.com/KaramelBytes/cohortlens/internal/schema"
)

// Exact requires Field to equal Value, e.g. workclass_private == 1.
type Exact struct {
	Field string  `json:"field" yaml:"field" mapstructure:"field"`
	Value float64 `json:"value" yaml:"value" mapstructure:"value"`
}

// Range requires Field to lie in [Min, Max].
type Range struct {
	Field string  `json:"field" yaml:"field" mapstructure:"field"`
	Min   float64 `json:"min" yaml:"min" mapstructure:"min"`
	Max   float64 `json:"max" yaml:"max" mapstructure:"max"`
}

// Contains reports whether x is inside the inclusive range.
func (r Range) Contains(x float64) bool { return x >= r.Min && x <= r.Max }

// Criteria describes a cohort: records whose Field value is in Allowed,
// optionally narrowed by Exact and Ranges.
type Criteria struct {
	Name    string
	Field   string
	Allowed []float64
	Exact   *Exact
	Ranges  []Range
}

// Cohort is a selected subset. It holds record positions into the source
// dataset and never copies or mutates records.
type Cohort struct {
	Name string

	ds   *dataset.Dataset
	rows []int
}

// Select applies c to ds. An empty Allowed set yields an empty cohort.
func Select(ds *dataset.Dataset, c Criteria) (*Cohort, error) {
	s := ds.Schema()
	out := &Cohort{Name: c.Name, ds: ds}

	member, err := s.Field(c.Field)
	if err != nil {
		return nil, fmt.Errorf("cohort %q: %w", c.Name, err)
	}
	var exact *schema.Field
	if c.Exact != nil {
		f, err := s.Field(c.Exact.Field)
		if err != nil {
			return nil, fmt.Errorf("cohort %q: %w", c.Name, err)
		}
		exact = &f
	}
	ranges := make([]schema.Field, len(c.Ranges))
	for i, r := range c.Ranges {
		f, err := s.Field(r.Field)
		if err != nil {
			return nil, fmt.Errorf("cohort %q: %w", c.Name, err)
		}
		ranges[i] = f
	}
	if len(c.Allowed) == 0 {
		return out, nil
	}

	allowed := make(map[float64]struct{}, len(c.Allowed))
	for _, v := range c.Allowed {
		allowed[schema.CodeKey(v)] = struct{}{}
	}
	for i := 0; i < ds.Len(); i++ {
		rec := ds.Record(i)
		if _, ok := allowed[schema.CodeKey(rec.Value(member))]; !ok {
			continue
		}
		if exact != nil && schema.CodeKey(rec.Value(*exact)) != schema.CodeKey(c.Exact.Value) {
			continue
		}
		keep := true
		for j, f := range ranges {
			if !c.Ranges[j].Contains(rec.Value(f)) {
				keep = false
				break
			}
		}
		if keep {
			out.rows = append(out.rows, i)
		}
	}
	return out, nil
}

// Len returns the cohort population.
func (c *Cohort) Len() int { return len(c.rows) }

// Schema returns the schema of the underlying dataset.
func (c *Cohort) Schema() *schema.Schema { return c.ds.Schema() }

// Values returns the values of f for every member.
func (c *Cohort) Values(f schema.Field) []float64 {
	out := make([]float64, len(c.rows))
	for i, r := range c.rows {
		out[i] = c.ds.Record(r).Value(f)
	}
	return out
}

// Records calls fn for every member record.
func (c *Cohort) Records(fn func(dataset.Record)) {
	for _, r := range c.rows {
		fn(c.ds.Record(r))
	}
}

// Narrow returns the members whose f value lies in r, keeping the name.
func (c *Cohort) Narrow(r Range) (*Cohort, error) {
	f, err := c.ds.Schema().Field(r.Field)
	if err != nil {
		return nil, fmt.Errorf("cohort %q: %w", c.Name, err)
	}
	out := &Cohort{Name: c.Name, ds: c.ds}
	for _, i := range c.rows {
		if r.Contains(c.ds.Record(i).Value(f)) {
			out.rows = append(out.rows, i)
		}
	}
	return out, nil
}
