package distribution

import "fmt"

// Comparison pairs two cohorts' distributions of the same field. Positional
// layouts are built from (cohort, label) keys, never from entry positions.
type Comparison struct {
	Field  string        `json:"field"`
	Labels []string      `json:"labels"`
	A      *Distribution `json:"a"`
	B      *Distribution `json:"b"`
}

// Row is one label of a comparison.
type Row struct {
	Label string  `json:"label"`
	A     float64 `json:"a"`
	B     float64 `json:"b"`
	Share float64 `json:"share"`
}

// Compare pairs a and b. Both must describe the same field and carry
// distinct cohort names.
func Compare(a, b *Distribution) (*Comparison, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("compare: nil distribution")
	}
	if a.Field != b.Field {
		return nil, fmt.Errorf("compare: field mismatch %q vs %q", a.Field, b.Field)
	}
	if a.Cohort == b.Cohort {
		return nil, fmt.Errorf("compare: both cohorts are named %q", a.Cohort)
	}
	return &Comparison{Field: a.Field, Labels: a.Labels(), A: a, B: b}, nil
}

// Percent looks up a (cohort, label) pair, defaulting to 0.
func (c *Comparison) Percent(cohort, label string) float64 {
	switch cohort {
	case c.A.Cohort:
		return c.A.Percent(label)
	case c.B.Cohort:
		return c.B.Percent(label)
	default:
		return 0
	}
}

// Vector lays out A's percentages then B's, each in canonical label order.
func (c *Comparison) Vector() []float64 {
	out := make([]float64, 0, 2*len(c.Labels))
	for _, cohort := range []string{c.A.Cohort, c.B.Cohort} {
		for _, l := range c.Labels {
			out = append(out, c.Percent(cohort, l))
		}
	}
	return out
}

// Rows returns one row per label with both cohorts' percentages and their
// RelativeShare.
func (c *Comparison) Rows() []Row {
	out := make([]Row, len(c.Labels))
	for i, l := range c.Labels {
		a, b := c.Percent(c.A.Cohort, l), c.Percent(c.B.Cohort, l)
		out[i] = Row{Label: l, A: a, B: b, Share: RelativeShare(a, b)}
	}
	return out
}
