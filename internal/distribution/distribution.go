// Package distribution turns cohorts into bucket-merged percentage
// breakdowns over categorical fields.
package distribution

import (
	"fmt"

	"github.com/KaramelBytes/cohortlens/internal/cohort"
	"github.com/KaramelBytes/cohortlens/internal/dataset"
	"github.com/KaramelBytes/cohortlens/internal/schema"
)

// Entry is one label of a distribution.
type Entry struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Distribution is a cohort-local breakdown of one categorical field. Entries
// follow the mapping's canonical label order and include zero-count labels.
type Distribution struct {
	Cohort  string  `json:"cohort"`
	Field   string  `json:"field"`
	Total   int     `json:"total"`
	Entries []Entry `json:"entries"`

	byLabel map[string]int
}

// Aggregate counts the cohort's codes for field, merges them into buckets,
// and normalizes by the cohort's own population. Codes missing from the
// mapping fail with *schema.UnmappedCategoryError.
func Aggregate(c *cohort.Cohort, field string) (*Distribution, error) {
	f, err := c.Schema().Categorical(field)
	if err != nil {
		return nil, err
	}

	counts := map[float64]int{}
	c.Records(func(r dataset.Record) {
		counts[schema.CodeKey(r.Value(f))]++
	})
	byKey := map[string]int{}
	total := 0
	for code, n := range counts {
		b, err := f.Resolve(code)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s for cohort %q: %w", f.Name, c.Name, err)
		}
		byKey[b.Key] += n
		total += n
	}

	d := &Distribution{
		Cohort:  c.Name,
		Field:   f.Name,
		Total:   total,
		Entries: make([]Entry, len(f.Mapping.Buckets)),
		byLabel: make(map[string]int, len(f.Mapping.Buckets)),
	}
	for i, b := range f.Mapping.Buckets {
		e := Entry{Key: b.Key, Label: b.Label, Count: byKey[b.Key]}
		if total > 0 {
			e.Percent = float64(e.Count) / float64(total) * 100
		}
		d.Entries[i] = e
		d.byLabel[b.Label] = i
	}
	return d, nil
}

// Labels returns labels in canonical order.
func (d *Distribution) Labels() []string {
	out := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		out[i] = e.Label
	}
	return out
}

// Percent returns the percentage for label, or 0 for an unknown label.
func (d *Distribution) Percent(label string) float64 {
	if e, ok := d.entry(label); ok {
		return e.Percent
	}
	return 0
}

// Count returns the member count for label, or 0 for an unknown label.
func (d *Distribution) Count(label string) int {
	if e, ok := d.entry(label); ok {
		return e.Count
	}
	return 0
}

func (d *Distribution) entry(label string) (Entry, bool) {
	if d.byLabel == nil {
		// decoded from JSON
		d.byLabel = make(map[string]int, len(d.Entries))
		for i, e := range d.Entries {
			d.byLabel[e.Label] = i
		}
	}
	i, ok := d.byLabel[label]
	if !ok {
		return Entry{}, false
	}
	return d.Entries[i], true
}

// RelativeShare returns pA/(pA+pB)*100, the pie-chart split of one label
// between two cohorts. The inputs are percentages normalized within
// different cohorts, so the result is not a probability. Returns 0 when both
// inputs are 0.
func RelativeShare(pA, pB float64) float64 {
	sum := pA + pB
	if sum == 0 {
		return 0
	}
	return pA / sum * 100
}
