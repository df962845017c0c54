package distribution

import (
	"fmt"

	"github.com/KaramelBytes/cohortlens/internal/cohort"
	"github.com/KaramelBytes/cohortlens/internal/dataset"
	"github.com/KaramelBytes/cohortlens/internal/schema"
)

// Cell is the mean of one numeric field within one bucket.
type Cell struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
}

// Heatmap holds per-bucket means: Cells[label][field].
type Heatmap struct {
	Cohort string   `json:"cohort"`
	Field  string   `json:"field"`
	Labels []string `json:"labels"`
	Fields []string `json:"fields"`
	Cells  [][]Cell `json:"cells"`
}

// MeanByBucket averages each numeric field within every bucket of the
// categorical field. An empty numeric selection returns an empty heatmap and
// schema.ErrNothingSelected.
func MeanByBucket(c *cohort.Cohort, field string, numeric []string) (*Heatmap, error) {
	s := c.Schema()
	f, err := s.Categorical(field)
	if err != nil {
		return nil, err
	}
	h := &Heatmap{Cohort: c.Name, Field: f.Name, Labels: f.Mapping.Labels()}
	if len(numeric) == 0 {
		return h, schema.ErrNothingSelected
	}
	nf := make([]schema.Field, len(numeric))
	for i, name := range numeric {
		if nf[i], err = s.Continuous(name); err != nil {
			return nil, err
		}
		h.Fields = append(h.Fields, nf[i].Name)
	}

	pos := make(map[string]int, len(h.Labels))
	for i, b := range f.Mapping.Buckets {
		pos[b.Key] = i
	}
	sums := make([][]float64, len(h.Labels))
	counts := make([]int, len(h.Labels))
	for i := range sums {
		sums[i] = make([]float64, len(nf))
	}
	var rerr error
	c.Records(func(r dataset.Record) {
		if rerr != nil {
			return
		}
		b, err := f.Resolve(r.Value(f))
		if err != nil {
			rerr = err
			return
		}
		i := pos[b.Key]
		counts[i]++
		for j, g := range nf {
			sums[i][j] += r.Value(g)
		}
	})
	if rerr != nil {
		return nil, fmt.Errorf("heatmap %s for cohort %q: %w", f.Name, c.Name, rerr)
	}

	h.Cells = make([][]Cell, len(h.Labels))
	for i := range h.Labels {
		h.Cells[i] = make([]Cell, len(nf))
		for j := range nf {
			cell := Cell{Count: counts[i]}
			if counts[i] > 0 {
				cell.Mean = sums[i][j] / float64(counts[i])
			}
			h.Cells[i][j] = cell
		}
	}
	return h, nil
}

// Mean looks up the cell for (label, field), defaulting to a zero cell.
func (h *Heatmap) Mean(label, field string) Cell {
	for i, l := range h.Labels {
		if l != label {
			continue
		}
		for j, f := range h.Fields {
			if f == field && i < len(h.Cells) && j < len(h.Cells[i]) {
				return h.Cells[i][j]
			}
		}
	}
	return Cell{}
}
