package explore

import (
	"fmt"
	"strings"
)

// maxSamplePoints caps the projected points printed in Markdown.
const maxSamplePoints = 5

// Markdown renders a compact text summary of the report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[EXPLORATION]\n")
	if r.Dataset != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Dataset))
	}
	b.WriteString(fmt.Sprintf("Records: %d\n", r.Records))
	// Group filters only apply when groups were selected.
	if len(r.Cohorts) > 0 {
		b.WriteString(fmt.Sprintf("Groups by: %s\n", r.Params.GroupField))
		if w := r.Params.Workclass; w != nil {
			b.WriteString(fmt.Sprintf("Filter: %s == %g\n", w.Field, w.Value))
		}
		if h := r.Params.Hours; h != nil {
			b.WriteString(fmt.Sprintf("Filter: hours in [%g, %g]\n", h.Min, h.Max))
		}
		b.WriteString("\n[COHORTS]\n")
		for _, c := range r.Cohorts {
			b.WriteString(fmt.Sprintf("- %s (n=%d)\n", c.Name, c.Size))
		}
	}

	if d := r.Distribution; d != nil {
		b.WriteString(fmt.Sprintf("\n[DISTRIBUTION: %s]\n", d.Field))
		b.WriteString(fmt.Sprintf("| %s | %s %% | %s %% | share %% |\n", d.Field, d.A.Cohort, d.B.Cohort))
		b.WriteString("|---|---:|---:|---:|\n")
		for _, row := range d.Rows() {
			b.WriteString(fmt.Sprintf("| %s | %.1f | %.1f | %.1f |\n", row.Label, row.A, row.B, row.Share))
		}
		for _, dist := range []string{d.A.Cohort, d.B.Cohort} {
			for _, l := range d.Labels {
				b.WriteString(fmt.Sprintf("- %s: %.1f%% %s\n", dist, d.Percent(dist, l), l))
			}
		}
		b.WriteString("Note: share is A/(A+B) of the two percentages and is not a probability.\n")
	}

	if len(r.Heatmaps) > 0 {
		b.WriteString("\n[MEANS BY BUCKET]\n")
		for _, h := range r.Heatmaps {
			b.WriteString(fmt.Sprintf("- %s by %s\n", h.Cohort, h.Field))
			for _, l := range h.Labels {
				parts := make([]string, 0, len(h.Fields))
				n := 0
				for _, f := range h.Fields {
					c := h.Mean(l, f)
					n = c.Count
					parts = append(parts, fmt.Sprintf("%s %.4g", f, c.Mean))
				}
				b.WriteString(fmt.Sprintf("  • %s (n=%d): %s\n", l, n, strings.Join(parts, ", ")))
			}
		}
	}

	if len(r.Probability) > 0 {
		b.WriteString("\n[PROBABILITY]\n")
		for _, p := range r.Probability {
			b.WriteString(fmt.Sprintf("- %s: P(%s > %g) = %.1f%% (%d/%d); smoothed %.1f%%, bandwidth %.3g\n",
				p.Cohort, p.Field, p.Threshold, p.Percent, p.Exceeding, p.Population, 100*p.Smoothed, p.Bandwidth))
		}
		if ar := r.Params.AgeRange; ar != nil {
			b.WriteString(fmt.Sprintf("Restricted to %s in [%g, %g]\n", ar.Field, ar.Min, ar.Max))
		}
	}

	if p := r.Projection; p != nil {
		b.WriteString("\n[PROJECTION]\n")
		b.WriteString(fmt.Sprintf("Fields: %s\n", strings.Join(p.Fields, ", ")))
		for k, ev := range p.Explained {
			ws := make([]string, len(p.Fields))
			for j, f := range p.Fields {
				w := 0.0
				if j < len(p.Loadings[k]) {
					w = p.Loadings[k][j]
				}
				ws[j] = fmt.Sprintf("%s %+.3f", f, w)
			}
			b.WriteString(fmt.Sprintf("- PC%d: %.1f%% explained; %s\n", k+1, 100*ev, strings.Join(ws, ", ")))
		}
		n := len(p.Points)
		if n > maxSamplePoints {
			n = maxSamplePoints
		}
		for _, pt := range p.Points[:n] {
			b.WriteString(fmt.Sprintf("  • #%d (%.3f, %.3f, %.3f) %s=%g %s=%g\n",
				pt.Index, pt.Coords[0], pt.Coords[1], pt.Coords[2], p.ColorField, pt.Color, p.ShapeField, pt.Shape))
		}
		if len(p.Points) > n {
			b.WriteString(fmt.Sprintf("  … %d more points\n", len(p.Points)-n))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}
	return b.String()
}
