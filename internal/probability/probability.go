// Package probability estimates how much of a cohort exceeds a threshold on
// a continuous field, with a kernel density curve for display.
package probability

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"

	"github.com/KaramelBytes/cohortlens/internal/cohort"
)

// DefaultPoints is the number of curve samples when Query.Points is 0.
const DefaultPoints = 200

// degenerateBandwidth is used when the values have no spread.
const degenerateBandwidth = 1.0

// silvermanFactor scales the standard deviation in the fallback bandwidth.
const silvermanFactor = 1.06

// Query asks for P(Field > Threshold) within a cohort, optionally restricted
// to members whose Range.Field lies in [Range.Min, Range.Max].
type Query struct {
	Field     string
	Threshold float64
	Range     *cohort.Range
	Points    int
}

// Sample is one point of the smoothed curve.
type Sample struct {
	X          float64 `json:"x"`
	Density    float64 `json:"density"`
	Cumulative float64 `json:"cumulative"`
	Exceedance float64 `json:"exceedance"`
}

// Result is the answer to a Query.
type Result struct {
	Cohort     string  `json:"cohort"`
	Field      string  `json:"field"`
	Threshold  float64 `json:"threshold"`
	Population int     `json:"population"`
	Exceeding  int     `json:"exceeding"`
	// Percent is 100*Exceeding/Population, or 0 for an empty population.
	Percent float64 `json:"percent"`
	// Smoothed is the KDE's exceedance at Threshold. It approximates
	// Percent/100 with an error bounded by the kernel bandwidth.
	Smoothed  float64  `json:"smoothed"`
	Bandwidth float64  `json:"bandwidth"`
	Curve     []Sample `json:"curve"`
}

// Estimate answers q over c with a Gaussian KDE. An empty population yields
// zeros and no curve.
func Estimate(c *cohort.Cohort, q Query) (*Result, error) {
	f, err := c.Schema().Continuous(q.Field)
	if err != nil {
		return nil, err
	}
	if q.Range != nil {
		if _, err := c.Schema().Continuous(q.Range.Field); err != nil {
			return nil, err
		}
		if c, err = c.Narrow(*q.Range); err != nil {
			return nil, err
		}
	}
	xs := c.Values(f)
	res := &Result{Cohort: c.Name, Field: f.Name, Threshold: q.Threshold, Population: len(xs)}
	res.Exceeding, res.Percent = Exceedance(xs, q.Threshold)
	if len(xs) == 0 {
		return res, nil
	}

	points := q.Points
	if points <= 0 {
		points = DefaultPoints
	}
	kde := stats.KDE{Sample: stats.Sample{Xs: xs}, Kernel: stats.GaussianKernel}
	lo, hi := kde.Sample.Bounds()
	kde.Bandwidth = bandwidth(kde.Sample, hi > lo)
	if hi <= lo {
		lo, hi = lo-3*kde.Bandwidth, hi+3*kde.Bandwidth
	}
	res.Bandwidth = kde.Bandwidth
	res.Smoothed = 1 - kde.CDF(q.Threshold)

	xsamp := vec.Linspace(lo, hi, points)
	res.Curve = make([]Sample, len(xsamp))
	for i, x := range xsamp {
		cdf := kde.CDF(x)
		res.Curve[i] = Sample{X: x, Density: kde.PDF(x), Cumulative: cdf, Exceedance: 1 - cdf}
	}
	return res, nil
}

// bandwidth picks Scott's rule. Scott's rule is IQR-based for heavy tails
// and returns 0 when most values coincide (e.g. mostly-zero capital gains);
// the standard-deviation form of Silverman's rule covers that case. Only a
// sample with no spread gets the unit bandwidth.
func bandwidth(s stats.Sample, spread bool) float64 {
	if !spread || len(s.Xs) < 2 {
		return degenerateBandwidth
	}
	if bw := stats.BandwidthScott(s); bw > 0 && !math.IsNaN(bw) {
		return bw
	}
	if sd := s.StdDev(); sd > 0 && !math.IsNaN(sd) {
		return silvermanFactor * sd * math.Pow(float64(len(s.Xs)), -0.2)
	}
	return degenerateBandwidth
}

// Exceedance counts values strictly above threshold and returns the count
// with its percentage of len(xs), 0 when xs is empty.
func Exceedance(xs []float64, threshold float64) (int, float64) {
	n := 0
	for _, x := range xs {
		if x > threshold {
			n++
		}
	}
	if len(xs) == 0 {
		return 0, 0
	}
	return n, 100 * float64(n) / float64(len(xs))
}
