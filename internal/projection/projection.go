// Package projection maps every record of a dataset onto the three
// directions of largest variance of its standardized continuous fields.
package projection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/cohortlens/internal/dataset"
	"github.com/KaramelBytes/cohortlens/internal/schema"
)

// Components is the fixed output dimension.
const Components = 3

// Request selects the fields entering the projection and the two fields
// echoed per point for color and shape encoding.
type Request struct {
	Fields     []string
	ColorField string
	ShapeField string
}

// Point is one projected record.
type Point struct {
	Index  int                 `json:"index"`
	Coords [Components]float64 `json:"coords"`
	Color  float64             `json:"color"`
	Shape  float64             `json:"shape"`
}

// Projection is the whole-dataset result.
type Projection struct {
	Fields     []string            `json:"fields"`
	ColorField string              `json:"color_field,omitempty"`
	ShapeField string              `json:"shape_field,omitempty"`
	Explained  [Components]float64 `json:"explained"`
	// Loadings[k][j] is the weight of Fields[j] on component k.
	Loadings [Components][]float64 `json:"loadings"`
	Points   []Point               `json:"points"`
}

// Scaler holds per-field population means and standard deviations.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes column statistics of an n×d row-major matrix.
func FitScaler(x *mat.Dense) Scaler {
	n, d := x.Dims()
	s := Scaler{Mean: make([]float64, d), Std: make([]float64, d)}
	if n == 0 {
		return s
	}
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		s.Mean[j], s.Std[j] = stat.PopMeanStdDev(col, nil)
	}
	return s
}

// Transform returns a standardized copy of x. A field with zero standard
// deviation contributes 0 for every row.
func (s Scaler) Transform(x *mat.Dense) *mat.Dense {
	n, d := x.Dims()
	z := mat.NewDense(n, d, nil)
	z.Apply(func(i, j int, v float64) float64 {
		if s.Std[j] == 0 || math.IsNaN(s.Std[j]) {
			return 0
		}
		return (v - s.Mean[j]) / s.Std[j]
	}, x)
	return z
}

// Project standardizes the requested continuous fields over the full dataset
// and projects every record onto the top principal components. Components
// beyond the available rank are zero. An empty field selection returns an
// empty projection and schema.ErrNothingSelected.
func Project(ds *dataset.Dataset, req Request) (*Projection, error) {
	s := ds.Schema()
	p := &Projection{ColorField: req.ColorField, ShapeField: req.ShapeField}
	if len(req.Fields) == 0 {
		return p, schema.ErrNothingSelected
	}
	fields := make([]schema.Field, len(req.Fields))
	for i, name := range req.Fields {
		f, err := s.Continuous(name)
		if err != nil {
			return nil, err
		}
		fields[i] = f
		p.Fields = append(p.Fields, f.Name)
	}
	color, err := encodingField(s, req.ColorField)
	if err != nil {
		return nil, err
	}
	shape, err := encodingField(s, req.ShapeField)
	if err != nil {
		return nil, err
	}

	n, d := ds.Len(), len(fields)
	for k := range p.Loadings {
		p.Loadings[k] = make([]float64, d)
	}
	p.Points = make([]Point, n)
	for i := range p.Points {
		r := ds.Record(i)
		p.Points[i].Index = i
		if color != nil {
			p.Points[i].Color = r.Value(*color)
		}
		if shape != nil {
			p.Points[i].Shape = r.Value(*shape)
		}
	}
	if n < 2 {
		return p, nil
	}

	x := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		r := ds.Record(i)
		for j, f := range fields {
			x.Set(i, j, r.Value(f))
		}
	}
	z := FitScaler(x).Transform(x)

	var pc stat.PC
	if ok := pc.PrincipalComponents(z, nil); !ok {
		return nil, fmt.Errorf("projection: principal components decomposition failed")
	}
	vars := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	_, avail := vecs.Dims()
	k := min(Components, avail, len(vars))

	total := 0.0
	for _, v := range vars {
		total += v
	}
	if total <= 0 {
		// every field is constant: all coordinates stay 0
		return p, nil
	}

	basis := mat.NewDense(d, k, nil)
	for c := 0; c < k; c++ {
		col := mat.Col(nil, c, &vecs)
		canonicalSign(col)
		basis.SetCol(c, col)
		copy(p.Loadings[c], col)
		p.Explained[c] = vars[c] / total
	}
	var scores mat.Dense
	scores.Mul(z, basis)
	for i := range p.Points {
		for c := 0; c < k; c++ {
			p.Points[i].Coords[c] = scores.At(i, c)
		}
	}
	return p, nil
}

// canonicalSign flips v so that its largest-magnitude entry is positive.
// Eigenvector signs are arbitrary; this only makes output stable.
func canonicalSign(v []float64) {
	best := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[best]) {
			best = i
		}
	}
	if len(v) > 0 && v[best] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}

func encodingField(s *schema.Schema, name string) (*schema.Field, error) {
	if name == "" {
		return nil, nil
	}
	f, err := s.Field(name)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
