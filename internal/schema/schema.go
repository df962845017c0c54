package schema

import (
	"fmt"
	"math"
	"strings"
)

// Role is the semantic type of a field.
type Role int

const (
	// Continuous fields are real-valued measurements (age, hours, amounts).
	Continuous Role = iota + 1
	// Categorical fields hold class codes collapsed through a Mapping.
	Categorical
	// Indicator fields are 0/1 flags, e.g. one-hot work-class columns.
	Indicator
)

func (r Role) String() string {
	switch r {
	case Continuous:
		return "continuous"
	case Categorical:
		return "categorical"
	case Indicator:
		return "indicator"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole maps a textual role to a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "continuous", "numeric":
		return Continuous, nil
	case "categorical", "category":
		return Categorical, nil
	case "indicator", "flag":
		return Indicator, nil
	default:
		return 0, fmt.Errorf("unknown role %q (use continuous|categorical|indicator)", s)
	}
}

// Coded reports whether values of this role are codes resolved via a Mapping.
func (r Role) Coded() bool { return r == Categorical || r == Indicator }

// Field is a resolved schema column. Index is the column position in every
// record of a dataset built on this schema.
type Field struct {
	Name    string
	Role    Role
	Mapping *Mapping
	Index   int
}

// Bucket is one merged display group of a mapping.
type Bucket struct {
	Key   string
	Label string
	Codes []float64
}

// Mapping collapses raw codes into buckets. Bucket order is the canonical
// display order of labels.
type Mapping struct {
	Name    string
	Buckets []Bucket

	byCode map[float64]int
}

// NewMapping validates buckets and builds the code index. A code listed in
// two buckets is rejected.
func NewMapping(name string, buckets []Bucket) (*Mapping, error) {
	if len(buckets) == 0 {
		return nil, fmt.Errorf("mapping %q: no buckets", name)
	}
	m := &Mapping{Name: name, Buckets: buckets, byCode: make(map[float64]int)}
	keys := map[string]bool{}
	labels := map[string]bool{}
	for i, b := range buckets {
		if b.Key == "" || b.Label == "" {
			return nil, fmt.Errorf("mapping %q: bucket %d needs key and label", name, i)
		}
		if keys[b.Key] {
			return nil, fmt.Errorf("mapping %q: duplicate bucket key %q", name, b.Key)
		}
		if labels[b.Label] {
			return nil, fmt.Errorf("mapping %q: duplicate label %q", name, b.Label)
		}
		keys[b.Key], labels[b.Label] = true, true
		if len(b.Codes) == 0 {
			return nil, fmt.Errorf("mapping %q: bucket %q has no codes", name, b.Key)
		}
		for _, c := range b.Codes {
			k := CodeKey(c)
			if j, dup := m.byCode[k]; dup {
				return nil, fmt.Errorf("mapping %q: code %g in buckets %q and %q", name, c, buckets[j].Key, b.Key)
			}
			m.byCode[k] = i
		}
	}
	return m, nil
}

// CodeKey normalizes a code for lookups so that values parsed from text
// (e.g. "0,125") compare equal to the configured table.
func CodeKey(c float64) float64 {
	return math.Round(c*1e9) / 1e9
}

// Resolve returns the bucket for a raw code.
func (m *Mapping) Resolve(code float64) (Bucket, error) {
	i, ok := m.byCode[CodeKey(code)]
	if !ok {
		return Bucket{}, &UnmappedCategoryError{Mapping: m.Name, Code: code}
	}
	return m.Buckets[i], nil
}

// Labels returns the canonical label order.
func (m *Mapping) Labels() []string {
	out := make([]string, len(m.Buckets))
	for i, b := range m.Buckets {
		out[i] = b.Label
	}
	return out
}

// FieldSpec declares a field for New. Mapping names a mapping for coded roles.
type FieldSpec struct {
	Name    string
	Role    Role
	Mapping string
}

// Schema is the immutable, validated field layout of a dataset.
type Schema struct {
	fields   []Field
	byName   map[string]int
	mappings map[string]*Mapping
	order    []string
}

// New validates field declarations against the mappings and resolves them.
func New(specs []FieldSpec, mappings []*Mapping) (*Schema, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("schema has no fields")
	}
	s := &Schema{
		byName:   make(map[string]int, len(specs)),
		mappings: make(map[string]*Mapping, len(mappings)),
	}
	for _, m := range mappings {
		if m == nil {
			continue
		}
		if _, dup := s.mappings[m.Name]; dup {
			return nil, fmt.Errorf("duplicate mapping %q", m.Name)
		}
		s.mappings[m.Name] = m
		s.order = append(s.order, m.Name)
	}
	for i, fs := range specs {
		name := strings.TrimSpace(fs.Name)
		if name == "" {
			return nil, fmt.Errorf("field %d has no name", i)
		}
		key := strings.ToLower(name)
		if _, dup := s.byName[key]; dup {
			return nil, fmt.Errorf("duplicate field %q", name)
		}
		f := Field{Name: name, Role: fs.Role, Index: i}
		switch fs.Role {
		case Continuous:
			if fs.Mapping != "" {
				return nil, fmt.Errorf("field %q: continuous fields take no mapping", name)
			}
		case Categorical, Indicator:
			m, ok := s.mappings[fs.Mapping]
			if !ok {
				return nil, fmt.Errorf("field %q: unknown mapping %q", name, fs.Mapping)
			}
			f.Mapping = m
		default:
			return nil, fmt.Errorf("field %q: invalid role %d", name, int(fs.Role))
		}
		s.byName[key] = i
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// Fields returns all fields in column order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Mappings returns mappings in declaration order.
func (s *Schema) Mappings() []*Mapping {
	out := make([]*Mapping, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.mappings[n])
	}
	return out
}

// Field resolves a field by name, case-insensitively.
func (s *Schema) Field(name string) (Field, error) {
	i, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Field{}, &UnknownFieldError{Name: name}
	}
	return s.fields[i], nil
}

// Categorical resolves a coded field (categorical or indicator).
func (s *Schema) Categorical(name string) (Field, error) {
	f, err := s.Field(name)
	if err != nil {
		return Field{}, err
	}
	if !f.Role.Coded() {
		return Field{}, &RoleMismatchError{Field: f.Name, Have: f.Role, Want: Categorical}
	}
	return f, nil
}

// Continuous resolves a continuous field.
func (s *Schema) Continuous(name string) (Field, error) {
	f, err := s.Field(name)
	if err != nil {
		return Field{}, err
	}
	if f.Role != Continuous {
		return Field{}, &RoleMismatchError{Field: f.Name, Have: f.Role, Want: Continuous}
	}
	return f, nil
}

// FieldsWithRole lists field names having role r, in column order.
func (s *Schema) FieldsWithRole(r Role) []string {
	var out []string
	for _, f := range s.fields {
		if f.Role == r {
			out = append(out, f.Name)
		}
	}
	return out
}

// Resolve maps a raw code of a coded field to its bucket.
func (f Field) Resolve(code float64) (Bucket, error) {
	if f.Mapping == nil {
		return Bucket{}, &RoleMismatchError{Field: f.Name, Have: f.Role, Want: Categorical}
	}
	b, err := f.Mapping.Resolve(code)
	if err != nil {
		if ue, ok := err.(*UnmappedCategoryError); ok {
			ue.Field = f.Name
		}
		return Bucket{}, err
	}
	return b, nil
}
