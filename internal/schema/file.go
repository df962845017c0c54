package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileSchema struct {
	Fields   []fileField   `yaml:"fields"`
	Mappings []fileMapping `yaml:"mappings"`
}

type fileField struct {
	Name    string `yaml:"name"`
	Role    string `yaml:"role"`
	Mapping string `yaml:"mapping,omitempty"`
}

type fileMapping struct {
	Name    string       `yaml:"name"`
	Buckets []fileBucket `yaml:"buckets"`
}

type fileBucket struct {
	Key   string    `yaml:"key"`
	Label string    `yaml:"label"`
	Codes []float64 `yaml:"codes,flow"`
}

// Parse decodes a YAML schema document.
func Parse(b []byte) (*Schema, error) {
	var fsch fileSchema
	if err := yaml.Unmarshal(b, &fsch); err != nil {
		return nil, fmt.Errorf("parse schema yaml: %w", err)
	}
	maps := make([]*Mapping, 0, len(fsch.Mappings))
	for _, fm := range fsch.Mappings {
		buckets := make([]Bucket, len(fm.Buckets))
		for i, fb := range fm.Buckets {
			buckets[i] = Bucket{Key: fb.Key, Label: fb.Label, Codes: fb.Codes}
		}
		m, err := NewMapping(fm.Name, buckets)
		if err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}
	specs := make([]FieldSpec, len(fsch.Fields))
	for i, ff := range fsch.Fields {
		r, err := ParseRole(ff.Role)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", ff.Name, err)
		}
		specs[i] = FieldSpec{Name: ff.Name, Role: r, Mapping: ff.Mapping}
	}
	return New(specs, maps)
}

// LoadFile reads a YAML schema from path.
func LoadFile(path string) (*Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(b)
}

// MarshalYAML encodes the schema in the form Parse accepts.
func (s *Schema) MarshalYAML() (interface{}, error) {
	var out fileSchema
	for _, f := range s.fields {
		ff := fileField{Name: f.Name, Role: f.Role.String()}
		if f.Mapping != nil {
			ff.Mapping = f.Mapping.Name
		}
		out.Fields = append(out.Fields, ff)
	}
	for _, m := range s.Mappings() {
		fm := fileMapping{Name: m.Name}
		for _, b := range m.Buckets {
			fm.Buckets = append(fm.Buckets, fileBucket{Key: b.Key, Label: b.Label, Codes: b.Codes})
		}
		out.Mappings = append(out.Mappings, fm)
	}
	return out, nil
}

// Encode returns the YAML form of the schema.
func (s *Schema) Encode() ([]byte, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema yaml: %w", err)
	}
	return b, nil
}
