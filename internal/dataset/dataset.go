package dataset

import (
	"fmt"

	"github.com/KaramelBytes/cohortlens/internal/schema"
)

// Record is one immutable row. Values are indexed by schema.Field.Index.
type Record struct {
	values []float64
}

// Value returns the record's value for a resolved field.
func (r Record) Value(f schema.Field) float64 { return r.values[f.Index] }

// Dataset is a read-only record set bound to a schema.
type Dataset struct {
	Name     string
	Warnings []string

	schema  *schema.Schema
	records []Record
}

// New builds a dataset from rows laid out in schema column order. Rows are
// copied; the caller may reuse them.
func New(s *schema.Schema, rows [][]float64) (*Dataset, error) {
	ds := &Dataset{schema: s, records: make([]Record, 0, len(rows))}
	for i, row := range rows {
		if len(row) != s.Len() {
			return nil, fmt.Errorf("row %d: got %d values, schema has %d fields", i+1, len(row), s.Len())
		}
		cp := make([]float64, len(row))
		copy(cp, row)
		ds.records = append(ds.records, Record{values: cp})
	}
	return ds, nil
}

// Schema returns the dataset schema.
func (d *Dataset) Schema() *schema.Schema { return d.schema }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Record returns the i-th record.
func (d *Dataset) Record(i int) Record { return d.records[i] }

// Column copies the values of one field across all records.
func (d *Dataset) Column(f schema.Field) []float64 {
	out := make([]float64, len(d.records))
	for i, r := range d.records {
		out[i] = r.Value(f)
	}
	return out
}

// Validate checks every coded value against its field's mapping and returns
// the first UnmappedCategoryError found.
func (d *Dataset) Validate() error {
	for _, f := range d.schema.Fields() {
		if !f.Role.Coded() {
			continue
		}
		for i, r := range d.records {
			if _, err := f.Resolve(r.Value(f)); err != nil {
				return fmt.Errorf("record %d: %w", i+1, err)
			}
		}
	}
	return nil
}
