package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/cohortlens/internal/schema"
)

// Options controls CSV ingestion.
type Options struct {
	// Delimiter for CSV. If 0, picks '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, only spaces are stripped
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
}

// DefaultOptions auto-detects the decimal separator per value, which covers the
// processed census export (comma-delimited, decimal commas in quoted cells).
func DefaultOptions() Options {
	return Options{}
}

// LoadCSV reads a CSV file into a dataset bound to s.
func LoadCSV(path string, s *schema.Schema, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	ds, err := ReadCSV(f, s, opt)
	if err != nil {
		return nil, err
	}
	ds.Name = filepath.Base(path)
	return ds, nil
}

// ReadCSV reads CSV content from r. Columns are matched to schema fields by
// header name; every schema field must be present.
func ReadCSV(r io.Reader, s *schema.Schema, opt Options) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	ds := &Dataset{schema: s}
	// column position in the file for each schema field
	cols := make([]int, s.Len())
	for i := range cols {
		cols[i] = -1
	}
	for j, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		f, err := s.Field(name)
		if err != nil {
			ds.Warnings = append(ds.Warnings, fmt.Sprintf("ignored column %q (not in schema)", name))
			continue
		}
		if cols[f.Index] >= 0 {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		cols[f.Index] = j
	}
	var missing []string
	for _, f := range s.Fields() {
		if cols[f.Index] < 0 {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("schema mismatch: missing columns %s", strings.Join(missing, ", "))
	}

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	fields := s.Fields()
	line := 1
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++
		if len(ds.records) >= maxRows {
			continue
		}
		vals := make([]float64, len(fields))
		for _, f := range fields {
			j := cols[f.Index]
			if j >= len(rec) {
				return nil, fmt.Errorf("row %d: missing value for %q", line, f.Name)
			}
			x, ok := parseNumeric(rec[j], opt)
			if !ok {
				return nil, fmt.Errorf("row %d: field %q: invalid number %q", line, f.Name, rec[j])
			}
			vals[f.Index] = x
		}
		ds.records = append(ds.records, Record{values: vals})
	}
	if loaded, total := len(ds.records), line-1; loaded < total {
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("loaded only %d/%d rows due to MaxRows", loaded, total))
	}
	return ds, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	// Without an explicit thousands separator only spaces are stripped:
	// "0.125" under a ',' decimal is rejected, not read as 125.
	raw = strings.ReplaceAll(raw, " ", "")
	if thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
