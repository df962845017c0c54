package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/cohortlens/internal/schema"
)

const header = "age,workclass_private,workclass_self_employed,workclass_government,workclass_without_pay,education,sex,native_country,hours_per_week,capital_gain,capital_loss,income,fnlwgt"

var decimalCommaRows = []string{
	header,
	`39,1,0,0,0,"0,5",1,0,40,"2174,5",0,0,77516`,
	`50,0,1,0,0,"0,875",1,0,13,0,0,1,83311`,
	`38,1,0,0,0,"0,125",0,11,40,0,0,0,215646`,
}

func writeCSV(t *testing.T, rows []string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "data_processada.csv")
	if err := os.WriteFile(p, []byte(strings.Join(rows, "\n")), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func TestLoadCSVDecimalComma(t *testing.T) {
	s := schema.Census()
	ds, err := LoadCSV(writeCSV(t, decimalCommaRows), s, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if ds.Name != "data_processada.csv" {
		t.Fatalf("name: %s", ds.Name)
	}
	if ds.Len() != 3 {
		t.Fatalf("rows: got %d want 3", ds.Len())
	}
	edu, _ := s.Field(schema.FieldEducation)
	gain, _ := s.Field(schema.FieldCapitalGain)
	if got := ds.Record(0).Value(edu); got != 0.5 {
		t.Fatalf("education: got %v want 0.5", got)
	}
	if got := ds.Record(0).Value(gain); got != 2174.5 {
		t.Fatalf("capital_gain: got %v want 2174.5", got)
	}
	if got := ds.Column(edu); got[2] != 0.125 {
		t.Fatalf("column: got %v", got)
	}
	if len(ds.Warnings) != 1 || !strings.Contains(ds.Warnings[0], "fnlwgt") {
		t.Fatalf("expected warning for extra column, got %v", ds.Warnings)
	}
	if err := ds.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	in := "age,income\n30,1\n"
	_, err := ReadCSV(strings.NewReader(in), schema.Census(), DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "missing columns") {
		t.Fatalf("expected missing columns error, got %v", err)
	}
}

func TestReadCSVInvalidNumber(t *testing.T) {
	rows := []string{header, `39,1,0,0,0,abc,1,0,40,0,0,0,1`}
	_, err := ReadCSV(strings.NewReader(strings.Join(rows, "\n")), schema.Census(), DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "invalid number") {
		t.Fatalf("expected invalid number error, got %v", err)
	}
}

func TestValidateUnmapped(t *testing.T) {
	rows := []string{header, `39,1,0,0,0,"0,3",1,0,40,0,0,0,1`}
	ds, err := ReadCSV(strings.NewReader(strings.Join(rows, "\n")), schema.Census(), DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	var ue *schema.UnmappedCategoryError
	if err := ds.Validate(); !errors.As(err, &ue) {
		t.Fatalf("expected UnmappedCategoryError, got %v", err)
	}
	if ue.Field != schema.FieldEducation {
		t.Fatalf("field: %s", ue.Field)
	}
}

func TestMaxRows(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxRows = 2
	ds, err := ReadCSV(strings.NewReader(strings.Join(decimalCommaRows, "\n")), schema.Census(), opt)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("rows: got %d", ds.Len())
	}
	found := false
	for _, w := range ds.Warnings {
		if strings.Contains(w, "loaded only 2/3") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing MaxRows warning: %v", ds.Warnings)
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in   string
		opt  Options
		want float64
		ok   bool
	}{
		{"0,125", Options{}, 0.125, true},
		{"0.125", Options{}, 0.125, true},
		{"1.000,5", Options{}, 1000.5, true},
		{"1,000.5", Options{}, 1000.5, true},
		{"1 234", Options{}, 1234, true},
		{"0.125", Options{DecimalSeparator: ','}, 0, false},
		{"1.234,5", Options{DecimalSeparator: ',', ThousandsSeparator: '.'}, 1234.5, true},
		{"", Options{}, 0, false},
		{"NaN", Options{}, 0, false},
	}
	for _, tc := range tests {
		got, ok := parseNumeric(tc.in, tc.opt)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("parseNumeric(%q): got %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNewCopiesRows(t *testing.T) {
	s := schema.Census()
	row := make([]float64, s.Len())
	ds, err := New(s, [][]float64{row})
	if err != nil {
		t.Fatal(err)
	}
	row[0] = 99
	age, _ := s.Field(schema.FieldAge)
	if ds.Record(0).Value(age) != 0 {
		t.Fatalf("dataset must not alias caller rows")
	}
	if _, err := New(s, [][]float64{{1, 2}}); err == nil {
		t.Fatalf("expected width error")
	}
}
