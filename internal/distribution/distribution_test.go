package distribution

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/KaramelBytes/cohortlens/internal/cohort"
	"github.com/KaramelBytes/cohortlens/internal/dataset"
	"github.com/KaramelBytes/cohortlens/internal/schema"
)

// rec builds a census record with the given education, country, hours and income.
func rec(edu, country, hours, income float64) []float64 {
	return []float64{40, 1, 0, 0, 0, edu, 1, country, hours, 0, 0, income}
}

func build(t *testing.T, rows [][]float64) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(schema.Census(), rows)
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	return ds
}

func everyone(t *testing.T, ds *dataset.Dataset, name string) *cohort.Cohort {
	t.Helper()
	c, err := cohort.Select(ds, cohort.Criteria{Name: name, Field: schema.FieldIncome, Allowed: []float64{0, 1}})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	return c
}

func TestAggregateAllHighIncome(t *testing.T) {
	rows := make([][]float64, 100)
	for i := range rows {
		rows[i] = rec(0.5, 0, 40, 1)
	}
	d, err := Aggregate(everyone(t, build(t, rows), "A"), schema.FieldIncome)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	want := []Entry{
		{Key: "0", Label: "low", Count: 0, Percent: 0},
		{Key: "1", Label: "high", Count: 100, Percent: 100},
	}
	if !reflect.DeepEqual(d.Entries, want) {
		t.Fatalf("entries: got %+v want %+v", d.Entries, want)
	}
}

func TestAggregateMergesBuckets(t *testing.T) {
	codes := []float64{0, 0, 0.125, 0.25, 0.375, 0.5, 0.5, 0.625, 0.875, 1}
	rows := make([][]float64, len(codes))
	for i, c := range codes {
		rows[i] = rec(c, 0, 40, 0)
	}
	d, err := Aggregate(everyone(t, build(t, rows), "A"), schema.FieldEducation)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	checks := map[string]float64{
		"Elementary":    100 * 3.0 / 10,
		"Middle school": 10,
		"High school":   100 * 4.0 / 10,
		"Some college":  0,
		"Bachelors":     10,
		"Graduate":      10,
	}
	for label, want := range checks {
		if got := d.Percent(label); math.Abs(got-want) > 1e-9 {
			t.Errorf("%s: got %v want %v", label, got, want)
		}
	}
	if d.Count("Elementary") != 3 {
		t.Fatalf("count: %d", d.Count("Elementary"))
	}
	if got := d.Labels(); len(got) != 6 || got[3] != "Some college" {
		t.Fatalf("zero-count label must keep its position: %v", got)
	}
}

func TestAggregateNormalizes(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	codes := []float64{0, 0.125, 0.25, 0.375, 0.5, 0.625, 0.75, 0.875, 1}
	for trial := 0; trial < 20; trial++ {
		n := 1 + r.Intn(200)
		rows := make([][]float64, n)
		for i := range rows {
			rows[i] = rec(codes[r.Intn(len(codes))], 0, 40, float64(r.Intn(2)))
		}
		d, err := Aggregate(everyone(t, build(t, rows), "A"), schema.FieldEducation)
		if err != nil {
			t.Fatal(err)
		}
		sum := 0.0
		for _, e := range d.Entries {
			sum += e.Percent
		}
		if math.Abs(sum-100) > 1e-6*100 {
			t.Fatalf("trial %d: percentages sum to %v", trial, sum)
		}
	}
}

func TestAggregateEmptyCohort(t *testing.T) {
	ds := build(t, [][]float64{rec(0.5, 0, 40, 1)})
	c, err := cohort.Select(ds, cohort.Criteria{Name: "B", Field: schema.FieldNativeCountry})
	if err != nil {
		t.Fatal(err)
	}
	d, err := Aggregate(c, schema.FieldEducation)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if d.Total != 0 || len(d.Entries) != 6 {
		t.Fatalf("unexpected %+v", d)
	}
	for _, e := range d.Entries {
		if e.Percent != 0 || e.Count != 0 {
			t.Fatalf("non-zero entry %+v", e)
		}
	}
}

func TestAggregateUnmapped(t *testing.T) {
	ds := build(t, [][]float64{rec(0.5, 0, 40, 1), rec(0.3, 0, 40, 1)})
	_, err := Aggregate(everyone(t, ds, "A"), schema.FieldEducation)
	var ue *schema.UnmappedCategoryError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnmappedCategoryError, got %v", err)
	}
}

func TestAggregateRejectsContinuous(t *testing.T) {
	ds := build(t, [][]float64{rec(0.5, 0, 40, 1)})
	var rm *schema.RoleMismatchError
	if _, err := Aggregate(everyone(t, ds, "A"), schema.FieldAge); !errors.As(err, &rm) {
		t.Fatalf("expected RoleMismatchError, got %v", err)
	}
}

func TestCompareKeyedVector(t *testing.T) {
	// Cohort A has no "Middle school" members; B has only Middle school and
	// Graduate. A positional zip of observed groups would misalign them.
	ds := build(t, [][]float64{
		rec(0, 0, 40, 0), rec(0.5, 0, 40, 0), rec(1, 0, 40, 0), rec(1, 0, 40, 0),
		rec(0.25, 10, 40, 1), rec(1, 10, 40, 1),
	})
	a, _ := cohort.Select(ds, cohort.Criteria{Name: "A", Field: schema.FieldNativeCountry, Allowed: []float64{0}})
	b, _ := cohort.Select(ds, cohort.Criteria{Name: "B", Field: schema.FieldNativeCountry, Allowed: []float64{10}})
	da, err := Aggregate(a, schema.FieldEducation)
	if err != nil {
		t.Fatal(err)
	}
	db, err := Aggregate(b, schema.FieldEducation)
	if err != nil {
		t.Fatal(err)
	}
	cmp, err := Compare(da, db)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	want := []float64{25, 0, 25, 0, 0, 50, 0, 50, 0, 0, 0, 50}
	if got := cmp.Vector(); !reflect.DeepEqual(got, want) {
		t.Fatalf("vector: got %v want %v", got, want)
	}
	if got := cmp.Percent("B", "Middle school"); got != 50 {
		t.Fatalf("keyed lookup: %v", got)
	}
	if got := cmp.Percent("C", "Graduate"); got != 0 {
		t.Fatalf("unknown cohort should default to 0, got %v", got)
	}
	rows := cmp.Rows()
	if rows[5].Label != "Graduate" || rows[5].A != 50 || rows[5].B != 50 || rows[5].Share != 50 {
		t.Fatalf("graduate row: %+v", rows[5])
	}
	if _, err := Compare(da, da); err == nil {
		t.Fatalf("expected error for identical cohort names")
	}
}

func TestDistributionJSONLookup(t *testing.T) {
	ds := build(t, [][]float64{rec(0.5, 0, 40, 1)})
	d, _ := Aggregate(everyone(t, ds, "A"), schema.FieldIncome)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	var back Distribution
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Percent("high") != 100 {
		t.Fatalf("decoded lookup failed: %+v", back)
	}
}

func TestRelativeShare(t *testing.T) {
	tests := []struct{ a, b, want float64 }{
		{0, 0, 0},
		{30, 10, 75},
		{0, 40, 0},
		{20, 20, 50},
	}
	for _, tc := range tests {
		if got := RelativeShare(tc.a, tc.b); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("RelativeShare(%v,%v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMeanByBucket(t *testing.T) {
	ds := build(t, [][]float64{
		rec(0, 0, 40, 0), rec(0.125, 0, 60, 0), rec(1, 0, 20, 1),
	})
	c := everyone(t, ds, "A")
	h, err := MeanByBucket(c, schema.FieldEducation, []string{schema.FieldHoursPerWeek, schema.FieldAge})
	if err != nil {
		t.Fatalf("MeanByBucket: %v", err)
	}
	if got := h.Mean("Elementary", schema.FieldHoursPerWeek); got.Count != 2 || got.Mean != 50 {
		t.Fatalf("elementary hours: %+v", got)
	}
	if got := h.Mean("Graduate", schema.FieldAge); got.Mean != 40 {
		t.Fatalf("graduate age: %+v", got)
	}
	if got := h.Mean("Bachelors", schema.FieldAge); got != (Cell{}) {
		t.Fatalf("empty bucket: %+v", got)
	}

	empty, err := MeanByBucket(c, schema.FieldEducation, nil)
	if !errors.Is(err, schema.ErrNothingSelected) {
		t.Fatalf("expected ErrNothingSelected, got %v", err)
	}
	if empty == nil || len(empty.Cells) != 0 {
		t.Fatalf("expected empty result, got %+v", empty)
	}
}
