package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/cohortlens/internal/explore"
	"github.com/KaramelBytes/cohortlens/internal/projection"
	"github.com/KaramelBytes/cohortlens/internal/schema"
)

const censusCSV = `age,workclass_private,workclass_self_employed,workclass_government,workclass_without_pay,education,sex,native_country,hours_per_week,capital_gain,capital_loss,income
25,1,0,0,0,0,0,0,40,0,0,0
35,1,0,0,0,"0,375",1,1,50,"1200,5",0,1
45,0,1,0,0,"0,875",1,0,60,0,0,1
55,1,0,0,0,1,0,1,20,0,"300,25",0
30,1,0,0,0,"0,5",1,12,45,0,0,0
40,0,0,1,0,1,0,14,38,5000,0,1
60,1,0,0,0,"0,25",1,18,42,0,0,0
`

// resetFlags clears values and Changed state so repeated executions of the
// command tree in one process start clean.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func mustRun(t *testing.T, args ...string) {
	t.Helper()
	if err := runCmd(t, args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

// setup isolates HOME and writes the sample dataset.
func setup(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	data = filepath.Join(home, "data_processada.csv")
	if err := os.WriteFile(data, []byte(censusCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return home, data
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestCLI_CompareMarkdown(t *testing.T) {
	home, data := setup(t)
	out := filepath.Join(home, "out", "compare.md")
	mustRun(t, "compare", "--data", data, "-o", out)
	md := readFile(t, out)
	for _, want := range []string{
		"[DISTRIBUTION: education]",
		"- North America (n=4)",
		"- Asia (n=2)",
		"| Elementary | 25.0 | 0.0 | 100.0 |",
		"[MEANS BY BUCKET]",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in\n%s", want, md)
		}
	}
	if strings.Contains(md, "[PROBABILITY]") || strings.Contains(md, "[PROJECTION]") {
		t.Errorf("compare rendered sections it did not compute:\n%s", md)
	}
}

func TestCLI_ProbabilityJSON(t *testing.T) {
	home, data := setup(t)
	out := filepath.Join(home, "prob.json")
	mustRun(t, "probability", "--data", data, "--json", "-o", out,
		"--group-b", "Europe=16,17,18,19,20", "--threshold", "41", "--points", "25")
	var rep explore.Report
	if err := json.Unmarshal([]byte(readFile(t, out)), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rep.Probability) != 2 {
		t.Fatalf("probability results: %d", len(rep.Probability))
	}
	a, b := rep.Probability[0], rep.Probability[1]
	// North America hours 40 50 60 20: two above 41.
	if a.Exceeding != 2 || a.Population != 4 || len(a.Curve) != 25 {
		t.Fatalf("group A: %+v", a)
	}
	// Europe is a single record with 42 hours.
	if b.Cohort != "Europe" || b.Percent != 100 {
		t.Fatalf("group B: %+v", b)
	}
}

func TestCLI_ProjectJSON(t *testing.T) {
	home, data := setup(t)
	out := filepath.Join(home, "pca.json")
	mustRun(t, "project", "--data", data, "--json", "-o", out,
		"--fields", schema.FieldAge+","+schema.FieldHoursPerWeek+","+schema.FieldCapitalGain)
	var p projection.Projection
	if err := json.Unmarshal([]byte(readFile(t, out)), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Points) != 7 || len(p.Fields) != 3 {
		t.Fatalf("projection: %d points, fields %v", len(p.Points), p.Fields)
	}
	if p.Explained[0] < p.Explained[1] {
		t.Fatalf("explained not ordered: %v", p.Explained)
	}
}

func TestCLI_ProjectConfiguredJSON(t *testing.T) {
	home, data := setup(t)
	mustRun(t, "config", "set", "output_format", "json")
	// Projection does not compare groups, so an unusable group field is fine.
	mustRun(t, "config", "set", "explore.group_field", "religion")
	out := filepath.Join(home, "pca.json")
	mustRun(t, "project", "--data", data, "-o", out)
	var p projection.Projection
	if err := json.Unmarshal([]byte(readFile(t, out)), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Points) != 7 {
		t.Fatalf("projection points: %d", len(p.Points))
	}
	if err := runCmd(t, "compare", "--data", data); err == nil {
		t.Fatal("expected compare to reject the unknown group field")
	}
}

func TestCLI_ExploreSweep(t *testing.T) {
	home, data := setup(t)
	out := filepath.Join(home, "sweep.json")
	mustRun(t, "explore", "--data", data, "--json", "-o", out, "--skip", "projection", "--sweep", "30,50")
	var reps []explore.Report
	if err := json.Unmarshal([]byte(readFile(t, out)), &reps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(reps) != 3 {
		t.Fatalf("reports: %d", len(reps))
	}
	if reps[0].Projection != nil || reps[0].Distribution == nil {
		t.Fatalf("skip not honored: %+v", reps[0])
	}
	if reps[1].Params.Threshold != 30 || reps[2].Params.Threshold != 50 {
		t.Fatalf("sweep thresholds: %v %v", reps[1].Params.Threshold, reps[2].Params.Threshold)
	}
	if reps[2].Probability[0].Percent > reps[1].Probability[0].Percent {
		t.Fatalf("higher threshold gave higher share")
	}
}

func TestCLI_EmptySelectionsWarn(t *testing.T) {
	home, data := setup(t)
	out := filepath.Join(home, "warn.md")
	mustRun(t, "explore", "--data", data, "-o", out, "--group-b", "Other=21", "--workclass", schema.FieldWorkclassPrivate)
	md := readFile(t, out)
	if !strings.Contains(md, "[NOTES]") || !strings.Contains(md, `group "Other" is empty`) {
		t.Fatalf("expected empty-group note:\n%s", md)
	}
	if !strings.Contains(md, "- North America (n=3)") {
		t.Fatalf("workclass filter not applied:\n%s", md)
	}
}

func TestCLI_Errors(t *testing.T) {
	home, data := setup(t)
	if err := runCmd(t, "compare", "--data", filepath.Join(home, "missing.csv")); err == nil {
		t.Fatal("expected error for missing dataset")
	}
	if err := runCmd(t, "compare", "--data", data, "--field", "religion"); err == nil {
		t.Fatal("expected error for unknown field")
	}
	if err := runCmd(t, "probability", "--data", data, "--threshold", "-5"); err == nil {
		t.Fatal("expected error for negative threshold")
	}
	if err := runCmd(t, "compare", "--data", data, "--group-a", "nocodes"); err == nil {
		t.Fatal("expected error for malformed group")
	}
	bad := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(bad, []byte("age,income\n30,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runCmd(t, "compare", "--data", bad); err == nil || !strings.Contains(err.Error(), "missing columns") {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestCLI_ConfigSetAndSchemaExport(t *testing.T) {
	home, data := setup(t)
	mustRun(t, "config", "set", "dataset_path", data)
	mustRun(t, "config", "set", "explore.group_b", "Latin America=2,3,4,5,6,7,8,9")
	mustRun(t, "config", "set", "explore.distribution_field", schema.FieldSex)
	if err := runCmd(t, "config", "set", "--", "explore.threshold", "-1"); err == nil {
		t.Fatal("expected invalid threshold to be rejected")
	}
	cfgText := readFile(t, filepath.Join(home, ".cohortlens", "config.yaml"))
	if !strings.Contains(cfgText, "Latin America") || !strings.Contains(cfgText, "distribution_field: sex") {
		t.Fatalf("config not saved:\n%s", cfgText)
	}

	// dataset_path now comes from config
	out := filepath.Join(home, "sex.md")
	mustRun(t, "compare", "-o", out)
	md := readFile(t, out)
	if !strings.Contains(md, "[DISTRIBUTION: sex]") || !strings.Contains(md, "- Latin America (n=0)") {
		t.Fatalf("config parameters not applied:\n%s", md)
	}

	schemaOut := filepath.Join(home, "schema.yaml")
	mustRun(t, "schema", "export", "-o", schemaOut)
	mustRun(t, "compare", "--schema", schemaOut, "-o", out)
	if !strings.Contains(readFile(t, out), "[DISTRIBUTION: sex]") {
		t.Fatal("exported schema did not load")
	}
}
