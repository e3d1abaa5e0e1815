package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/crosstab"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
	"github.com/DiogoHD/LLM-and-ODC/internal/report"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
)

func read(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Defect Type", "defect_type"},
		{"Defect Type_Defect Qualifier", "defect_type_defect_qualifier"},
		{"llama3.1/8b", "llama3.1-8b"},
	}
	for _, tt := range tests {
		if got := report.Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	w := report.Writer{Dir: dir}

	recs := []record.DefectRecord{{Sha: "abc", File: "x_c", Model: "llama", Type: "Checking"}}
	p, err := w.Records(recs)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	f, err := os.Open(p)
	if err != nil {
		t.Fatal(err)
	}
	back, err := record.ReadCSV(f)
	_ = f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(recs, back); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	tables := score.NewTables()
	tables.Type["llama"] = score.Counts{Correct: 1, Incorrect: 1}
	paths, err := w.Scores(tables)
	if err != nil {
		t.Fatalf("Scores: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("Scores wrote %d files", len(paths))
	}
	if got := read(t, filepath.Join(dir, "accuracy_type.csv")); !strings.Contains(got, "llama,1,1,50.00") {
		t.Errorf("accuracy_type.csv = %q", got)
	}

	results := []confusion.Result{{
		Model:    "llama",
		Category: "Defect Type",
		Matrix:   confusion.Matrix{Labels: []string{"Checking", "Other"}, Counts: [][]int{{1, 0}, {0, 0}}},
		Metrics:  confusion.Metrics{Accuracy: 1, Precision: 1, Recall: 1, F1: 1},
	}}
	paths, err = w.Confusion(results)
	if err != nil {
		t.Fatalf("Confusion: %v", err)
	}
	wantNames := []string{"confusion_defect_type_llama.csv", "metrics_defect_type.csv"}
	var gotNames []string
	for _, p := range paths {
		gotNames = append(gotNames, filepath.Base(p))
	}
	if diff := cmp.Diff(wantNames, gotNames); diff != "" {
		t.Errorf("confusion files mismatch (-want +got):\n%s", diff)
	}
	if got := read(t, filepath.Join(dir, "metrics_defect_type.csv")); !strings.Contains(got, "llama,1.0000,1.0000,1.0000,1.0000") {
		t.Errorf("metrics csv = %q", got)
	}

	ct := crosstab.Table{Category: "Defect Type", Labels: []string{"Checking"}, Columns: []string{"llama", "Human"}, Counts: [][]int{{1, 1}}}
	paths, err = w.Crosstab(ct)
	if err != nil {
		t.Fatalf("Crosstab: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[1]) != "crosstab_defect_type_percent.csv" {
		t.Errorf("crosstab paths = %v", paths)
	}
	if got := read(t, paths[1]); !strings.Contains(got, "Checking,100.00,100.00") {
		t.Errorf("percent csv = %q", got)
	}
}
