package confusion_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/extract"
	"github.com/DiogoHD/LLM-and-ODC/internal/groundtruth"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
)

func TestAlign(t *testing.T) {
	tests := []struct {
		name         string
		actual, pred []string
		want         []confusion.Aligned
	}{
		{
			name:   "greedy then positional",
			actual: []string{"A", "A"},
			pred:   []string{"A", "Other"},
			want:   []confusion.Aligned{{"A", "A"}, {"A", "Other"}},
		},
		{
			name:   "missing prediction",
			actual: []string{"A"},
			want:   []confusion.Aligned{{"A", "Other"}},
		},
		{
			name: "extra prediction",
			pred: []string{"B"},
			want: []confusion.Aligned{{"Other", "B"}},
		},
		{
			name:   "order of leftovers kept",
			actual: []string{"A", "B", "C"},
			pred:   []string{"C", "D", "E"},
			want:   []confusion.Aligned{{"C", "C"}, {"A", "D"}, {"B", "E"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, confusion.Align(tt.actual, tt.pred)); diff != "" {
				t.Errorf("Align mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCategory(t *testing.T) {
	cat, err := confusion.ParseCategory("type+qualifier")
	if err != nil {
		t.Fatal(err)
	}
	if got := cat.Name(); got != "Defect Type_Defect Qualifier" {
		t.Errorf("Name = %q", got)
	}
	if l, ok := cat.Label(extract.Pair{Type: "Checking", Qualifier: "Missing"}); !ok || l != "Checking_Missing" {
		t.Errorf("Label = %q, %v", l, ok)
	}
	if _, ok := cat.Label(extract.Pair{Type: "Checking"}); ok {
		t.Error("composite label with an absent component should be absent")
	}
	if _, err := confusion.ParseCategory("severity"); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, err := confusion.CategoryFromFields(nil); err == nil {
		t.Error("expected error for empty field list")
	}
}

var gt = []groundtruth.Record{
	{Commit: "c1", Type: "Checking", Qualifier: "Missing", Files: 1, Filename: "a.c"},
	{Commit: "c2", Type: "Checking", Qualifier: "Missing", Files: 2},
	{Commit: "c2", Type: "Checking", Qualifier: "Incorrect", Files: 2},
	{Commit: "c3", Type: "Timing", Qualifier: "Missing", Files: 1, Filename: "b.c"},
}

var preds = []record.DefectRecord{
	{Sha: "c1", Model: "llama", Type: "Checking", Qualifier: "Missing"},
	{Sha: "c2", Model: "llama", Type: "checking", Qualifier: "Missing"},
	{Sha: "c2", Model: "llama", Type: "Bogus", Qualifier: "Missing"},
	{Sha: "c1", Model: "qwen", Type: "Timing"},
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestBuild_Type(t *testing.T) {
	res := confusion.Build(gt, preds, confusion.Single(extract.FieldType), confusion.Options{Canonicalize: true})
	if len(res) != 2 || res[0].Model != "llama" || res[1].Model != "qwen" {
		t.Fatalf("unexpected results: %+v", res)
	}

	llama := res[0]
	wantMatrix := confusion.Matrix{
		Labels: []string{"Checking", "Timing", "Other"},
		Counts: [][]int{
			{2, 0, 1},
			{0, 0, 0},
			{0, 0, 0},
		},
	}
	if diff := cmp.Diff(wantMatrix, llama.Matrix); diff != "" {
		t.Errorf("llama matrix mismatch (-want +got):\n%s", diff)
	}
	wantMetrics := confusion.Metrics{Accuracy: 2.0 / 3, Precision: 1, Recall: 2.0 / 3, F1: 0.8}
	if diff := cmp.Diff(wantMetrics, llama.Metrics, approx); diff != "" {
		t.Errorf("llama metrics mismatch (-want +got):\n%s", diff)
	}

	qwen := res[1]
	if got := qwen.Matrix.At("Checking", "Timing"); got != 1 {
		t.Errorf("qwen Checking->Timing = %d, want 1", got)
	}
	if got := qwen.Matrix.At("Checking", "Other"); got != 2 {
		t.Errorf("qwen Checking->Other = %d, want 2", got)
	}
	if qwen.Metrics.Accuracy != 0 {
		t.Errorf("qwen accuracy = %v, want 0", qwen.Metrics.Accuracy)
	}
	if qwen.Matrix.Total() != 3 {
		t.Errorf("qwen total = %d, want 3", qwen.Matrix.Total())
	}
}

func TestBuild_Composite(t *testing.T) {
	cat := confusion.Composite(extract.FieldType, extract.FieldQualifier)
	res := confusion.Build(gt, preds, cat, confusion.Options{Canonicalize: true})
	llama := res[0]

	wantLabels := []string{"Checking_Incorrect", "Checking_Missing", "Timing_Missing", "Other"}
	if diff := cmp.Diff(wantLabels, llama.Matrix.Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if got := llama.Matrix.At("Checking_Missing", "Checking_Missing"); got != 2 {
		t.Errorf("Checking_Missing diagonal = %d, want 2", got)
	}
	if got := llama.Matrix.At("Checking_Incorrect", "Other"); got != 1 {
		t.Errorf("Checking_Incorrect->Other = %d, want 1", got)
	}
	if got := res[1].Matrix.At("Checking_Missing", "Other"); got != 2 {
		t.Errorf("qwen partial pair should land in Other, got %d", got)
	}
	if res[0].Category != "Defect Type_Defect Qualifier" {
		t.Errorf("Category = %q", res[0].Category)
	}
}

func TestBuild_OnlyOneClassification(t *testing.T) {
	res := confusion.Build(gt, preds, confusion.Single(extract.FieldType), confusion.Options{OnlyOneClassification: true})
	llama := res[0]
	if llama.Matrix.Total() != 1 || llama.Matrix.At("Checking", "Checking") != 1 {
		t.Errorf("only c1 should be scored, got %+v", llama.Matrix)
	}
	if llama.Metrics.Accuracy != 1 {
		t.Errorf("accuracy = %v, want 1", llama.Metrics.Accuracy)
	}
}

func TestBuild_EmptyUniverse(t *testing.T) {
	noLabels := []groundtruth.Record{{Commit: "c1"}}
	res := confusion.Build(noLabels, preds, confusion.Single(extract.FieldQualifier), confusion.Options{})
	for _, r := range res {
		if diff := cmp.Diff([]string{"Other"}, r.Matrix.Labels); diff != "" {
			t.Errorf("%s labels mismatch (-want +got):\n%s", r.Model, diff)
		}
	}
}

func TestBuild_OtherAsGroundTruthLabel(t *testing.T) {
	truth := []groundtruth.Record{
		{Commit: "c1", Type: "Other"},
		{Commit: "c1", Type: "A"},
	}
	predicted := []record.DefectRecord{
		{Sha: "c1", Model: "llama", Type: "Zed"},
		{Sha: "c1", Model: "llama", Type: "A"},
	}
	res := confusion.Build(truth, predicted, confusion.Single(extract.FieldType), confusion.Options{})
	if len(res) != 1 {
		t.Fatalf("got %d results, want 1", len(res))
	}
	want := confusion.Matrix{
		Labels: []string{"A", "Other"},
		Counts: [][]int{
			{1, 0},
			{0, 1},
		},
	}
	if diff := cmp.Diff(want, res[0].Matrix); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_Empty(t *testing.T) {
	if diff := cmp.Diff(confusion.Metrics{}, confusion.Compute(nil)); diff != "" {
		t.Errorf("Compute(nil) mismatch:\n%s", diff)
	}
}
