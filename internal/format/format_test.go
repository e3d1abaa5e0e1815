package format_test

import (
	"strings"
	"testing"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/crosstab"
	"github.com/DiogoHD/LLM-and-ODC/internal/format"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
)

func TestASCII_BasicTable(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("Model", "Correct")
	tb.Row("llama3", 12)
	out := tb.String()

	// go-pretty upper-cases ASCII headers.
	if !strings.Contains(out, "MODEL") || !strings.Contains(out, "llama3") {
		t.Errorf("expected header and row in output:\n%s", out)
	}
	if !strings.Contains(out, "───") {
		t.Errorf("expected box-drawing characters in ASCII output:\n%s", out)
	}
}

func TestMarkdown_BasicTable(t *testing.T) {
	tb := format.NewTable(format.Markdown)
	tb.Title("ignored")
	tb.Header("Model", "Correct")
	tb.Row("qwen", 3)
	out := tb.String()

	if !strings.Contains(out, "| Model") || !strings.Contains(out, "---") {
		t.Errorf("expected markdown table:\n%s", out)
	}
	if strings.Contains(out, "ignored") {
		t.Errorf("markdown should not render the title:\n%s", out)
	}
}

func TestCSV_BasicTable(t *testing.T) {
	tb := format.NewTable(format.CSV)
	tb.Header("Model", "Correct")
	tb.Row("qwen", 3)
	out := tb.String()

	if !strings.HasPrefix(out, "Model,Correct\n") {
		t.Errorf("expected csv header first:\n%s", out)
	}
	if !strings.Contains(out, "qwen,3") {
		t.Errorf("expected csv row:\n%s", out)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    format.Mode
		wantErr bool
	}{
		{"", format.ASCII, false},
		{"md", format.Markdown, false},
		{"CSV", format.CSV, false},
		{"html", format.ASCII, true},
	}
	for _, tt := range tests {
		got, err := format.ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestAccuracyTable(t *testing.T) {
	out := format.AccuracyTable(format.CSV, "type", score.Table{"llama": {Correct: 1, Incorrect: 2}})
	if !strings.Contains(out, "Model,Correct,Incorrect,Accuracy(%)") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "llama,1,2,33.33") {
		t.Errorf("missing row:\n%s", out)
	}
}

func TestConfusionTable(t *testing.T) {
	res := confusion.Result{
		Model:    "llama",
		Category: "Defect Type",
		Matrix: confusion.Matrix{
			Labels: []string{"Checking", "Other"},
			Counts: [][]int{{2, 1}, {0, 0}},
		},
	}
	out := strings.ToUpper(format.ConfusionTable(format.ASCII, res))
	for _, want := range []string{"DEFECT TYPE / LLAMA", "CHECKING", "OTHER"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCrosstabTable_Percent(t *testing.T) {
	ct := crosstab.Table{
		Category: "Defect Qualifier",
		Labels:   []string{"Missing", "Other"},
		Columns:  []string{"llama", "Human"},
		Counts:   [][]int{{1, 2}, {3, 0}},
	}
	out := strings.ToUpper(format.CrosstabTable(format.ASCII, ct, true))
	for _, want := range []string{"DEFECT QUALIFIER (%)", "25.00", "75.00", "100.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
