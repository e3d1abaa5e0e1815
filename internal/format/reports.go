package format

import (
	"strconv"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/crosstab"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
)

// AccuracyTable renders one score table as Model, Correct, Incorrect,
// Accuracy(%).
func AccuracyTable(m Mode, title string, t score.Table) string {
	tb := NewTable(m)
	tb.Title(title)
	tb.Header("Model", "Correct", "Incorrect", "Accuracy(%)")
	for _, r := range t.Rows() {
		tb.Row(r.Model, r.Correct, r.Incorrect, FmtPercent(r.Accuracy))
	}
	tb.AlignRight(span(2, 4)...)
	return tb.String()
}

// ConfusionTable renders a matrix with actual labels down the side and
// predicted labels across.
func ConfusionTable(m Mode, res confusion.Result) string {
	tb := NewTable(m)
	tb.Title(res.Category + " / " + res.Model)
	tb.Header(append([]string{"Actual \\ Predicted"}, res.Matrix.Labels...)...)
	for i, label := range res.Matrix.Labels {
		row := make([]any, 0, len(res.Matrix.Labels)+1)
		row = append(row, label)
		for _, c := range res.Matrix.Counts[i] {
			row = append(row, c)
		}
		tb.Row(row...)
	}
	tb.AlignRight(span(2, len(res.Matrix.Labels)+1)...)
	return tb.String()
}

// MetricsTable renders one metrics row per model.
func MetricsTable(m Mode, category string, results []confusion.Result) string {
	tb := NewTable(m)
	tb.Title(category)
	tb.Header("Model", "Accuracy", "Precision", "Recall", "F1")
	for _, r := range results {
		tb.Row(r.Model, FmtRatio(r.Metrics.Accuracy), FmtRatio(r.Metrics.Precision), FmtRatio(r.Metrics.Recall), FmtRatio(r.Metrics.F1))
	}
	tb.AlignRight(span(2, 5)...)
	return tb.String()
}

// CrosstabTable renders label frequencies, or column percentages when
// percent is set.
func CrosstabTable(m Mode, t crosstab.Table, percent bool) string {
	tb := NewTable(m)
	if percent {
		tb.Title(t.Category + " (%)")
	} else {
		tb.Title(t.Category)
	}
	tb.Header(append([]string{t.Category}, t.Columns...)...)
	pct := t.Percent()
	for i, label := range t.Labels {
		row := make([]any, 0, len(t.Columns)+1)
		row = append(row, label)
		for j, c := range t.Counts[i] {
			if percent {
				row = append(row, FmtPercent(pct[i][j]))
			} else {
				row = append(row, strconv.Itoa(c))
			}
		}
		tb.Row(row...)
	}
	tb.AlignRight(span(2, len(t.Columns)+1)...)
	return tb.String()
}
