// Package evaluate runs every analysis over one record set and ground truth:
// accuracy tables, confusion matrices and frequency tables.
package evaluate

import (
	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/crosstab"
	"github.com/DiogoHD/LLM-and-ODC/internal/groundtruth"
	"github.com/DiogoHD/LLM-and-ODC/internal/logging"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
	"github.com/DiogoHD/LLM-and-ODC/internal/report"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
	"github.com/DiogoHD/LLM-and-ODC/internal/store"
)

// Options tunes Evaluate.
type Options struct {
	Categories            []confusion.Category
	OnlyOneClassification bool
	Canonicalize          bool
}

// Result is the outcome of one evaluation.
type Result struct {
	Records   []record.DefectRecord
	Scores    score.Tables
	Confusion []confusion.Result // grouped by category, in Options.Categories order
	Crosstabs []crosstab.Table
}

// Evaluate scores recs against gt.
func Evaluate(gt []groundtruth.Record, recs []record.DefectRecord, opts Options) *Result {
	logger := logging.New("evaluate")

	res := &Result{
		Records: recs,
		Scores:  score.Evaluate(gt, recs, score.Options{Canonicalize: opts.Canonicalize}),
	}
	copts := confusion.Options{
		OnlyOneClassification: opts.OnlyOneClassification,
		Canonicalize:          opts.Canonicalize,
	}
	for _, cat := range opts.Categories {
		res.Confusion = append(res.Confusion, confusion.Build(gt, recs, cat, copts)...)
		res.Crosstabs = append(res.Crosstabs, crosstab.Build(gt, recs, cat, opts.Canonicalize))
	}
	logger.Info("evaluation done",
		"records", len(recs), "models", len(res.Scores.Type),
		"categories", len(opts.Categories), "matrices", len(res.Confusion))
	return res
}

// ByCategory returns the confusion results of one category.
func (r *Result) ByCategory(name string) []confusion.Result {
	var out []confusion.Result
	for _, c := range r.Confusion {
		if c.Category == name {
			out = append(out, c)
		}
	}
	return out
}

// Run converts the result into a storable run. walk may be nil when the
// records were not read from a response tree.
func (r *Result) Run(responsesDir, groundTruth string, walk *record.WalkResult) *store.Run {
	run := store.NewRun(responsesDir, groundTruth)
	run.Defects = r.Records
	run.Records = len(r.Records)
	run.Scores = r.Scores
	run.Confusion = r.Confusion
	if walk != nil {
		run.Files = walk.Files
		run.Skipped = len(walk.Skipped)
	}
	return run
}

// WriteReports writes every artifact of the result through w and returns the
// written paths.
func (r *Result) WriteReports(w report.Writer) ([]string, error) {
	var paths []string
	p, err := w.Records(r.Records)
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	ps, err := w.Scores(r.Scores)
	paths = append(paths, ps...)
	if err != nil {
		return paths, err
	}
	ps, err = w.Confusion(r.Confusion)
	paths = append(paths, ps...)
	if err != nil {
		return paths, err
	}
	for _, t := range r.Crosstabs {
		ps, err = w.Crosstab(t)
		paths = append(paths, ps...)
		if err != nil {
			return paths, err
		}
	}
	return paths, nil
}
