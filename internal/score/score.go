package score

import (
	"math"
	"slices"

	"github.com/DiogoHD/LLM-and-ODC/internal/extract"
	"github.com/DiogoHD/LLM-and-ODC/internal/groundtruth"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
	"github.com/DiogoHD/LLM-and-ODC/internal/taxonomy"
)

// Axis names of the three tables.
const (
	AxisType      = "type"
	AxisQualifier = "qualifier"
	AxisCombined  = "combined"
)

// Axes lists the axes in report order.
var Axes = []string{AxisType, AxisQualifier, AxisCombined}

// Counts is one model's tally on one axis.
type Counts struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Add returns the element-wise sum.
func (c Counts) Add(o Counts) Counts {
	return Counts{Correct: c.Correct + o.Correct, Incorrect: c.Incorrect + o.Incorrect}
}

// Accuracy is Correct / (Correct + Incorrect) * 100 rounded to two decimals,
// or 0 when nothing was predicted.
func (c Counts) Accuracy() float64 {
	total := c.Correct + c.Incorrect
	if total == 0 {
		return 0
	}
	return Round2(float64(c.Correct) / float64(total) * 100)
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Table maps model name to its counts on one axis.
type Table map[string]Counts

// Row is one rendered table line.
type Row struct {
	Model     string  `json:"model"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Accuracy  float64 `json:"accuracy"`
}

// Rows returns the table sorted by model name.
func (t Table) Rows() []Row {
	models := make([]string, 0, len(t))
	for m := range t {
		models = append(models, m)
	}
	slices.Sort(models)
	out := make([]Row, 0, len(models))
	for _, m := range models {
		c := t[m]
		out = append(out, Row{Model: m, Correct: c.Correct, Incorrect: c.Incorrect, Accuracy: c.Accuracy()})
	}
	return out
}

// Tables holds the three accuracy tables of one evaluation.
type Tables struct {
	Type      Table `json:"type"`
	Qualifier Table `json:"qualifier"`
	Combined  Table `json:"combined"`
}

// NewTables returns empty tables.
func NewTables() Tables {
	return Tables{Type: Table{}, Qualifier: Table{}, Combined: Table{}}
}

// Axis returns the table for an axis name, or nil.
func (t Tables) Axis(name string) Table {
	switch name {
	case AxisType:
		return t.Type
	case AxisQualifier:
		return t.Qualifier
	case AxisCombined:
		return t.Combined
	}
	return nil
}

// GroupScore is the outcome of one model on one group.
type GroupScore struct {
	Type      Counts `json:"type"`
	Qualifier Counts `json:"qualifier"`
	Combined  Counts `json:"combined"`
}

// ScoreGroup matches predicted pairs against ground-truth pairs on the three
// axes. Absent values never match.
func ScoreGroup(truth, pred []extract.Pair) GroupScore {
	types := func(ps []extract.Pair) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.Type
		}
		return out
	}
	quals := func(ps []extract.Pair) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.Qualifier
		}
		return out
	}
	nonEmpty := func(s string) bool { return s != "" }
	complete := func(p extract.Pair) bool { return p.HasType() && p.HasQualifier() }

	return GroupScore{
		Type:      Match(types(truth), types(pred), nonEmpty),
		Qualifier: Match(quals(truth), quals(pred), nonEmpty),
		Combined:  Match(truth, pred, complete),
	}
}

// Options tunes Evaluate.
type Options struct {
	// Canonicalize rewrites predicted labels to the ground-truth spelling
	// when they differ only in case or accents.
	Canonicalize bool
}

// Evaluate scores every ground-truth commit against the predicted records.
//
// A commit whose ground truth names one single file is scored against the
// predictions for that file only; any other commit pools the predictions of
// all its files. Every predicting model gets a row, even if none of its
// predictions fell on a ground-truth commit. Records of record.HumanModel in
// preds are ignored.
func Evaluate(gt []groundtruth.Record, preds []record.DefectRecord, opts Options) Tables {
	tables := NewTables()
	bySha := make(map[string][]record.DefectRecord)
	for _, p := range preds {
		if p.Model == record.HumanModel {
			continue
		}
		if _, ok := tables.Type[p.Model]; !ok {
			tables.Type[p.Model] = Counts{}
			tables.Qualifier[p.Model] = Counts{}
			tables.Combined[p.Model] = Counts{}
		}
		bySha[p.Sha] = append(bySha[p.Sha], p)
	}

	canon := newCanon(gt, opts)
	byCommit := groundtruth.ByCommit(gt)
	for _, commit := range groundtruth.Commits(gt) {
		rows := byCommit[commit]
		for model, gs := range scoreCommit(rows, bySha[commit], canon) {
			tables.Type[model] = tables.Type[model].Add(gs.Type)
			tables.Qualifier[model] = tables.Qualifier[model].Add(gs.Qualifier)
			tables.Combined[model] = tables.Combined[model].Add(gs.Combined)
		}
	}
	return tables
}

// scoreCommit returns per-model deltas for one commit. Nothing is applied
// until the whole commit has been scored.
func scoreCommit(rows []groundtruth.Record, preds []record.DefectRecord, canon canonicalizer) map[string]GroupScore {
	truth := make([]extract.Pair, len(rows))
	for i, r := range rows {
		truth[i] = extract.Pair{Type: r.Type, Qualifier: r.Qualifier}
	}

	file, perFile := SingleFile(rows)
	byModel := make(map[string][]extract.Pair)
	for _, p := range preds {
		if perFile && p.File != file {
			continue
		}
		byModel[p.Model] = append(byModel[p.Model], canon.pair(p.Pair()))
	}

	out := make(map[string]GroupScore, len(byModel))
	for model, pairs := range byModel {
		out[model] = ScoreGroup(truth, pairs)
	}
	return out
}

// SingleFile reports whether the ground truth of one commit is file level:
// every row counts exactly one file and names the same file. The returned
// name is in response-tree form.
func SingleFile(rows []groundtruth.Record) (string, bool) {
	if len(rows) == 0 {
		return "", false
	}
	name := rows[0].Filename
	for _, r := range rows {
		if r.CommitLevel() || r.Filename != name {
			return "", false
		}
	}
	return record.SafeName(name), true
}

type canonicalizer struct {
	types, quals *taxonomy.Canonicalizer
}

func newCanon(gt []groundtruth.Record, opts Options) canonicalizer {
	if !opts.Canonicalize {
		return canonicalizer{}
	}
	var types, quals []string
	for _, r := range gt {
		types = append(types, r.Type)
		quals = append(quals, r.Qualifier)
	}
	return canonicalizer{
		types: taxonomy.NewCanonicalizer(taxonomy.NewUniverse(types)),
		quals: taxonomy.NewCanonicalizer(taxonomy.NewUniverse(quals)),
	}
}

func (c canonicalizer) pair(p extract.Pair) extract.Pair {
	return extract.Pair{Type: c.types.Canonical(p.Type), Qualifier: c.quals.Canonical(p.Qualifier)}
}
