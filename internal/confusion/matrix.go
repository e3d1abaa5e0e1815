package confusion

import (
	"slices"

	"github.com/DiogoHD/LLM-and-ODC/internal/extract"
	"github.com/DiogoHD/LLM-and-ODC/internal/groundtruth"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
	"github.com/DiogoHD/LLM-and-ODC/internal/taxonomy"
)

// Matrix is a square count table. Rows are actual labels, columns predicted,
// both in Labels order.
type Matrix struct {
	Labels []string `json:"labels"`
	Counts [][]int  `json:"counts"`
}

func newMatrix(labels []string) Matrix {
	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}
	return Matrix{Labels: labels, Counts: counts}
}

func (m Matrix) index(label string) int {
	return slices.Index(m.Labels, label)
}

// At returns the count for an (actual, predicted) pair, 0 for unknown labels.
func (m Matrix) At(actual, predicted string) int {
	i, j := m.index(actual), m.index(predicted)
	if i < 0 || j < 0 {
		return 0
	}
	return m.Counts[i][j]
}

// Total is the number of aligned pairs.
func (m Matrix) Total() int {
	n := 0
	for _, row := range m.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Aligned is one (actual, predicted) label pair.
type Aligned struct {
	Actual, Predicted string
}

// Align pairs actual and predicted labels of one commit. Equal labels are
// consumed first, in predicted order; what is left is paired by position,
// the shorter side padded with taxonomy.Other.
func Align(actual, predicted []string) []Aligned {
	remaining := append([]string(nil), actual...)
	var out []Aligned
	var leftPred []string
	for _, p := range predicted {
		if i := slices.Index(remaining, p); i >= 0 {
			remaining = slices.Delete(remaining, i, i+1)
			out = append(out, Aligned{Actual: p, Predicted: p})
			continue
		}
		leftPred = append(leftPred, p)
	}
	for i := range max(len(remaining), len(leftPred)) {
		a, p := taxonomy.Other, taxonomy.Other
		if i < len(remaining) {
			a = remaining[i]
		}
		if i < len(leftPred) {
			p = leftPred[i]
		}
		out = append(out, Aligned{Actual: a, Predicted: p})
	}
	return out
}

// Options tunes Build.
type Options struct {
	// OnlyOneClassification restricts scoring to commits whose ground truth
	// holds exactly one defect.
	OnlyOneClassification bool
	// Canonicalize rewrites predicted labels to the ground-truth spelling
	// when they differ only in case or accents.
	Canonicalize bool
}

// Result is the matrix and metrics of one model for one category.
type Result struct {
	Model    string  `json:"model"`
	Category string  `json:"category"`
	Matrix   Matrix  `json:"matrix"`
	Metrics  Metrics `json:"metrics"`
}

// Build returns one Result per predicting model, sorted by model.
//
// The label universe is every non-empty ground-truth label of the category.
// Commits considered are the ground-truth commits that any model produced
// output for; a model silent on such a commit predicts nothing there. Absent
// or out-of-universe predictions count as taxonomy.Other.
func Build(gt []groundtruth.Record, preds []record.DefectRecord, cat Category, opts Options) []Result {
	var truthLabels []string
	for _, r := range gt {
		if l, ok := cat.Label(extract.Pair{Type: r.Type, Qualifier: r.Qualifier}); ok {
			truthLabels = append(truthLabels, l)
		}
	}
	universe := taxonomy.NewUniverse(truthLabels)
	var canon *taxonomy.Canonicalizer
	if opts.Canonicalize {
		canon = taxonomy.NewCanonicalizer(universe)
	}

	predicted := make(map[string]map[string][]string) // model -> sha -> labels
	seen := make(map[string]bool)
	for _, p := range preds {
		if p.Model == record.HumanModel {
			continue
		}
		seen[p.Sha] = true
		label, ok := cat.Label(p.Pair())
		if !ok {
			label = taxonomy.Other
		}
		label = universe.Bucket(canon.Canonical(label))
		if predicted[p.Model] == nil {
			predicted[p.Model] = make(map[string][]string)
		}
		predicted[p.Model][p.Sha] = append(predicted[p.Model][p.Sha], label)
	}

	var single map[string]bool
	if opts.OnlyOneClassification {
		single = groundtruth.SingleDefectCommits(gt)
	}
	byCommit := groundtruth.ByCommit(gt)
	var commits []string
	for _, c := range groundtruth.Commits(gt) {
		if seen[c] && (single == nil || single[c]) {
			commits = append(commits, c)
		}
	}

	models := make([]string, 0, len(predicted))
	for m := range predicted {
		models = append(models, m)
	}
	slices.Sort(models)

	out := make([]Result, 0, len(models))
	for _, model := range models {
		m := newMatrix(universe.Labels())
		var pairs []Aligned
		for _, c := range commits {
			var actual []string
			for _, r := range byCommit[c] {
				if l, ok := cat.Label(extract.Pair{Type: r.Type, Qualifier: r.Qualifier}); ok {
					actual = append(actual, l)
				}
			}
			for _, a := range Align(actual, predicted[model][c]) {
				m.Counts[m.index(a.Actual)][m.index(a.Predicted)]++
				pairs = append(pairs, a)
			}
		}
		out = append(out, Result{
			Model:    model,
			Category: cat.Name(),
			Matrix:   m,
			Metrics:  Compute(pairs),
		})
	}
	return out
}
