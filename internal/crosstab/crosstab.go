// Package crosstab counts how often each label was predicted by each model,
// next to how often humans assigned it.
package crosstab

import (
	"slices"

	"github.com/DiogoHD/LLM-and-ODC/internal/confusion"
	"github.com/DiogoHD/LLM-and-ODC/internal/extract"
	"github.com/DiogoHD/LLM-and-ODC/internal/groundtruth"
	"github.com/DiogoHD/LLM-and-ODC/internal/record"
	"github.com/DiogoHD/LLM-and-ODC/internal/score"
	"github.com/DiogoHD/LLM-and-ODC/internal/taxonomy"
)

// Table is a frequency table. Rows are labels, columns are models followed by
// record.HumanModel.
type Table struct {
	Category string   `json:"category"`
	Labels   []string `json:"labels"`
	Columns  []string `json:"columns"`
	Counts   [][]int  `json:"counts"`
}

// Build counts the labels of cat. Rows are the human labels of the commits
// that were predicted on, sorted, plus an Other row summing every other
// predicted label when there is any. Absent labels are not counted.
func Build(gt []groundtruth.Record, preds []record.DefectRecord, cat confusion.Category, canonicalize bool) Table {
	seen := make(map[string]bool)
	modelSet := make(map[string]bool)
	for _, p := range preds {
		if p.Model == record.HumanModel {
			continue
		}
		seen[p.Sha] = true
		modelSet[p.Model] = true
	}
	models := make([]string, 0, len(modelSet))
	for m := range modelSet {
		models = append(models, m)
	}
	slices.Sort(models)

	human := make(map[string]int)
	var labels []string
	for _, r := range gt {
		if !seen[r.Commit] {
			continue
		}
		if l, ok := cat.Label(extract.Pair{Type: r.Type, Qualifier: r.Qualifier}); ok {
			human[l]++
			labels = append(labels, l)
		}
	}
	universe := taxonomy.NewUniverse(labels)
	var canon *taxonomy.Canonicalizer
	if canonicalize {
		canon = taxonomy.NewCanonicalizer(universe)
	}

	col := make(map[string]int, len(models))
	for i, m := range models {
		col[m] = i
	}
	counts := make(map[string][]int)
	row := func(label string) []int {
		if counts[label] == nil {
			counts[label] = make([]int, len(models)+1)
		}
		return counts[label]
	}
	for _, l := range universe {
		row(l)[len(models)] = human[l]
	}
	for _, p := range preds {
		i, ok := col[p.Model]
		if !ok {
			continue
		}
		l, ok := cat.Label(p.Pair())
		if !ok {
			continue
		}
		row(universe.Bucket(canon.Canonical(l)))[i]++
	}

	rows := append([]string(nil), universe...)
	if _, ok := counts[taxonomy.Other]; ok && !universe.Contains(taxonomy.Other) {
		rows = append(rows, taxonomy.Other)
	}
	t := Table{
		Category: cat.Name(),
		Labels:   rows,
		Columns:  append(models, record.HumanModel),
		Counts:   make([][]int, len(rows)),
	}
	for i, l := range rows {
		t.Counts[i] = counts[l]
	}
	return t
}

// Percent returns each count as a percentage of its column total, rounded to
// two decimals. Empty columns are all 0.
func (t Table) Percent() [][]float64 {
	sums := make([]int, len(t.Columns))
	for _, row := range t.Counts {
		for j, c := range row {
			sums[j] += c
		}
	}
	out := make([][]float64, len(t.Counts))
	for i, row := range t.Counts {
		out[i] = make([]float64, len(row))
		for j, c := range row {
			if sums[j] > 0 {
				out[i][j] = score.Round2(float64(c) / float64(sums[j]) * 100)
			}
		}
	}
	return out
}
