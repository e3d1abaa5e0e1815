package confusion

import (
	"maps"
	"slices"
)

// Metrics summarises aligned pairs. Precision, Recall and F1 are averaged over
// labels weighted by their actual support; a label with a zero denominator
// scores 0.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Compute derives Metrics from aligned pairs.
func Compute(pairs []Aligned) Metrics {
	if len(pairs) == 0 {
		return Metrics{}
	}
	tp := make(map[string]int)
	predCount := make(map[string]int)
	support := make(map[string]int)
	correct := 0
	for _, p := range pairs {
		support[p.Actual]++
		predCount[p.Predicted]++
		if p.Actual == p.Predicted {
			tp[p.Actual]++
			correct++
		}
	}

	var m Metrics
	m.Accuracy = float64(correct) / float64(len(pairs))
	total := float64(len(pairs))
	for _, label := range slices.Sorted(maps.Keys(support)) {
		s := support[label]
		var prec, rec, f1 float64
		if predCount[label] > 0 {
			prec = float64(tp[label]) / float64(predCount[label])
		}
		rec = float64(tp[label]) / float64(s)
		if prec+rec > 0 {
			f1 = 2 * prec * rec / (prec + rec)
		}
		w := float64(s) / total
		m.Precision += w * prec
		m.Recall += w * rec
		m.F1 += w * f1
	}
	return m
}
