package extract

import (
	"cmp"
	"slices"
)

// Pair is one defect classification. An empty slot means the response never
// supplied that field for this defect; captured values are never empty.
type Pair struct {
	Type      string `json:"defect_type,omitempty"`
	Qualifier string `json:"defect_qualifier,omitempty"`
}

// HasType reports whether the type slot was filled.
func (p Pair) HasType() bool { return p.Type != "" }

// HasQualifier reports whether the qualifier slot was filled.
func (p Pair) HasQualifier() bool { return p.Qualifier != "" }

// Assemble groups hits into pairs in document order. A hit fills its slot in
// the most recently opened pair when that slot is still empty; otherwise it
// opens a new pair. Pairs left with an empty slot are kept.
func Assemble(hits []Hit) []Pair {
	var pairs []Pair
	for _, h := range hits {
		last := len(pairs) - 1
		switch h.Field {
		case FieldType:
			if last >= 0 && !pairs[last].HasType() {
				pairs[last].Type = h.Value
			} else {
				pairs = append(pairs, Pair{Type: h.Value})
			}
		case FieldQualifier:
			if last >= 0 && !pairs[last].HasQualifier() {
				pairs[last].Qualifier = h.Value
			} else {
				pairs = append(pairs, Pair{Qualifier: h.Value})
			}
		}
	}
	return pairs
}

// Dedup drops repeated pairs. The result is sorted by type then qualifier so
// that output is stable; callers should still treat it as a set.
func Dedup(pairs []Pair) []Pair {
	if len(pairs) == 0 {
		return nil
	}
	seen := make(map[Pair]struct{}, len(pairs))
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	slices.SortFunc(out, comparePairs)
	return out
}

func comparePairs(a, b Pair) int {
	return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.Qualifier, b.Qualifier))
}

// Defects runs the whole pipeline on a raw model response.
func Defects(text string) []Pair {
	return Dedup(Assemble(FindHits(StripThink(text))))
}
