// Package score compares predicted defects with ground truth per commit using
// multiset semantics and accumulates per-model accuracy tables.
package score

// Bag is a multiset: item -> multiplicity.
type Bag[T comparable] map[T]int

// NewBag counts items.
func NewBag[T comparable](items []T) Bag[T] {
	b := make(Bag[T], len(items))
	for _, it := range items {
		b[it]++
	}
	return b
}

// Len is the total multiplicity.
func (b Bag[T]) Len() int {
	n := 0
	for _, c := range b {
		n += c
	}
	return n
}

// Intersect keeps min(a[k], b[k]) of every item.
func Intersect[T comparable](a, b Bag[T]) Bag[T] {
	out := make(Bag[T])
	for k, ca := range a {
		if c := min(ca, b[k]); c > 0 {
			out[k] = c
		}
	}
	return out
}

// Subtract keeps a[k]-b[k] of every item where that is positive.
func Subtract[T comparable](a, b Bag[T]) Bag[T] {
	out := make(Bag[T])
	for k, ca := range a {
		if c := ca - b[k]; c > 0 {
			out[k] = c
		}
	}
	return out
}

// Match counts correct = |truth ∩ pred| and incorrect = |pred \ truth|.
// Items for which present returns false can never be correct: they are
// dropped from truth and always land in incorrect when predicted. Ground
// truth left unmatched is not counted.
func Match[T comparable](truth, pred []T, present func(T) bool) Counts {
	h := make(Bag[T], len(truth))
	for _, t := range truth {
		if present(t) {
			h[t]++
		}
	}
	p := NewBag(pred)
	correct := 0
	for k, c := range Intersect(p, h) {
		if present(k) {
			correct += c
		}
	}
	return Counts{Correct: correct, Incorrect: p.Len() - correct}
}
