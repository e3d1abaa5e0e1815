// Package taxonomy holds the label universe a category is scored against and
// the folding used to line predicted labels up with ground-truth spellings.
package taxonomy

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Other collects every predicted label outside the ground-truth universe.
const Other = "Other"

// Fold reduces s to a comparison key: accents removed, lower case, outer
// whitespace trimmed. It is never stored or shown.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Universe is the sorted set of distinct ground-truth labels for a category.
// It never grows from predictions.
type Universe []string

// NewUniverse builds a universe from ground-truth labels. Empty labels are
// ignored.
func NewUniverse(labels []string) Universe {
	u := make(Universe, 0, len(labels))
	for _, l := range labels {
		if l != "" {
			u = append(u, l)
		}
	}
	slices.Sort(u)
	return slices.Compact(u)
}

// Contains reports whether label is in u exactly.
func (u Universe) Contains(label string) bool {
	_, ok := slices.BinarySearch(u, label)
	return ok
}

// Bucket returns label when u contains it and Other otherwise.
func (u Universe) Bucket(label string) string {
	if u.Contains(label) {
		return label
	}
	return Other
}

// Labels returns the universe followed by Other: the row and column order of
// a confusion matrix. Other appears once even when it is a ground-truth label.
func (u Universe) Labels() []string {
	out := make([]string, 0, len(u)+1)
	out = append(out, u...)
	if u.Contains(Other) {
		return out
	}
	return append(out, Other)
}

// Canonicalizer rewrites predicted labels to the ground-truth spelling when
// the two are equal under Fold.
type Canonicalizer struct {
	byKey map[string]string
}

// NewCanonicalizer indexes the known spellings. When two spellings fold to the
// same key the first one wins.
func NewCanonicalizer(known []string) *Canonicalizer {
	c := &Canonicalizer{byKey: make(map[string]string, len(known))}
	for _, k := range known {
		if k == "" {
			continue
		}
		key := Fold(k)
		if _, dup := c.byKey[key]; !dup {
			c.byKey[key] = k
		}
	}
	return c
}

// Canonical returns the known spelling of label, or label unchanged. A nil
// Canonicalizer is the identity.
func (c *Canonicalizer) Canonical(label string) string {
	if c == nil || label == "" {
		return label
	}
	if k, ok := c.byKey[Fold(label)]; ok {
		return k
	}
	return label
}
