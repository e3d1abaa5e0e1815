package extract

import (
	"strings"
	"unicode"
)

// Field names a response is expected to report.
const (
	FieldType      = "Defect Type"
	FieldQualifier = "Defect Qualifier"
)

// Hit is one field occurrence found in a response, in document order.
type Hit struct {
	Field string // FieldType or FieldQualifier
	Value string
}

// valueTrim is stripped from both ends of a captured value.
const valueTrim = "'\",*()"

var fieldNames = []struct {
	field string
	runes []rune
}{
	{FieldType, []rune(strings.ToLower(FieldType))},
	{FieldQualifier, []rune(strings.ToLower(FieldQualifier))},
}

// FindHits scans text for "Defect Type" and "Defect Qualifier" labels and
// captures the word that follows each one.
//
// A label matches with at most one edit (insertion, deletion or substitution),
// case-insensitively. It must be followed by optional whitespace, one of
// ':', '-', '–' or '—', optional whitespace, an optional enumeration such as
// "2)", and any run of '*', '(', '<', '[', '{' or whitespace. The value is the
// longest run of ASCII letters and '/' after that. Matches never overlap.
func FindHits(text string) []Hit {
	rs := []rune(text)
	var hits []Hit
	for i := 0; i < len(rs); {
		h, next, ok := matchAt(rs, i)
		if !ok {
			i++
			continue
		}
		hits = append(hits, h)
		i = next
	}
	return hits
}

// matchAt tries every field name anchored at rs[i]. Exact-length candidates
// are tried before the shorter (deletion) and longer (insertion) ones.
func matchAt(rs []rune, i int) (Hit, int, bool) {
	for _, fn := range fieldNames {
		m := len(fn.runes)
		for _, n := range [...]int{m, m - 1, m + 1} {
			if i+n > len(rs) || !withinOneEdit(rs[i:i+n], fn.runes) {
				continue
			}
			if value, next, ok := captureValue(rs, i+n); ok {
				return Hit{Field: fn.field, Value: value}, next, true
			}
		}
	}
	return Hit{}, 0, false
}

// captureValue parses the separator and decoration after a label ending at
// rs[j] and returns the cleaned value plus the index just past it.
func captureValue(rs []rune, j int) (string, int, bool) {
	j = skip(rs, j, unicode.IsSpace)
	if j >= len(rs) || !isSeparator(rs[j]) {
		return "", 0, false
	}
	j = skip(rs, j+1, unicode.IsSpace)

	if j < len(rs) && isASCIIDigit(rs[j]) {
		j = skip(rs, j, isASCIIDigit)
		if j < len(rs) && rs[j] == ')' {
			j++
		}
		j = skip(rs, j, unicode.IsSpace)
	}
	j = skip(rs, j, isDecoration)

	start := j
	j = skip(rs, j, isValueRune)
	if j == start {
		return "", 0, false
	}
	value := strings.Trim(string(rs[start:j]), valueTrim)
	if value == "" {
		return "", 0, false
	}
	return value, j, true
}

func skip(rs []rune, j int, pred func(rune) bool) int {
	for j < len(rs) && pred(rs[j]) {
		j++
	}
	return j
}

func isSeparator(r rune) bool {
	switch r {
	case ':', '-', '–', '—':
		return true
	}
	return false
}

func isDecoration(r rune) bool {
	switch r {
	case '*', '(', '<', '[', '{':
		return true
	}
	return unicode.IsSpace(r)
}

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

func isValueRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '/'
}

// withinOneEdit reports whether seg can be turned into name (already lower
// case) with at most one insertion, deletion or substitution, ignoring case.
func withinOneEdit(seg, name []rune) bool {
	switch len(seg) - len(name) {
	case 0:
		diff := 0
		for k := range seg {
			if unicode.ToLower(seg[k]) != name[k] {
				diff++
				if diff > 1 {
					return false
				}
			}
		}
		return true
	case -1:
		return dropsOne(name, seg, true)
	case 1:
		return dropsOne(seg, name, false)
	default:
		return false
	}
}

// dropsOne reports whether removing one rune from long yields short.
// foldShort says the short side is the text and still needs lower-casing.
func dropsOne(long, short []rune, foldShort bool) bool {
	eq := func(a, b rune) bool {
		if foldShort {
			return a == unicode.ToLower(b)
		}
		return unicode.ToLower(a) == b
	}
	k := 0
	for k < len(short) && eq(long[k], short[k]) {
		k++
	}
	for ; k < len(short); k++ {
		if !eq(long[k+1], short[k]) {
			return false
		}
	}
	return true
}
