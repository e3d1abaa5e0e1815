// Package confusion builds per-model confusion matrices over a fixed
// ground-truth label universe after greedy multiset alignment.
package confusion

import (
	"fmt"
	"strings"

	"github.com/DiogoHD/LLM-and-ODC/internal/extract"
)

// LabelSep joins the component labels of a composite category.
const LabelSep = "_"

// Category selects the label a defect is scored on: one field, or several
// fields joined into one composite label.
type Category struct {
	fields []string
}

// Single is a one-field category.
func Single(field string) Category { return Category{fields: []string{field}} }

// Composite joins fields, in order, into one label.
func Composite(fields ...string) Category {
	return Category{fields: append([]string(nil), fields...)}
}

// ParseCategory accepts a field name, a short alias (type, qualifier) or
// several of those joined with '+'.
func ParseCategory(s string) (Category, error) {
	var fields []string
	for _, part := range strings.Split(s, "+") {
		f, err := fieldName(strings.TrimSpace(part))
		if err != nil {
			return Category{}, err
		}
		fields = append(fields, f)
	}
	return Composite(fields...), nil
}

// CategoryFromFields builds a category from a list of field names or aliases.
func CategoryFromFields(names []string) (Category, error) {
	if len(names) == 0 {
		return Category{}, fmt.Errorf("empty category")
	}
	fields := make([]string, 0, len(names))
	for _, n := range names {
		f, err := fieldName(n)
		if err != nil {
			return Category{}, err
		}
		fields = append(fields, f)
	}
	return Composite(fields...), nil
}

func fieldName(s string) (string, error) {
	switch strings.ToLower(s) {
	case "type", "defect type", "defect_type":
		return extract.FieldType, nil
	case "qualifier", "defect qualifier", "defect_qualifier":
		return extract.FieldQualifier, nil
	}
	return "", fmt.Errorf("unknown category field %q", s)
}

// Fields returns the component field names.
func (c Category) Fields() []string { return append([]string(nil), c.fields...) }

// IsComposite reports whether more than one field is joined.
func (c Category) IsComposite() bool { return len(c.fields) > 1 }

// Name is the field names joined with LabelSep.
func (c Category) Name() string { return strings.Join(c.fields, LabelSep) }

// Label returns the category label of p. It is absent when any component
// value is absent.
func (c Category) Label(p extract.Pair) (string, bool) {
	parts := make([]string, 0, len(c.fields))
	for _, f := range c.fields {
		var v string
		switch f {
		case extract.FieldType:
			v = p.Type
		case extract.FieldQualifier:
			v = p.Qualifier
		}
		if v == "" {
			return "", false
		}
		parts = append(parts, v)
	}
	return strings.Join(parts, LabelSep), len(parts) > 0
}
