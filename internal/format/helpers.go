package format

import "fmt"

// FmtPercent formats an already-scaled percentage with two decimals.
func FmtPercent(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FmtRatio formats a 0..1 ratio with four decimals.
func FmtRatio(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
