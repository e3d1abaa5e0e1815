package taxonomy_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/DiogoHD/LLM-and-ODC/internal/taxonomy"
)

func TestFold(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Missing", "missing"},
		{"  Checking ", "checking"},
		{"Algorithm/Method", "algorithm/method"},
		{"Intérface", "interface"},
	}
	for _, tt := range tests {
		if got := taxonomy.Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniverse(t *testing.T) {
	u := taxonomy.NewUniverse([]string{"Timing", "", "Checking", "Timing"})

	if diff := cmp.Diff(taxonomy.Universe{"Checking", "Timing"}, u); diff != "" {
		t.Errorf("NewUniverse mismatch (-want +got):\n%s", diff)
	}
	if got := u.Bucket("Timing"); got != "Timing" {
		t.Errorf("Bucket(Timing) = %q", got)
	}
	if got := u.Bucket("timing"); got != taxonomy.Other {
		t.Errorf("Bucket(timing) = %q, want Other", got)
	}
	if diff := cmp.Diff([]string{"Checking", "Timing", "Other"}, u.Labels()); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}
}

func TestUniverse_Empty(t *testing.T) {
	u := taxonomy.NewUniverse(nil)
	if diff := cmp.Diff([]string{"Other"}, u.Labels()); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}
	if got := u.Bucket("Missing"); got != taxonomy.Other {
		t.Errorf("Bucket on empty universe = %q, want Other", got)
	}
}

func TestUniverse_OtherIsGroundTruthLabel(t *testing.T) {
	u := taxonomy.NewUniverse([]string{"Other", "Algorithm"})
	if diff := cmp.Diff([]string{"Algorithm", "Other"}, u.Labels()); diff != "" {
		t.Errorf("Labels mismatch (-want +got):\n%s", diff)
	}
	if got := u.Bucket("Zed"); got != taxonomy.Other {
		t.Errorf("Bucket(Zed) = %q, want Other", got)
	}
}

func TestCanonicalizer(t *testing.T) {
	c := taxonomy.NewCanonicalizer([]string{"Algorithm/Method", "Missing"})

	tests := []struct{ in, want string }{
		{"algorithm/method", "Algorithm/Method"},
		{"MISSING", "Missing"},
		{"Missng", "Missng"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := c.Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	var nilC *taxonomy.Canonicalizer
	if got := nilC.Canonical("x"); got != "x" {
		t.Errorf("nil Canonicalizer changed label: %q", got)
	}
}
