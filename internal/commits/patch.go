package commits

import (
	"bytes"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// PatchSummary describes a file patch after it has been fitted into a prompt.
type PatchSummary struct {
	Added     int  // '+' lines in the full patch
	Deleted   int  // '-' lines in the full patch
	Hunks     int  // hunks in the full patch; 0 when it did not parse
	Kept      int  // hunks present in Patch
	Truncated bool // Patch is shorter than the input
	Patch     string
}

// SummarizePatch counts the changed lines of a unified-diff patch and cuts it
// down to at most maxBytes, dropping whole trailing hunks. When the patch does
// not parse, or even the first hunk is too large, it is cut at the last line
// break that fits instead. maxBytes <= 0 disables the limit.
func SummarizePatch(patch string, maxBytes int) PatchSummary {
	if patch == "" {
		return PatchSummary{}
	}

	hunks, err := diff.ParseHunks([]byte(patch))
	if err != nil || len(hunks) == 0 {
		s := PatchSummary{}
		s.Added, s.Deleted = countChanges([]byte(patch), true)
		s.Patch, s.Truncated = cutAtLine(patch, maxBytes)
		return s
	}

	s := PatchSummary{Hunks: len(hunks), Kept: len(hunks), Patch: patch}
	for _, h := range hunks {
		a, d := countChanges(h.Body, false)
		s.Added += a
		s.Deleted += d
	}
	if maxBytes <= 0 || len(patch) <= maxBytes {
		return s
	}

	var kept []byte
	s.Kept = 0
	for _, h := range hunks {
		out, err := diff.PrintHunks([]*diff.Hunk{h})
		if err != nil || len(kept)+len(out) > maxBytes {
			break
		}
		kept = append(kept, out...)
		s.Kept++
	}
	s.Truncated = true
	if s.Kept == 0 {
		s.Patch, _ = cutAtLine(patch, maxBytes)
		return s
	}
	s.Patch = string(kept)
	return s
}

// countChanges counts added and deleted lines. fileHeaders skips the
// "--- a/x" and "+++ b/x" lines of a raw diff.
func countChanges(body []byte, fileHeaders bool) (added, deleted int) {
	for line := range bytes.Lines(body) {
		switch {
		case fileHeaders && (bytes.HasPrefix(line, []byte("+++ ")) || bytes.HasPrefix(line, []byte("--- "))):
		case len(line) > 0 && line[0] == '+':
			added++
		case len(line) > 0 && line[0] == '-':
			deleted++
		}
	}
	return added, deleted
}

// cutAtLine returns the longest prefix of s that ends on a line break and
// fits in max bytes. A first line longer than max is cut mid-line.
func cutAtLine(s string, max int) (string, bool) {
	if max <= 0 || len(s) <= max {
		return s, false
	}
	head := s[:max]
	if i := strings.LastIndexByte(head, '\n'); i >= 0 {
		return head[:i+1], true
	}
	return head, true
}
