// Package classify asks models to classify the files of ground-truth commits
// and stores their answers in the response tree read by record.Walk.
package classify

import (
	"fmt"
	"strings"

	"github.com/DiogoHD/LLM-and-ODC/internal/commits"
)

// ResponseFormat closes every prompt.
const ResponseFormat = "Your response should not provide an explanation and should only contain " +
	"the following response format for each defect you classify in each file:\n" +
	"Defect Type: <Defect Type>\n" +
	"Defect Qualifier: <Defect Qualifier>"

// Prompt is the question asked about one file of a commit.
type Prompt struct {
	File  string
	Text  string
	Patch commits.PatchSummary
}

// BuildPrompts returns one prompt per changed file, in commit order. Files
// without a textual patch (binaries, renames) are left out. maxPatchBytes
// limits the patch quoted in each prompt; <= 0 quotes it whole.
func BuildPrompts(c *commits.Commit, instruction string, maxPatchBytes int) []Prompt {
	var out []Prompt
	for _, f := range c.Files {
		if f.Patch == "" {
			continue
		}
		sum := commits.SummarizePatch(f.Patch, maxPatchBytes)

		var b strings.Builder
		b.WriteString(instruction)
		fmt.Fprintf(&b, "\n\nFile name: %s\nChanges: %d\nPatch (diff):\n%s", f.Filename, f.Changes, sum.Patch)
		if sum.Truncated {
			fmt.Fprintf(&b, "\n[patch truncated: %d of %d hunks shown, +%d -%d lines in total]", sum.Kept, sum.Hunks, sum.Added, sum.Deleted)
		}
		b.WriteString("\n\n")
		b.WriteString(ResponseFormat)

		out = append(out, Prompt{File: f.Filename, Text: b.String(), Patch: sum})
	}
	return out
}
