// Package extract turns free-text model responses into defect classification
// pairs. The pipeline is StripThink -> FindHits -> Assemble -> Dedup; Defects
// runs all four.
package extract

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// StripThink removes the reasoning preamble some models emit.
//
//   - no "<think>" at all: text is returned unchanged
//   - "<think>" without any "</think>": the whole text is unterminated
//     reasoning and "" is returned
//   - otherwise everything up to and including the last "</think>" is dropped
//
// The last rule also drops any answer text that sat between two think blocks.
func StripThink(text string) string {
	if !strings.Contains(text, thinkOpen) {
		return text
	}
	end := strings.LastIndex(text, thinkClose)
	if end < 0 {
		return ""
	}
	return text[end+len(thinkClose):]
}
