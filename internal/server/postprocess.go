package server

import (
	"regexp"
	"strings"

	"github.com/kagami-chat/kagami/internal/nlp"
	"github.com/kagami-chat/kagami/internal/style"
)

var (
	multiSpaceRe   = regexp.MustCompile(`\s{2,}`)
	bulletBreakRe  = regexp.MustCompile(`([^\n])(\n?)(\s*[*-]\s+)`)
	leadingListRe  = regexp.MustCompile(`^(\s*[*-]\s+)`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// postProcessResponse normalizes whitespace and list formatting in the raw
// model output. In the static condition it also strips emoji and informal
// lexicon hits so a drifting model cannot leak casual style into that arm.
func postProcessResponse(resp string, adaptive bool) string {
	out := resp
	if !adaptive {
		out = nlp.StripEmoji(out)
		out = style.StripInformal(out)
	}
	out = strings.TrimSpace(multiSpaceRe.ReplaceAllString(out, " "))
	out = bulletBreakRe.ReplaceAllString(out, "$1\n$3")
	out = leadingListRe.ReplaceAllString(out, "\n$1")
	out = strings.TrimSpace(multiSpaceRe.ReplaceAllString(out, " "))
	out = multiNewlineRe.ReplaceAllString(out, "\n\n")
	return out
}
