package nlp

import (
	"regexp"
	"strings"
)

// POS is the coarse part-of-speech class assigned by the rule tagger. Only
// the closed classes that drive style matching are distinguished; open-class
// words all map to POSOther.
type POS string

const (
	POSPronoun     POS = "PRON"
	POSDeterminer  POS = "DET"
	POSAdposition  POS = "ADP"
	POSCoordConj   POS = "CCONJ"
	POSSubordConj  POS = "SCONJ"
	POSAuxiliary   POS = "AUX"
	POSNegation    POS = "NEG"
	POSOther       POS = "X"
)

// Token is one word token with its lowercase form and tagged class.
type Token struct {
	Text  string
	Lower string
	POS   POS
}

var (
	wordRe       = regexp.MustCompile(`[A-Za-z0-9]+(?:'[A-Za-z0-9]+)*`)
	validTokenRe = regexp.MustCompile(`(?i)^[a-z0-9]+$|^n't$`)
	sentenceRe   = regexp.MustCompile(`[.!?]+`)
)

// contraction suffixes split off the way a trained tokenizer would.
var clitics = []string{"n't", "'s", "'m", "'re", "'ve", "'ll", "'d"}

// Tokenize splits text into word tokens, separating clitic contractions
// ("don't" -> "do", "n't") and tagging each token's closed-class POS.
// Punctuation and whitespace never produce tokens.
func Tokenize(text string) []Token {
	raw := wordRe.FindAllString(text, -1)
	if len(raw) == 0 {
		return nil
	}

	out := make([]Token, 0, len(raw)+2)
	for _, w := range raw {
		for _, piece := range splitClitics(w) {
			lower := strings.ToLower(piece)
			out = append(out, Token{Text: piece, Lower: lower, POS: Tag(lower)})
		}
	}
	return out
}

func splitClitics(word string) []string {
	lower := strings.ToLower(word)
	for _, suffix := range clitics {
		if len(lower) > len(suffix) && strings.HasSuffix(lower, suffix) {
			base := word[:len(word)-len(suffix)]
			tail := word[len(word)-len(suffix):]
			// "can't" -> "ca" + "n't": the n belongs to the clitic.
			return append(splitClitics(base), tail)
		}
	}
	return []string{word}
}

// ValidTokens filters tokens down to the ones style matching counts:
// plain alphanumerics plus the "n't" clitic.
func ValidTokens(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if validTokenRe.MatchString(t.Lower) {
			out = append(out, t)
		}
	}
	return out
}

// CountSentences estimates sentence count from terminal punctuation runs.
// Never returns less than 1 so per-sentence ratios stay defined.
func CountSentences(text string) int {
	n := 0
	for _, part := range sentenceRe.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	if n < 1 {
		return 1
	}
	return n
}
