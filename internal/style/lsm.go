package style

import "github.com/kagami-chat/kagami/internal/nlp"

// Linguistic style matching compares function-word category frequencies
// between two spans. Both the epsilon and the neutral sentinel are part of
// the output contract and must not change.
const (
	lsmEpsilon = 0.0001

	// NeutralLSM is returned when either span carries too little signal,
	// and is the prior for a fresh conversation.
	NeutralLSM = 0.5
)

// DefaultMinLSMTokens is the scoring floor: spans below it get the neutral
// sentinel instead of a computed score.
const DefaultMinLSMTokens = 5

var lsmCategories = []struct {
	name  string
	match func(nlp.POS) bool
}{
	{"pronouns", func(p nlp.POS) bool { return p == nlp.POSPronoun }},
	{"articles", func(p nlp.POS) bool { return p == nlp.POSDeterminer }},
	{"prepositions_conjunctions", func(p nlp.POS) bool {
		return p == nlp.POSAdposition || p == nlp.POSSubordConj || p == nlp.POSCoordConj
	}},
	{"aux_verbs", func(p nlp.POS) bool { return p == nlp.POSAuxiliary }},
	{"negations", func(p nlp.POS) bool { return p == nlp.POSNegation }},
}

// LSM scores the style match between two texts in [0,1]. Either side having
// fewer than minTokens valid tokens yields NeutralLSM exactly. Per category
// the match is 1 - |fs - ft| / (fs + ft + eps); the final score is the
// arithmetic mean over the five categories.
func LSM(source, target string, minTokens int) float64 {
	if minTokens <= 0 {
		minTokens = DefaultMinLSMTokens
	}
	src := nlp.ValidTokens(nlp.Tokenize(source))
	tgt := nlp.ValidTokens(nlp.Tokenize(target))
	if len(src) < minTokens || len(tgt) < minTokens {
		return NeutralLSM
	}

	total := 0.0
	for _, cat := range lsmCategories {
		fs := categoryFreq(src, cat.match)
		ft := categoryFreq(tgt, cat.match)
		diff := fs - ft
		if diff < 0 {
			diff = -diff
		}
		total += 1 - diff/(fs+ft+lsmEpsilon)
	}
	return total / float64(len(lsmCategories))
}

func categoryFreq(tokens []nlp.Token, match func(nlp.POS) bool) float64 {
	count := 0
	for _, t := range tokens {
		if match(t.POS) {
			count++
		}
	}
	return float64(count) / float64(len(tokens))
}

// ValidTokenCount reports how many tokens of text survive the valid-token
// filter; the smoother uses it for its eligibility floor.
func ValidTokenCount(text string) int {
	return len(nlp.ValidTokens(nlp.Tokenize(text)))
}
