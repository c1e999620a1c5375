package nlp

// Closed-class lexicons for the rule tagger. Style matching only needs the
// function-word classes, so membership lookup over fixed sets stands in for
// a statistical tagger.

var pronounSet = stringSet(
	"i", "me", "my", "mine", "myself",
	"you", "your", "yours", "yourself", "yourselves",
	"we", "us", "our", "ours", "ourselves",
	"he", "him", "his", "himself",
	"she", "her", "hers", "herself",
	"it", "its", "itself",
	"they", "them", "their", "theirs", "themselves",
	"who", "whom", "whose", "which", "what",
	"somebody", "someone", "something",
	"anybody", "anyone", "anything",
	"nobody", "everybody", "everyone", "everything",
)

var determinerSet = stringSet(
	"a", "an", "the",
	"this", "that", "these", "those",
	"each", "every", "either", "neither",
	"some", "any", "no", "all", "both", "few", "many", "much", "several",
	"another", "such",
)

var adpositionSet = stringSet(
	"in", "on", "at", "by", "for", "with", "about", "against", "between",
	"into", "through", "during", "before", "after", "above", "below",
	"to", "from", "up", "down", "over", "under", "of", "off", "onto",
	"within", "without", "across", "along", "around", "behind", "beside",
	"beyond", "near", "toward", "towards", "upon",
)

var coordConjSet = stringSet("and", "but", "or", "nor", "so", "yet")

var subordConjSet = stringSet(
	"while", "whereas", "although", "though", "because", "since", "if",
	"unless", "until", "when", "whenever", "as", "whether", "once",
)

var auxiliarySet = stringSet(
	"am", "is", "are", "was", "were", "be", "being", "been",
	"have", "has", "had", "having",
	"do", "does", "did",
	"will", "would", "shall", "should", "may", "might", "must", "can", "could",
)

var negationSet = stringSet(
	"no", "not", "never", "none", "nobody", "n't", "nothing", "nowhere",
	"neither", "ain't", "don't", "isn't", "wasn't", "weren't", "haven't",
	"hasn't", "hadn't", "didn't", "won't", "wouldn't", "shan't", "shouldn't",
	"mightn't", "mustn't", "can't", "couldn't",
)

// functionWordSet is the closed set backing the function-word ratio feature.
var functionWordSet = buildFunctionWords()

func buildFunctionWords() map[string]struct{} {
	out := stringSet(
		"i", "you", "we", "he", "she", "they", "me", "him", "her", "us", "them",
		"a", "an", "the",
		"in", "on", "at", "by", "for", "with", "about", "against", "between",
		"into", "through", "during", "before", "after", "above", "below",
		"to", "from", "up", "down", "over", "under",
	)
	for _, set := range []map[string]struct{}{auxiliarySet, coordConjSet, subordConjSet, negationSet} {
		for w := range set {
			out[w] = struct{}{}
		}
	}
	return out
}

// Tag assigns the closed-class POS for a lowercase token. Negation outranks
// the other classes so "no"/"not" count toward negation, not determiners.
func Tag(lower string) POS {
	switch {
	case lower == "not" || lower == "n't":
		return POSNegation
	case contains(pronounSet, lower):
		return POSPronoun
	case contains(determinerSet, lower):
		return POSDeterminer
	case contains(adpositionSet, lower):
		return POSAdposition
	case contains(coordConjSet, lower):
		return POSCoordConj
	case contains(subordConjSet, lower):
		return POSSubordConj
	case contains(auxiliarySet, lower):
		return POSAuxiliary
	default:
		return POSOther
	}
}

// IsFunctionWord reports membership in the fixed function-word set.
func IsFunctionWord(lower string) bool {
	return contains(functionWordSet, lower)
}

func stringSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func contains(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}
