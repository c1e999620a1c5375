package nlp

// CategoryScores holds normalized hits for the three coarse word-category
// families used by the style profile. Each value is hits / word count and
// defaults to 0.0 on empty input.
type CategoryScores struct {
	Social    float64 `json:"social"`
	Cognitive float64 `json:"cognitive"`
	Affect    float64 `json:"affect"`
}

var socialSet = stringSet(
	"we", "us", "our", "ours", "you", "your", "yours",
	"friend", "friends", "family", "families", "people", "person",
	"talk", "talking", "talked", "chat", "chatting", "share", "sharing",
	"together", "team", "partner", "partners", "neighbor", "neighbors",
	"mom", "dad", "mother", "father", "brother", "sister", "parent", "parents",
	"child", "children", "kid", "kids", "wife", "husband", "girlfriend", "boyfriend",
	"meet", "meeting", "visit", "visiting", "community", "social", "everyone",
	"call", "called", "calling", "tell", "telling", "told", "listen", "listening",
)

var cognitiveSet = stringSet(
	"think", "thinks", "thinking", "thought", "thoughts",
	"know", "knows", "knowing", "knew", "known",
	"because", "cause", "reason", "reasons", "effect",
	"consider", "considering", "understand", "understands", "understanding",
	"realize", "realized", "believe", "believes", "believed",
	"wonder", "wondering", "guess", "guessing", "assume", "assuming",
	"maybe", "perhaps", "possibly", "probably", "likely",
	"should", "would", "could", "ought",
	"question", "questions", "idea", "ideas", "remember", "remembered",
	"decide", "decided", "deciding", "figure", "figured", "learn", "learning",
	"mean", "means", "meaning", "sense", "logic", "logical",
)

var affectSet = stringSet(
	"happy", "happiness", "glad", "joy", "joyful", "love", "loves", "loved",
	"like", "likes", "liked", "excited", "exciting", "fun", "funny",
	"sad", "sadness", "unhappy", "cry", "crying", "hurt", "hurts",
	"angry", "anger", "mad", "hate", "hates", "hated", "annoyed", "annoying",
	"afraid", "scared", "scary", "fear", "worried", "worry", "anxious",
	"great", "good", "bad", "terrible", "awful", "wonderful", "amazing",
	"awesome", "horrible", "nice", "sweet", "ugly", "beautiful", "lovely",
	"stress", "stressed", "relaxed", "calm", "comfortable", "lonely",
	"proud", "grateful", "thankful", "hopeful", "upset", "miserable",
)

// ScoreCategories counts social, cognitive and affect hits over word tokens
// and normalizes by max(1, word count).
func ScoreCategories(tokens []Token) CategoryScores {
	denom := float64(len(tokens))
	if denom < 1 {
		denom = 1
	}
	var social, cognitive, affect int
	for _, t := range tokens {
		if contains(socialSet, t.Lower) {
			social++
		}
		if contains(cognitiveSet, t.Lower) {
			cognitive++
		}
		if contains(affectSet, t.Lower) {
			affect++
		}
	}
	return CategoryScores{
		Social:    float64(social) / denom,
		Cognitive: float64(cognitive) / denom,
		Affect:    float64(affect) / denom,
	}
}
