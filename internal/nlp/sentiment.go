package nlp

import "math"

// Sentiment is the 4-tuple produced by the valence lexicon scorer.
// Neg/Neu/Pos are proportions in [0,1]; Compound is normalized to [-1,1].
type Sentiment struct {
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// normalization constant for the compound score (sum / sqrt(sum^2 + alpha)).
const compoundAlpha = 15.0

const (
	boosterIncr      = 0.293
	negationFlip     = -0.74
	negationLookback = 3
)

var boosterSet = map[string]float64{
	"very": boosterIncr, "really": boosterIncr, "extremely": boosterIncr,
	"absolutely": boosterIncr, "completely": boosterIncr, "so": boosterIncr,
	"totally": boosterIncr, "super": boosterIncr, "incredibly": boosterIncr,
	"barely": -boosterIncr, "hardly": -boosterIncr, "slightly": -boosterIncr,
	"somewhat": -boosterIncr, "kinda": -boosterIncr, "sorta": -boosterIncr,
	"marginally": -boosterIncr,
}

// ScoreSentiment computes lexicon-based sentiment over word tokens with a
// short negation window and booster scaling. Deterministic; no model I/O.
func ScoreSentiment(text string) Sentiment {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return Sentiment{Neu: 1}
	}

	valences := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, ok := valenceLexicon[tok.Lower]
		if !ok {
			continue
		}
		// Boosters and negations look back over the preceding window.
		for j := i - 1; j >= 0 && j >= i-negationLookback; j-- {
			prev := tokens[j].Lower
			if b, ok := boosterSet[prev]; ok && b != 0 {
				if v > 0 {
					v += b
				} else if v < 0 {
					v -= b
				}
			}
			if contains(negationSet, prev) {
				v *= negationFlip
			}
		}
		valences[i] = v
	}

	var posSum, negSum float64
	neuCount := 0
	total := 0.0
	for _, v := range valences {
		switch {
		case v > 0:
			posSum += v + 1
		case v < 0:
			negSum += v - 1
		default:
			neuCount++
		}
	}
	total = posSum + math.Abs(negSum) + float64(neuCount)
	if total == 0 {
		return Sentiment{Neu: 1}
	}

	var sum float64
	for _, v := range valences {
		sum += v
	}
	compound := sum / math.Sqrt(sum*sum+compoundAlpha)
	if compound > 1 {
		compound = 1
	} else if compound < -1 {
		compound = -1
	}

	return Sentiment{
		Neg:      math.Abs(negSum) / total,
		Neu:      float64(neuCount) / total,
		Pos:      posSum / total,
		Compound: compound,
	}
}

// valenceLexicon maps lowercase tokens to mean valence ratings on the
// [-4, +4] scale used by social-media sentiment lexicons.
var valenceLexicon = map[string]float64{
	// positive
	"good": 1.9, "great": 3.1, "greatest": 3.2, "awesome": 3.1, "amazing": 2.8,
	"excellent": 2.7, "fantastic": 2.6, "wonderful": 2.7, "love": 3.2, "loved": 2.9,
	"loves": 2.7, "loving": 2.9, "like": 1.5, "liked": 1.8, "likes": 1.6,
	"happy": 2.7, "happier": 2.6, "happiest": 3.2, "happiness": 2.6, "joy": 2.8,
	"glad": 2.0, "nice": 1.8, "fun": 2.3, "funny": 1.9, "cool": 1.3,
	"best": 3.2, "better": 1.9, "beautiful": 2.9, "lovely": 2.8, "sweet": 2.0,
	"enjoy": 2.2, "enjoyed": 2.3, "enjoying": 2.2, "excited": 2.4, "exciting": 2.2,
	"thanks": 1.9, "thank": 1.5, "thankful": 2.4, "grateful": 2.6, "perfect": 2.7,
	"win": 2.8, "winner": 2.8, "winning": 2.4, "won": 2.7, "yay": 2.4,
	"smile": 2.0, "smiling": 2.3, "laugh": 2.6, "laughing": 2.6, "cheerful": 2.5,
	"delighted": 2.9, "pleased": 1.9, "pleasant": 2.3, "positive": 2.4, "hope": 1.9,
	"hopeful": 2.3, "kind": 2.4, "friendly": 2.2, "comfortable": 1.9, "relaxed": 1.8,
	"calm": 1.3, "safe": 1.9, "support": 1.7, "supportive": 2.1, "proud": 2.1,
	"brilliant": 2.8, "fabulous": 2.7, "superb": 3.0, "stellar": 2.4, "adore": 2.9,
	// negative
	"bad": -2.5, "worse": -2.1, "worst": -3.1, "terrible": -2.1, "horrible": -2.5,
	"awful": -2.0, "hate": -2.7, "hated": -2.7, "hates": -2.3, "hating": -2.6,
	"sad": -2.1, "sadder": -2.3, "saddest": -2.7, "sadness": -2.2, "unhappy": -1.9,
	"angry": -2.3, "anger": -2.2, "mad": -2.2, "furious": -2.6, "annoyed": -1.8,
	"annoying": -1.7, "upset": -1.9, "cry": -2.1, "crying": -2.2, "tears": -1.2,
	"depressed": -2.3, "depressing": -1.9, "miserable": -2.8, "pain": -2.3,
	"painful": -2.2, "hurt": -2.1, "hurts": -1.9, "lonely": -2.0, "alone": -1.0,
	"afraid": -1.9, "scared": -1.9, "scary": -2.2, "fear": -2.1, "worried": -1.8,
	"worry": -1.6, "anxious": -1.6, "stress": -1.8, "stressed": -1.8, "tired": -1.3,
	"exhausted": -1.6, "sick": -1.7, "boring": -1.3, "bored": -1.2, "disappointed": -2.1,
	"disappointing": -2.2, "fail": -2.3, "failed": -2.3, "failure": -2.5, "lose": -1.6,
	"losing": -1.8, "lost": -1.3, "broken": -1.9, "wrong": -1.7, "problem": -1.6,
	"problems": -1.7, "trouble": -1.9, "ugly": -2.4, "stupid": -2.4, "dumb": -2.2,
	"suck": -1.5, "sucks": -1.5, "gross": -2.1, "disgusting": -2.4, "nasty": -2.4,
	"sorry": -0.3, "unfortunately": -1.3, "negative": -2.2, "die": -2.9, "death": -2.9,
}
