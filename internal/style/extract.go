package style

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kagami-chat/kagami/internal/nlp"
)

var (
	// informalRe covers chat slang, stacked terminal punctuation, stretched
	// laughter and a couple of text-native emoticons. Character elongation
	// ("sooo") needs a backreference, so countElongated handles it.
	informalRe = regexp.MustCompile(
		`(?i)\b(lol|lmao|rofl|bruh|bro|dude|yo|chill|fam|lit|dope|yolo|savage|no cap|omg|idk|btw|tbh|smh|omfg|wtf|idc|fyi|rn|lmk|hbu|wyd|tf|ngl|ikr|fr|af|imo|imho|gotcha|gimme|gonna|wanna|gotta|kinda|sorta|sup|wassup|hella|nah|yea|yep|vibing|vibe)\b` +
			`|([!?]{2,})` +
			`|(\b(ha|he|hi){2,}\b)` +
			`|(<3|¯\\_\(ツ\)_/¯)`)

	hedgingRe = regexp.MustCompile(
		`\b(maybe|probably|possibly|perhaps|might|could|seems|appears|suggests|i think|i guess|idk|not sure|kind of|sort of|somewhat|a bit|i suppose)\b`)

	questionOpenerRe = regexp.MustCompile(
		`^\s*(who|what|when|where|why|how|is|are|am|was|were|do|does|did|can|could|should|would|will|shall|may|might|have|has|had)\b`)

	pronounIRe   = regexp.MustCompile(`\bi\b`)
	pronounYouRe = regexp.MustCompile(`\byou\b`)
	pronounWeRe  = regexp.MustCompile(`\bwe\b`)

	elongatedRe = regexp.MustCompile(`aaa+|bbb+|ccc+|ddd+|eee+|fff+|ggg+|hhh+|iii+|jjj+|kkk+|lll+|mmm+|nnn+|ooo+|ppp+|qqq+|rrr+|sss+|ttt+|uuu+|vvv+|www+|xxx+|yyy+|zzz+`)
)

// Meta-request keyword families, checked in order. First family with a hit
// wins.
var metaRequestRules = []struct {
	request MetaRequest
	re      *regexp.Regexp
}{
	{MetaShorter, regexp.MustCompile(`\b(shorter|short|concise|brief|less text|too long)\b`)},
	{MetaLonger, regexp.MustCompile(`\b(longer|long|lengthy|elaborate|more detail|more details)\b`)},
	{MetaSimpler, regexp.MustCompile(`\b(simpler|simple|easier|easy)\b`)},
}

const shortTurnTokens = 10

// Extractor derives Style Profiles from raw text. The optional model
// service adds the learned informality probability; without it the
// dependent field stays nil. A bounded FIFO cache memoizes exact-text
// repeats.
type Extractor struct {
	models *nlp.Service

	mu        sync.Mutex
	cache     map[string]Profile
	cacheKeys []string
	capacity  int
}

// NewExtractor builds an extractor with the given memoization capacity.
// models may be nil; the extractor then always produces nil model fields.
func NewExtractor(models *nlp.Service, cacheCapacity int) *Extractor {
	if cacheCapacity <= 0 {
		cacheCapacity = 100
	}
	return &Extractor{
		models:   models,
		cache:    make(map[string]Profile, cacheCapacity),
		capacity: cacheCapacity,
	}
}

// Extract computes the Style Profile for text. It never fails: missing
// models degrade the dependent fields to nil and empty input is treated as
// a single whitespace token so every ratio stays defined.
func (e *Extractor) Extract(text string) Profile {
	e.mu.Lock()
	if p, ok := e.cache[text]; ok {
		e.mu.Unlock()
		return p
	}
	e.mu.Unlock()

	key := text
	if text == "" {
		text = " "
	}

	tokens := nlp.Tokenize(text)
	wordCount := len(tokens)
	denom := float64(wordCount)
	if denom < 1 {
		denom = 1
	}
	lower := strings.ToLower(text)
	trimmed := strings.TrimSpace(text)

	var informality *float64
	if e.models != nil {
		informality = e.models.Informality(text)
	}

	sentiment := nlp.AdjustSentimentForEmoji(nlp.ScoreSentiment(text), text)
	readability := nlp.ScoreReadability(text)

	runeTotal := 0
	functionWords := 0
	for _, t := range tokens {
		runeTotal += utf8.RuneCountInString(t.Text)
		if nlp.IsFunctionWord(t.Lower) {
			functionWords++
		}
	}

	p := Profile{
		WordCount:          wordCount,
		InformalScoreRegex: float64(countInformal(lower)) / denom,
		InformalityModel:   informality,
		HedgingScore:       float64(len(hedgingRe.FindAllString(lower, -1))) / denom,
		Emoji:              nlp.HasEmoji(text),
		Questioning:        isQuestion(trimmed, lower),
		Exclamatory:        strings.Contains(text, "!"),
		Short:              wordCount <= shortTurnTokens,
		QuestionCount:      strings.Count(text, "?"),
		ExclamationCount:   strings.Count(text, "!"),
		MetaRequest:        detectMetaRequest(lower),
		Sentiment:          sentiment,
		AvgSentenceLength:  float64(wordCount) / float64(nlp.CountSentences(text)),
		AvgWordLength:      float64(runeTotal) / denom,
		ReadingEase:        readability.ReadingEase,
		GradeLevel:         readability.GradeLevel,
		FunctionWordRatio:  float64(functionWords) / denom,
		Categories:         nlp.ScoreCategories(tokens),
		Pronouns: PronounProfile{
			I:   pronounIRe.MatchString(lower),
			You: pronounYouRe.MatchString(lower),
			We:  pronounWeRe.MatchString(lower),
		},
	}

	e.mu.Lock()
	if _, ok := e.cache[key]; !ok {
		if len(e.cacheKeys) >= e.capacity {
			oldest := e.cacheKeys[0]
			e.cacheKeys = e.cacheKeys[1:]
			delete(e.cache, oldest)
		}
		e.cache[key] = p
		e.cacheKeys = append(e.cacheKeys, key)
	}
	e.mu.Unlock()

	return p
}

func countInformal(lower string) int {
	return len(informalRe.FindAllString(lower, -1)) + len(elongatedRe.FindAllString(lower, -1))
}

// StripInformal removes informal-lexicon hits from text. The static
// condition's response post-processing uses it so the non-adaptive arm stays
// register-stable even when the model drifts.
func StripInformal(text string) string {
	return informalRe.ReplaceAllString(text, "")
}

// isQuestion treats trailing emoji as decoration: "maybe?? 😂" is still a
// question.
func isQuestion(trimmed, lower string) bool {
	tail := strings.TrimSpace(nlp.StripEmoji(trimmed))
	if strings.HasSuffix(tail, "?") {
		return true
	}
	return questionOpenerRe.MatchString(lower)
}

func detectMetaRequest(lower string) MetaRequest {
	for _, rule := range metaRequestRules {
		if rule.re.MatchString(lower) {
			return rule.request
		}
	}
	return MetaNone
}
