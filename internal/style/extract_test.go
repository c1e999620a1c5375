package style

import (
	"fmt"
	"testing"
)

func newTestExtractor() *Extractor {
	return NewExtractor(nil, 100)
}

func TestExtractInformalText(t *testing.T) {
	p := newTestExtractor().Extract("lol idk maybe?? 😂")

	if !p.Emoji {
		t.Fatalf("emoji should be detected")
	}
	if !p.Questioning {
		t.Fatalf("trailing ?? should read as a question even with emoji after it")
	}
	if !p.Short {
		t.Fatalf("3-word turn should be short")
	}
	if p.InformalScoreRegex <= 0 {
		t.Fatalf("slang should produce a nonzero informal score")
	}
	if p.HedgingScore <= 0 {
		t.Fatalf("maybe/idk should produce a nonzero hedging score")
	}
	if p.QuestionCount != 2 {
		t.Fatalf("question count = %d, want 2", p.QuestionCount)
	}
	if p.InformalityModel != nil {
		t.Fatalf("no model service means nil informality, got %v", *p.InformalityModel)
	}
}

func TestExtractFormalText(t *testing.T) {
	p := newTestExtractor().Extract("I would appreciate your perspective, if you have a moment.")

	if p.InformalScoreRegex != 0 {
		t.Fatalf("formal sentence should have zero informal score, got %v", p.InformalScoreRegex)
	}
	if p.Emoji || p.Exclamatory {
		t.Fatalf("no emoji or exclamation expected")
	}
	if !p.Pronouns.I || !p.Pronouns.You {
		t.Fatalf("both I and you should be present: %+v", p.Pronouns)
	}
	if p.ReadingEase == nil || p.GradeLevel == nil {
		t.Fatalf("readability should be computed for plain prose")
	}
}

func TestExtractEmptyInput(t *testing.T) {
	p := newTestExtractor().Extract("")

	if p.WordCount != 0 {
		t.Fatalf("empty input has zero words, got %d", p.WordCount)
	}
	if p.InformalScoreRegex != 0 || p.HedgingScore != 0 || p.FunctionWordRatio != 0 {
		t.Fatalf("ratios should be zero, not NaN: %+v", p)
	}
	if p.ReadingEase != nil {
		t.Fatalf("readability should be nil for empty input")
	}
	if p.MetaRequest != MetaNone {
		t.Fatalf("meta request should be none, got %q", p.MetaRequest)
	}
}

func TestExtractRatiosStayInBounds(t *testing.T) {
	texts := []string{
		"lol idk maybe?? 😂",
		"I would appreciate your perspective on this matter.",
		"why why why why why",
		"!!!",
		"",
		"we could probably sort this out together, don't you think?",
	}
	for _, text := range texts {
		p := newTestExtractor().Extract(text)
		for name, v := range map[string]float64{
			"informal": p.InformalScoreRegex,
			"hedging":  p.HedgingScore,
			"funcword": p.FunctionWordRatio,
		} {
			if v < 0 {
				t.Fatalf("%s ratio negative for %q: %v", name, text, v)
			}
		}
		if p.Sentiment.Compound < -1 || p.Sentiment.Compound > 1 {
			t.Fatalf("compound out of range for %q: %v", text, p.Sentiment.Compound)
		}
	}
}

func TestDetectMetaRequest(t *testing.T) {
	cases := []struct {
		in   string
		want MetaRequest
	}{
		{"can you keep it short please", MetaShorter},
		{"that was too long", MetaShorter},
		{"give me more detail", MetaLonger},
		{"could you elaborate", MetaLonger},
		{"use simpler words", MetaSimpler},
		{"make it easy to follow", MetaSimpler},
		{"tell me about your day", MetaNone},
	}
	for _, tc := range cases {
		p := newTestExtractor().Extract(tc.in)
		if p.MetaRequest != tc.want {
			t.Fatalf("meta request for %q = %q, want %q", tc.in, p.MetaRequest, tc.want)
		}
	}
}

func TestExtractQuestionHeuristics(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"what do you think", true},
		{"are we still on for later", true},
		{"tell me a story.", false},
		{"really??", true},
		{"maybe?? 😂", true},
	}
	for _, tc := range cases {
		p := newTestExtractor().Extract(tc.in)
		if p.Questioning != tc.want {
			t.Fatalf("questioning for %q = %v, want %v", tc.in, p.Questioning, tc.want)
		}
	}
}

func TestExtractCacheEvictsOldest(t *testing.T) {
	e := NewExtractor(nil, 3)
	for i := 0; i < 4; i++ {
		e.Extract(fmt.Sprintf("message number %d", i))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.cache) != 3 {
		t.Fatalf("cache size = %d, want 3", len(e.cache))
	}
	if _, ok := e.cache["message number 0"]; ok {
		t.Fatalf("oldest entry should have been evicted")
	}
	if _, ok := e.cache["message number 3"]; !ok {
		t.Fatalf("newest entry should be cached")
	}
}
