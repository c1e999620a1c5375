package nlp

import "testing"

func TestScoreSentimentPolarity(t *testing.T) {
	cases := []struct {
		name string
		in   string
		sign int
	}{
		{"positive", "this is really great, I love it", 1},
		{"negative", "this is terrible and I hate it", -1},
		{"neutral", "the meeting is at three on tuesday", 0},
		{"empty", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := ScoreSentiment(tc.in)
			switch {
			case tc.sign > 0 && s.Compound <= 0:
				t.Fatalf("expected positive compound, got %v", s.Compound)
			case tc.sign < 0 && s.Compound >= 0:
				t.Fatalf("expected negative compound, got %v", s.Compound)
			case tc.sign == 0 && s.Compound != 0:
				t.Fatalf("expected zero compound, got %v", s.Compound)
			}
			if s.Compound < -1 || s.Compound > 1 {
				t.Fatalf("compound out of range: %v", s.Compound)
			}
			total := s.Neg + s.Neu + s.Pos
			if total < 0.999 || total > 1.001 {
				t.Fatalf("proportions should sum to 1, got %v", total)
			}
		})
	}
}

func TestScoreSentimentNegationFlips(t *testing.T) {
	plain := ScoreSentiment("this is good")
	negated := ScoreSentiment("this is not good")
	if plain.Compound <= 0 {
		t.Fatalf("baseline should be positive, got %v", plain.Compound)
	}
	if negated.Compound >= 0 {
		t.Fatalf("negated phrase should flip negative, got %v", negated.Compound)
	}
}

func TestScoreSentimentBoosterAmplifies(t *testing.T) {
	plain := ScoreSentiment("the movie was good")
	boosted := ScoreSentiment("the movie was really good")
	if boosted.Compound <= plain.Compound {
		t.Fatalf("booster should amplify: %v vs %v", boosted.Compound, plain.Compound)
	}
}

func TestAdjustSentimentForEmoji(t *testing.T) {
	base := Sentiment{Neu: 1}

	up := AdjustSentimentForEmoji(base, "hello 😊")
	if up.Compound != 0.1 {
		t.Fatalf("one positive emoji should add 0.1, got %v", up.Compound)
	}

	down := AdjustSentimentForEmoji(base, "why 😢😭")
	if down.Compound != -0.2 {
		t.Fatalf("two negative emoji should subtract 0.2, got %v", down.Compound)
	}

	clamped := AdjustSentimentForEmoji(Sentiment{Compound: 0.95}, "🎉🎉🎉")
	if clamped.Compound != 1 {
		t.Fatalf("compound should clamp at 1, got %v", clamped.Compound)
	}

	same := AdjustSentimentForEmoji(base, "no emoji here")
	if same.Compound != 0 {
		t.Fatalf("no emoji should leave compound alone, got %v", same.Compound)
	}
}

func TestEmojiDetection(t *testing.T) {
	if !HasEmoji("hey 😂") {
		t.Fatalf("should detect face emoji")
	}
	if HasEmoji("plain ascii text") {
		t.Fatalf("plain text has no emoji")
	}
	if got := CountEmoji("🎉🎉 woo 😊"); got != 3 {
		t.Fatalf("CountEmoji = %d, want 3", got)
	}
}

func TestStripEmoji(t *testing.T) {
	got := StripEmoji("great job 🎉 see you 😊")
	if got != "great job see you" {
		t.Fatalf("StripEmoji = %q", got)
	}
	if got := StripEmoji("no emoji"); got != "no emoji" {
		t.Fatalf("plain text should pass through, got %q", got)
	}
}
