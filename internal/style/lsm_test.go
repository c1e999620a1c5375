package style

import (
	"math"
	"testing"
)

func TestLSMSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"I think we should go to the park today because the weather is nice", "You know I was thinking the same thing about the park and the sun"},
		{"the cat sat on the mat and looked at the door", "a dog ran through the yard before it started to rain"},
		{"we have not seen them since they moved away from here", "i do not know where they went after that"},
	}
	for _, pair := range pairs {
		ab := LSM(pair[0], pair[1], 5)
		ba := LSM(pair[1], pair[0], 5)
		if math.Abs(ab-ba) > 1e-12 {
			t.Fatalf("LSM not symmetric: %v vs %v", ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Fatalf("LSM out of range: %v", ab)
		}
	}
}

func TestLSMShortSpanSentinel(t *testing.T) {
	long := "I think we should go to the park today because the weather is nice"
	cases := [][2]string{
		{"hi", long},
		{long, "ok then"},
		{"", ""},
		{"one two three four", long},
	}
	for _, pair := range cases {
		if got := LSM(pair[0], pair[1], 5); got != NeutralLSM {
			t.Fatalf("LSM(%q, %q) = %v, want neutral sentinel", pair[0], pair[1], got)
		}
	}
}

func TestLSMIdenticalTextScoresHigh(t *testing.T) {
	text := "I think we should go to the park today because the weather is nice"
	got := LSM(text, text, 5)
	if got < 0.999 {
		t.Fatalf("identical spans should score near 1, got %v", got)
	}
}

func TestLSMZeroCategoryBothSidesIsMatched(t *testing.T) {
	// Neither span uses negations; that category should contribute 1.0,
	// never a divide-by-zero.
	a := "the sun rose over the hills and the town woke up slowly today"
	b := "a river ran past the field while the birds sang in the trees"
	got := LSM(a, b, 5)
	if math.IsNaN(got) || got <= 0 {
		t.Fatalf("score should be finite and positive, got %v", got)
	}
}

func TestSmoothExactFormula(t *testing.T) {
	prev, raw := 0.5, 0.9

	got := Smooth(prev, raw, 20, 20, 0.25, 15)
	want := 0.25*raw + 0.75*prev
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Smooth = %v, want %v", got, want)
	}

	if got := Smooth(prev, raw, 3, 20, 0.25, 15); got != prev {
		t.Fatalf("short source side must pass previous through, got %v", got)
	}
	if got := Smooth(prev, raw, 20, 3, 0.25, 15); got != prev {
		t.Fatalf("short target side must pass previous through, got %v", got)
	}
}

func TestSmoothConsecutiveShortTurns(t *testing.T) {
	prev := 0.62
	for i := 0; i < 2; i++ {
		prev = Smooth(prev, 0.1, 8, 20, 0.25, 15)
	}
	if prev != 0.62 {
		t.Fatalf("two short turns should leave the trend untouched, got %v", prev)
	}
}

func TestValidTokenCount(t *testing.T) {
	if got := ValidTokenCount("don't stop me now"); got != 5 {
		t.Fatalf("ValidTokenCount = %d, want 5", got)
	}
	if got := ValidTokenCount("!!! ..."); got != 0 {
		t.Fatalf("punctuation should count zero tokens, got %d", got)
	}
}
