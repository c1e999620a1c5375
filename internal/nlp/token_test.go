package nlp

import "testing"

func TestTokenizeSplitsClitics(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"plain words", "hello there", []string{"hello", "there"}},
		{"negation clitic", "don't stop", []string{"do", "n't", "stop"}},
		{"cant keeps n in clitic", "can't", []string{"ca", "n't"}},
		{"possessive", "it's fine", []string{"it", "'s", "fine"}},
		{"punctuation dropped", "wait... what?!", []string{"wait", "what"}},
		{"empty", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d tokens, want %d: %v", len(got), len(tc.want), got)
			}
			for i, w := range tc.want {
				if got[i].Lower != w {
					t.Fatalf("token %d = %q, want %q", i, got[i].Lower, w)
				}
			}
		})
	}
}

func TestValidTokensKeepsAlnumAndNt(t *testing.T) {
	tokens := Tokenize("I don't know it's ok 123")
	valid := ValidTokens(tokens)
	for _, tok := range valid {
		if tok.Lower == "'s" {
			t.Fatalf("'s should not be a valid token")
		}
	}
	found := false
	for _, tok := range valid {
		if tok.Lower == "n't" {
			found = true
		}
	}
	if !found {
		t.Fatalf("n't should survive the valid-token filter")
	}
}

func TestCountSentences(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"One. Two! Three?", 3},
		{"no terminal punctuation", 1},
		{"", 1},
		{"trailing dots...", 1},
		{"a. b. c.", 3},
	}
	for _, tc := range cases {
		if got := CountSentences(tc.in); got != tc.want {
			t.Fatalf("CountSentences(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTagClosedClasses(t *testing.T) {
	cases := []struct {
		word string
		want POS
	}{
		{"i", POSPronoun},
		{"you", POSPronoun},
		{"the", POSDeterminer},
		{"no", POSDeterminer},
		{"not", POSNegation},
		{"n't", POSNegation},
		{"with", POSAdposition},
		{"and", POSCoordConj},
		{"because", POSSubordConj},
		{"would", POSAuxiliary},
		{"banana", POSOther},
	}
	for _, tc := range cases {
		if got := Tag(tc.word); got != tc.want {
			t.Fatalf("Tag(%q) = %q, want %q", tc.word, got, tc.want)
		}
	}
}

func TestIsFunctionWord(t *testing.T) {
	for _, w := range []string{"i", "the", "and", "would", "n't"} {
		if !IsFunctionWord(w) {
			t.Fatalf("%q should be a function word", w)
		}
	}
	if IsFunctionWord("banana") {
		t.Fatalf("banana should not be a function word")
	}
}
