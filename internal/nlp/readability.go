package nlp

import "strings"

// Readability holds the two Flesch metrics. Both are nil when the text has
// no scoreable words, so callers can distinguish "unscored" from a zero.
type Readability struct {
	ReadingEase *float64 `json:"flesch_reading_ease"`
	GradeLevel  *float64 `json:"flesch_kincaid_grade"`
}

// ScoreReadability computes Flesch reading ease and Flesch-Kincaid grade
// level from word, sentence and syllable counts. Returns nil fields when
// the text yields no words.
func ScoreReadability(text string) Readability {
	tokens := Tokenize(text)
	words := 0
	syllables := 0
	for _, t := range tokens {
		if !strings.ContainsAny(t.Lower, "abcdefghijklmnopqrstuvwxyz") {
			continue
		}
		words++
		syllables += countSyllables(t.Lower)
	}
	if words == 0 {
		return Readability{}
	}

	sentences := float64(CountSentences(text))
	wordsF := float64(words)
	syllF := float64(syllables)

	ease := 206.835 - 1.015*(wordsF/sentences) - 84.6*(syllF/wordsF)
	grade := 0.39*(wordsF/sentences) + 11.8*(syllF/wordsF) - 15.59

	return Readability{ReadingEase: &ease, GradeLevel: &grade}
}

// countSyllables estimates syllables by counting vowel groups, with the
// usual silent-e correction. Always at least 1 for a word with letters.
func countSyllables(lower string) int {
	const vowels = "aeiouy"
	count := 0
	prevVowel := false
	for _, r := range lower {
		isVowel := strings.ContainsRune(vowels, r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if strings.HasSuffix(lower, "e") && !strings.HasSuffix(lower, "le") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}
