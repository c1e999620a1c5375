package nlp

import "strings"

// Valence-bearing emoji. These two sets drive the deterministic sentiment
// correction; everything else in the emoji blocks is counted but neutral.
var positiveEmoji = map[rune]struct{}{
	'😊': {}, '😄': {}, '😁': {}, '😚': {}, '☺': {}, '😍': {}, '😇': {}, '🎉': {}, '💖': {},
}

var negativeEmoji = map[rune]struct{}{
	'😢': {}, '😭': {}, '😠': {}, '😡': {}, '💔': {}, '👿': {}, '😞': {}, '🤬': {},
}

// emojiValenceStep is the compound adjustment applied per valence direction.
const emojiValenceStep = 0.1

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F5FF: // symbols and pictographs
		return true
	case r >= 0x1F600 && r <= 0x1F64F: // emoticons
		return true
	case r >= 0x1F680 && r <= 0x1F6FF: // transport and map
		return true
	case r >= 0x1F900 && r <= 0x1F9FF: // supplemental symbols
		return true
	case r >= 0x1FA70 && r <= 0x1FAFF: // extended symbols
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
		return true
	case r == 0x2764: // heavy black heart
		return true
	}
	return false
}

// CountEmoji returns the number of emoji runes in text.
func CountEmoji(text string) int {
	n := 0
	for _, r := range text {
		if isEmojiRune(r) {
			n++
		}
	}
	return n
}

// HasEmoji reports whether text contains at least one emoji rune.
func HasEmoji(text string) bool {
	for _, r := range text {
		if isEmojiRune(r) {
			return true
		}
	}
	return false
}

// AdjustSentimentForEmoji applies the valence correction: +0.1 to the
// compound per positive emoji and -0.1 per negative one, clamped to [-1,1].
// The proportion fields are left untouched.
func AdjustSentimentForEmoji(s Sentiment, text string) Sentiment {
	adj := 0.0
	for _, r := range text {
		if _, ok := positiveEmoji[r]; ok {
			adj += emojiValenceStep
		} else if _, ok := negativeEmoji[r]; ok {
			adj -= emojiValenceStep
		}
	}
	if adj == 0 {
		return s
	}
	s.Compound += adj
	if s.Compound > 1 {
		s.Compound = 1
	} else if s.Compound < -1 {
		s.Compound = -1
	}
	return s
}

// StripEmoji removes emoji runes and the variation selectors that ride
// along with them, then collapses any doubled spaces left behind.
func StripEmoji(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isEmojiRune(r) || r == 0xFE0F || r == 0x200D {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	return strings.TrimSpace(out)
}
