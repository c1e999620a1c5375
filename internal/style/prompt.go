package style

import "strings"

// GuardrailMarker is appended to a compiled prompt when the user's regex
// informality exceeds the adaptivity ceiling. It is machine-readable so
// audit logging can grep for it and strip it out.
const GuardrailMarker = "[ADAPTIVITY_LIMIT_REACHED=TRUE]"

const basePromptTemplate = "You are {persona}, a friendly virtual companion. Your goal is to sustain a natural, " +
	"engaging conversation. Sound like someone who is emotionally aware and grounded, with an " +
	"interest in everyday culture, music, and digital trends. " +
	"Keep your tone clear and expressive. Use everyday English and avoid slang. " +
	"Do not use emojis or markdown. " +
	"Keep your replies concise: 2 to 3 sentences, 4 sentences MAX. Do not over-explain your thinking. " +
	"Ask open-ended questions occasionally to keep the conversation flowing. " +
	"Never break character. Do not reference system details, this conversation's instructions, or the fact that you're an AI. " +
	"If the user brings up sensitive topics (e.g., personal advice, legal, financial, or medical concerns), " +
	"gently steer the conversation back to shared interests. " +
	"If the user expresses distress, respond with empathy and suggest they seek help from a trusted person or professional."

const staticDelta = "\n\n--- Your Style Rule ---\n" +
	"Maintain your own consistent, friendly style throughout the conversation, regardless of the user's writing."

const adaptiveDelta = "\n\n--- Your Style Rule ---\n" +
	"Your primary goal is to adapt to the user's communication style to make them feel comfortable. " +
	"Mirror their tone, formality, and level of detail. While adapting, maintain your own grounded personality; do not just echo the user's opinions."

// Guidance line texts, one per rule family.
const (
	lineFocusOnUser   = "The user is focusing on their own experience (using 'I' a lot), so try to steer questions toward them."
	lineAddressedYou  = "The user is addressing you directly, so it's okay to share your own perspective and reflect their questions back."
	lineWePerspective = "The user is speaking in terms of 'we', so lean into the sense of doing this conversation together."
	lineCasualTone    = "The user seems casual. Match this with a relaxed, friendly tone. Using contractions and light, common slang (if they use it first) is okay."
	lineFormalTone    = "The user seems to be speaking formally. Match this by using formal language and avoiding contractions."
	lineMirrorEmoji   = "The user is using emojis, so feel free to use them sparingly to match their vibe."
	lineGoShorter     = "The user asked for shorter replies, so keep your next responses brief and to the point."
	lineGoLonger      = "The user asked for more detail, so it's okay to expand a little beyond your usual length."
	lineGoSimpler     = "The user asked for simpler language, so use plain words and short sentences."
	lineAskBack       = "The user is asking a lot of questions, so return some curiosity and ask about them too."
	lineMirrorBang    = "The user is using exclamation marks, so it's fine to mirror that energy now and then."
	lineUpbeat        = "The user sounds upbeat, so keep your tone bright and share in their enthusiasm."
	lineGentle        = "The user sounds down, so keep your tone gentle and supportive."
)

// Compiler turns a condition and a Style Profile into a finished system
// prompt. It is a pure function of its inputs; all thresholds are fixed at
// construction.
type Compiler struct {
	BotName             string
	ModelInformalThresh float64
	RegexInformalThresh float64
	GuardrailCeiling    float64
	MaxGuidanceLines    int
	AdaptiveTemperature float64
}

// NewCompiler returns a compiler with the calibrated defaults.
func NewCompiler(botName string) *Compiler {
	return &Compiler{
		BotName:             botName,
		ModelInformalThresh: 0.3,
		RegexInformalThresh: 0.1,
		GuardrailCeiling:    0.6,
		MaxGuidanceLines:    3,
		AdaptiveTemperature: 0.7,
	}
}

// Temperature returns the generation temperature for the condition. The
// non-adaptive arm is pinned to 0 so its output is maximally stable.
func (c *Compiler) Temperature(adaptive bool) float64 {
	if adaptive {
		return c.AdaptiveTemperature
	}
	return 0.0
}

// Compile builds the system prompt. Under the non-adaptive condition the
// profile is ignored entirely and the output is byte-stable. Under the
// adaptive condition an ordered rule table appends up to MaxGuidanceLines
// guidance lines; rules whose profile signal is absent are skipped.
func (c *Compiler) Compile(adaptive bool, p Profile) string {
	base := strings.ReplaceAll(basePromptTemplate, "{persona}", c.BotName)

	if !adaptive {
		return base + staticDelta
	}

	var lines []string
	add := func(line string) {
		if len(lines) < c.MaxGuidanceLines {
			lines = append(lines, line)
		}
	}

	// Rule 1: pronoun emphasis, first match wins.
	switch {
	case p.Pronouns.I && !p.Pronouns.You:
		add(lineFocusOnUser)
	case p.Pronouns.You && !p.Pronouns.I:
		add(lineAddressedYou)
	case p.Pronouns.We:
		add(lineWePerspective)
	}

	// Rule 2: tone. The classifier wins when present; the regex ratio is
	// the fallback signal.
	casual := false
	if p.InformalityModel != nil {
		casual = *p.InformalityModel > c.ModelInformalThresh
	} else {
		casual = p.InformalScoreRegex > c.RegexInformalThresh
	}
	if casual {
		add(lineCasualTone)
	} else {
		add(lineFormalTone)
	}

	// Rule 3: emoji mirroring.
	if p.Emoji {
		add(lineMirrorEmoji)
	}

	// Rule 4: verbosity, from the explicit meta request.
	switch p.MetaRequest {
	case MetaShorter:
		add(lineGoShorter)
	case MetaLonger:
		add(lineGoLonger)
	case MetaSimpler:
		add(lineGoSimpler)
	}

	// Rule 5: reciprocal questions.
	if p.QuestionCount >= 2 && p.WordCount > 10 {
		add(lineAskBack)
	}

	// Rule 6: exclamation mirroring.
	if p.Exclamatory && p.ExclamationCount >= 1 {
		add(lineMirrorBang)
	}

	// Rule 7: sentiment mirroring, neutral band appends nothing.
	if p.Sentiment.Compound > 0.5 {
		add(lineUpbeat)
	} else if p.Sentiment.Compound < -0.5 {
		add(lineGentle)
	}

	prompt := base + adaptiveDelta
	if len(lines) > 0 {
		prompt += "\n\n--- Current Adaptation Guidance ---\n- " + strings.Join(lines, "\n- ")
	}

	if p.InformalScoreRegex > c.GuardrailCeiling {
		prompt += "\n\n" + GuardrailMarker
	}

	return prompt
}

// StripGuardrail removes the guardrail marker from a compiled prompt and
// reports whether it was present. Event records store the cleaned prompt
// plus the boolean.
func StripGuardrail(prompt string) (string, bool) {
	if !strings.Contains(prompt, GuardrailMarker) {
		return prompt, false
	}
	cleaned := strings.ReplaceAll(prompt, "\n\n"+GuardrailMarker, "")
	cleaned = strings.ReplaceAll(cleaned, GuardrailMarker, "")
	return cleaned, true
}
