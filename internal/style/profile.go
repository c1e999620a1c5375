// Package style implements the adaptation engine: feature extraction,
// linguistic style matching, temporal smoothing and prompt compilation.
package style

import "github.com/kagami-chat/kagami/internal/nlp"

// MetaRequest is an explicit user request about reply shape, detected from
// fixed keyword families.
type MetaRequest string

const (
	MetaNone    MetaRequest = "none"
	MetaShorter MetaRequest = "shorter"
	MetaLonger  MetaRequest = "longer"
	MetaSimpler MetaRequest = "simpler"
)

// PronounProfile records which pronoun perspectives appear in the text,
// by whole-word match.
type PronounProfile struct {
	I   bool `json:"i"`
	You bool `json:"you"`
	We  bool `json:"we"`
}

// Profile is an immutable snapshot of one text span's linguistic
// characteristics. Pointer fields are nil when the producing model is
// unavailable; nil is a distinct state and is never coerced to zero.
type Profile struct {
	WordCount          int                `json:"word_count"`
	InformalScoreRegex float64            `json:"informal_score_regex"`
	InformalityModel   *float64           `json:"informality_score_model"`
	HedgingScore       float64            `json:"hedging_score"`
	Emoji              bool               `json:"emoji"`
	Questioning        bool               `json:"questioning"`
	Exclamatory        bool               `json:"exclamatory"`
	Short              bool               `json:"short"`
	QuestionCount      int                `json:"question_count"`
	ExclamationCount   int                `json:"exclamation_count"`
	MetaRequest        MetaRequest        `json:"meta_request"`
	Sentiment          nlp.Sentiment      `json:"sentiment"`
	AvgSentenceLength  float64            `json:"avg_sentence_length"`
	AvgWordLength      float64            `json:"avg_word_length"`
	ReadingEase        *float64           `json:"flesch_reading_ease"`
	GradeLevel         *float64           `json:"fk_grade"`
	FunctionWordRatio  float64            `json:"function_word_ratio"`
	Categories         nlp.CategoryScores `json:"categories"`
	Pronouns           PronounProfile     `json:"pronouns"`

	// PrevSmoothedLSM is attached by the orchestrator from session state,
	// never computed by the extractor.
	PrevSmoothedLSM *float64 `json:"prev_smoothed_lsm,omitempty"`
}
