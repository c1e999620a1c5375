// Package eventlog is the experiment's audit trail: one append-only record
// per notable event, delivered to sinks off the request path.
package eventlog

import (
	"time"

	"github.com/kagami-chat/kagami/internal/provider"
	"github.com/kagami-chat/kagami/internal/redact"
	"github.com/kagami-chat/kagami/internal/session"
	"github.com/kagami-chat/kagami/internal/style"
)

// Event types produced by the service.
const (
	TypeSessionStart  = "session_start_backend"
	TypeSessionEnd    = "session_end"
	TypeUserMessage   = "user_message"
	TypeBotResponse   = "bot_response"
	TypeAvatarSet     = "avatar_details_set"
	TypeAvatarCreated = "avatar_generated"
	TypeFrontend      = "frontend_event"
	TypeError         = "error"
)

// Logging levels. "full" records message content and profiles verbatim,
// "redacted" runs content through the secret scrubber, "metadata" drops
// content and profiles entirely.
const (
	LevelMetadata = "metadata"
	LevelRedacted = "redacted"
	LevelFull     = "full"
)

// Event is one audit record. Optional sections stay nil when the event
// type does not produce them.
type Event struct {
	TimestampUTC  time.Time `json:"timestamp_utc"`
	EventType     string    `json:"event_type"`
	ParticipantID string    `json:"participant_id,omitempty"`
	SessionID     string    `json:"session_id,omitempty"`
	TurnNumber    int       `json:"turn_number"`

	Condition *session.Condition `json:"condition,omitempty"`

	Content string `json:"content,omitempty"`

	UserTraits *style.Profile `json:"user_linguistic_traits,omitempty"`
	BotTraits  *style.Profile `json:"bot_linguistic_traits,omitempty"`

	LSMRaw          *float64 `json:"lsm_score_raw,omitempty"`
	LSMSmoothed     *float64 `json:"lsm_score_smoothed,omitempty"`
	StyleSimilarity *float64 `json:"style_similarity_cosine,omitempty"`

	// SystemInstruction is the compiled prompt with the guardrail marker
	// stripped; GuardrailFired records whether it was present.
	SystemInstruction string `json:"system_instruction_used,omitempty"`
	GuardrailFired    bool   `json:"guardrail_fired,omitempty"`

	LatencySec float64         `json:"response_latency_sec,omitempty"`
	Usage      *provider.Usage `json:"openai_usage,omitempty"`

	ErrorSource  string `json:"error_source,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	EventData map[string]any `json:"event_data,omitempty"`
}

// New builds an event stamped with the session's identity and condition.
// sess may be nil for events outside any session.
func New(eventType string, sess *session.Session) *Event {
	ev := &Event{
		TimestampUTC: time.Now().UTC(),
		EventType:    eventType,
	}
	if sess != nil {
		ev.ParticipantID = sess.ParticipantID
		ev.SessionID = sess.ID
		ev.TurnNumber = sess.TurnNumber
		cond := sess.Condition
		ev.Condition = &cond
	}
	return ev
}

// ApplyLevel scrubs the event in place according to the logging level and
// returns it. Unknown levels behave like full.
func (ev *Event) ApplyLevel(level string) *Event {
	switch level {
	case LevelMetadata:
		ev.Content = ""
		ev.UserTraits = nil
		ev.BotTraits = nil
		ev.SystemInstruction = ""
		ev.EventData = nil
	case LevelRedacted:
		ev.Content = redact.String(ev.Content)
		ev.SystemInstruction = redact.String(ev.SystemInstruction)
	}
	return ev
}
