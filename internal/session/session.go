// Package session holds the per-conversation record and its persistence
// backends.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kagami-chat/kagami/internal/style"
)

// Message roles. Some older clients send "model" for assistant turns; the
// orchestrator normalizes that on ingest.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn entry in the conversation history.
type Message struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	TurnNumber int    `json:"turn_number"`
}

// AvatarType is the avatar arm of the experimental condition.
type AvatarType string

const (
	AvatarGenerated AvatarType = "generated"
	AvatarPremade   AvatarType = "premade"
	AvatarNone      AvatarType = "none"
)

// Condition is the assigned experimental condition: two independent axes,
// adaptive-vs-static and avatar presence/type.
type Condition struct {
	Name       string     `json:"name"`
	Adaptive   bool       `json:"lsm"`
	Avatar     bool       `json:"avatar"`
	AvatarType AvatarType `json:"avatarType"`
}

var conditionTable = map[string]Condition{
	"generated_adaptive": {Name: "generated_adaptive", Avatar: true, Adaptive: true, AvatarType: AvatarGenerated},
	"generated_static":   {Name: "generated_static", Avatar: true, Adaptive: false, AvatarType: AvatarGenerated},
	"premade_adaptive":   {Name: "premade_adaptive", Avatar: true, Adaptive: true, AvatarType: AvatarPremade},
	"premade_static":     {Name: "premade_static", Avatar: true, Adaptive: false, AvatarType: AvatarPremade},
	"none_adaptive":      {Name: "none_adaptive", Avatar: false, Adaptive: true, AvatarType: AvatarNone},
	"none_static":        {Name: "none_static", Avatar: false, Adaptive: false, AvatarType: AvatarNone},
}

// ConditionByName resolves a client-supplied condition name, case
// insensitively.
func ConditionByName(name string) (Condition, error) {
	cond, ok := conditionTable[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Condition{}, fmt.Errorf("unknown condition name %q", name)
	}
	return cond, nil
}

// Avatar is one generated avatar entry.
type Avatar struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

// Session is the mutable per-conversation record. SmoothedLSM is a pointer
// so persistence can tell "never scored" apart from an explicit 0.5.
type Session struct {
	ID               string    `json:"sessionId"`
	ParticipantID    string    `json:"participantId"`
	Condition        Condition `json:"condition"`
	TurnNumber       int       `json:"turn_number"`
	SmoothedLSM      *float64  `json:"smoothed_lsm_score"`
	History          []Message `json:"history"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	AvatarPrompt     string    `json:"avatar_prompt,omitempty"`
	GeneratedAvatars []Avatar  `json:"generated_avatars"`
	CreatedAt        time.Time `json:"created_at"`
}

// New creates a session with a fresh id, the neutral LSM prior and turn 0.
func New(participantID, conditionName string) (*Session, error) {
	cond, err := ConditionByName(conditionName)
	if err != nil {
		return nil, err
	}
	prior := style.NeutralLSM
	return &Session{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
		Condition:     cond,
		SmoothedLSM:   &prior,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// SmoothedOrPrior returns the current smoothed score, or the neutral prior
// when the session has never been scored.
func (s *Session) SmoothedOrPrior() float64 {
	if s.SmoothedLSM == nil {
		return style.NeutralLSM
	}
	return *s.SmoothedLSM
}

// Append adds one message at the session's current turn number.
func (s *Session) Append(role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content, TurnNumber: s.TurnNumber})
}

// UserStyleSample concatenates the most recent user turns, newest first,
// up to lookback entries. Empty when the user has not spoken yet.
func (s *Session) UserStyleSample(lookback int) string {
	if lookback <= 0 {
		lookback = 3
	}
	var parts []string
	for i := len(s.History) - 1; i >= 0 && len(parts) < lookback; i-- {
		if s.History[i].Role == RoleUser {
			parts = append(parts, s.History[i].Content)
		}
	}
	return strings.Join(parts, " ")
}
