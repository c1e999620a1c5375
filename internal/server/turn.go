package server

import (
	"net/http"
	"time"

	"github.com/kagami-chat/kagami/internal/eventlog"
	"github.com/kagami-chat/kagami/internal/nlp"
	"github.com/kagami-chat/kagami/internal/provider"
	"github.com/kagami-chat/kagami/internal/redact"
	"github.com/kagami-chat/kagami/internal/session"
	"github.com/kagami-chat/kagami/internal/style"
)

// apologyReply is what the user sees when the generation backend fails. Raw
// provider errors never reach the participant.
const apologyReply = "Sorry, I couldn't get a response from the assistant."

type messageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type messageResponse struct {
	Response             string        `json:"response"`
	StyleProfile         style.Profile `json:"styleProfile"`
	LSMScore             float64       `json:"lsmScore"`
	SmoothedLSMAfterTurn float64       `json:"smoothedLsmAfterTurn"`
}

// handleSessionMessage runs one full turn: sample the user's recent style,
// extract a profile, compile the condition's prompt, call the generation
// backend, score the reply against the sample and fold the result into the
// smoothed trend. The session's lock is held end-to-end so turns of one
// conversation never interleave.
func (s *Server) handleSessionMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing message")
		return
	}

	sess := s.session(req.SessionID)
	if sess == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	unlock := s.deps.Registry.Lock(sess.ID)
	defer unlock()

	turnStart := time.Now()
	ctx := r.Context()
	adaptive := sess.Condition.Adaptive
	prevSmoothed := sess.SmoothedOrPrior()

	sess.TurnNumber++

	// The style sample is the last few user turns; a conversation that has
	// not accumulated enough signal falls back to the current message.
	sample := sess.UserStyleSample(s.cfg.Engine.StyleSampleLookback)
	if len(nlp.Tokenize(sample)) < s.cfg.Engine.StyleSampleMinTokens {
		sample = req.Message
	}

	nlpStart := time.Now()
	userTraits := s.deps.Extractor.Extract(sample)
	userTraits.PrevSmoothedLSM = &prevSmoothed

	sess.Append(session.RoleUser, req.Message)

	userEv := eventlog.New(eventlog.TypeUserMessage, sess)
	userEv.Content = req.Message
	userEv.UserTraits = &userTraits
	s.deps.Emitter.Emit(ctx, userEv)

	prompt := s.deps.Compiler.Compile(adaptive, userTraits)
	temperature := s.deps.Compiler.Temperature(adaptive)

	provStart := time.Now()
	nlpMs := provStart.Sub(nlpStart).Seconds() * 1000

	botRaw := apologyReply
	var usage *provider.Usage
	resp, err := s.deps.Provider.ChatCompletion(ctx, &provider.Request{
		Model:       s.cfg.Provider.Model,
		Messages:    providerMessages(prompt, sess.History),
		Temperature: temperature,
		MaxTokens:   s.cfg.Provider.MaxTokens,
	})
	if err != nil {
		redact.Logf("server: generation failed for session %s turn %d: %v", sess.ID, sess.TurnNumber, err)
		errEv := eventlog.New(eventlog.TypeError, sess)
		errEv.ErrorSource = "openai_chat_completion"
		errEv.ErrorMessage = err.Error()
		s.deps.Emitter.Emit(ctx, errEv)
	} else {
		botRaw = resp.Message.Content
		usage = &resp.Usage
	}
	providerMs := time.Since(provStart).Seconds() * 1000

	botResponse := postProcessResponse(botRaw, adaptive)
	botTraits := s.deps.Extractor.Extract(botResponse)

	rawLSM := style.LSM(sample, botResponse, s.cfg.Engine.MinTokensForLSM)
	var similarity *float64
	if s.deps.NLP != nil {
		similarity = s.deps.NLP.StyleSimilarity(sample, botResponse)
	}

	newSmoothed := style.Smooth(prevSmoothed, rawLSM,
		userTraits.WordCount, botTraits.WordCount,
		s.cfg.Engine.SmoothingAlpha, s.cfg.Engine.MinTokensForSmoothing)
	sess.SmoothedLSM = &newSmoothed

	sess.Append(session.RoleAssistant, botResponse)
	s.persist(ctx, sess)

	latency := time.Since(turnStart).Seconds()
	cleanPrompt, guardrailFired := style.StripGuardrail(prompt)

	botEv := eventlog.New(eventlog.TypeBotResponse, sess)
	botEv.Content = botResponse
	botEv.UserTraits = &userTraits
	botEv.BotTraits = &botTraits
	botEv.LSMRaw = &rawLSM
	botEv.LSMSmoothed = &newSmoothed
	botEv.StyleSimilarity = similarity
	botEv.SystemInstruction = cleanPrompt
	botEv.GuardrailFired = guardrailFired
	botEv.LatencySec = latency
	botEv.Usage = usage
	s.deps.Emitter.Emit(ctx, botEv)

	if s.deps.Telemetry != nil {
		s.deps.Telemetry.RecordTurnMetrics(sess.Condition.Name, adaptive,
			latency*1000, providerMs, nlpMs, guardrailFired)
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Response:             botResponse,
		StyleProfile:         userTraits,
		LSMScore:             rawLSM,
		SmoothedLSMAfterTurn: newSmoothed,
	})
}

// providerMessages converts session history to provider wire messages with
// the compiled system prompt first. Legacy "model" roles map to assistant.
func providerMessages(systemPrompt string, history []session.Message) []provider.Message {
	msgs := make([]provider.Message, 0, len(history)+1)
	msgs = append(msgs, provider.Message{Role: "system", Content: systemPrompt})
	for _, m := range history {
		role := m.Role
		if role == "model" {
			role = session.RoleAssistant
		}
		if role != session.RoleUser && role != session.RoleAssistant {
			continue
		}
		if m.Content == "" {
			continue
		}
		msgs = append(msgs, provider.Message{Role: role, Content: m.Content})
	}
	return msgs
}
