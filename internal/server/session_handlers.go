package server

import (
	"context"
	"net/http"

	"github.com/kagami-chat/kagami/internal/eventlog"
	"github.com/kagami-chat/kagami/internal/redact"
	"github.com/kagami-chat/kagami/internal/session"
)

type sessionStartRequest struct {
	ParticipantID string `json:"participantId"`
	ConditionName string `json:"conditionName"`
}

type sessionStartResponse struct {
	SessionID      string            `json:"sessionId"`
	Condition      session.Condition `json:"condition"`
	InitialHistory []session.Message `json:"initialHistory"`
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req sessionStartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ParticipantID == "" {
		writeError(w, http.StatusBadRequest, "missing participantId")
		return
	}

	sess, err := session.New(req.ParticipantID, req.ConditionName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid conditionName provided: '"+req.ConditionName+"'")
		return
	}
	sess.Append(session.RoleAssistant, initialGreeting)
	s.putSession(sess)

	ev := eventlog.New(eventlog.TypeSessionStart, sess)
	ev.EventData = map[string]any{
		"condition_name_from_request": req.ConditionName,
		"initial_greeting":            initialGreeting,
	}
	s.deps.Emitter.Emit(r.Context(), ev)

	s.persist(r.Context(), sess)

	writeJSON(w, http.StatusOK, sessionStartResponse{
		SessionID:      sess.ID,
		Condition:      sess.Condition,
		InitialHistory: sess.History,
	})
}

type sessionEndRequest struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleSessionEnd(w http.ResponseWriter, r *http.Request) {
	var req sessionEndRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := s.session(req.SessionID)
	if sess == nil {
		redact.Logf("server: session end for unknown session %s", req.SessionID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Session already ended or not found."})
		return
	}

	unlock := s.deps.Registry.Lock(sess.ID)

	s.deps.Emitter.Emit(r.Context(), eventlog.New(eventlog.TypeSessionEnd, sess))

	if err := s.deps.Store.Delete(r.Context(), sess.ID); err != nil {
		redact.Logf("server: deleting session state %s failed: %v", sess.ID, err)
	}
	s.dropSession(sess.ID)

	pid, sid := sess.ParticipantID, sess.ID
	unlock()
	s.deps.Registry.Forget(sid)

	// Archival runs off the request path: close the session's log file and
	// ship it to the archive endpoint when one is configured.
	go s.archiveSessionLog(pid, sid)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session ended successfully and log processing queued."})
}

func (s *Server) archiveSessionLog(participantID, sessionID string) {
	if s.deps.FileSink == nil {
		return
	}
	path, err := s.deps.FileSink.CloseSession(participantID, sessionID)
	if err != nil {
		redact.Logf("server: closing session log for %s failed: %v", sessionID, err)
		return
	}
	if s.deps.Archive == nil {
		return
	}
	ev := &eventlog.Event{
		EventType:     "session_log_archived",
		ParticipantID: participantID,
		SessionID:     sessionID,
		EventData:     map[string]any{"log_path": path},
	}
	if err := s.deps.Archive.Deliver(context.Background(), ev); err != nil {
		redact.Logf("server: archiving session log for %s failed: %v", sessionID, err)
	}
}

type setAvatarDetailsRequest struct {
	SessionID    string  `json:"sessionId"`
	AvatarURL    string  `json:"avatarUrl"`
	AvatarPrompt *string `json:"avatarPrompt"`
}

func (s *Server) handleSetAvatarDetails(w http.ResponseWriter, r *http.Request) {
	var req setAvatarDetailsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := s.session(req.SessionID)
	if sess == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	unlock := s.deps.Registry.Lock(sess.ID)
	defer unlock()

	sess.AvatarURL = req.AvatarURL
	if req.AvatarPrompt != nil {
		sess.AvatarPrompt = *req.AvatarPrompt
	}

	ev := eventlog.New(eventlog.TypeAvatarSet, sess)
	ev.EventData = map[string]any{"avatar_url_set": req.AvatarURL}
	if req.AvatarPrompt != nil {
		ev.EventData["avatar_prompt_set"] = *req.AvatarPrompt
	}
	s.deps.Emitter.Emit(r.Context(), ev)

	s.persist(r.Context(), sess)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Avatar details updated successfully."})
}

type frontendEventRequest struct {
	SessionID     string         `json:"sessionId"`
	ParticipantID string         `json:"participantId"`
	EventType     string         `json:"eventType"`
	EventData     map[string]any `json:"eventData"`
}

// handleFrontendEvent appends client-side events to the session's log. For
// unknown sessions the record keeps whatever identity the client supplied
// and lands in a fallback file.
func (s *Server) handleFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var req frontendEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.EventType == "" {
		writeError(w, http.StatusBadRequest, "missing eventType")
		return
	}

	var ev *eventlog.Event
	if sess := s.session(req.SessionID); sess != nil {
		ev = eventlog.New(eventlog.TypeFrontend, sess)
	} else {
		ev = eventlog.New(eventlog.TypeFrontend, nil)
		ev.ParticipantID = req.ParticipantID
		ev.SessionID = req.SessionID
	}
	ev.EventData = map[string]any{"event_type": req.EventType}
	for k, v := range req.EventData {
		ev.EventData[k] = v
	}
	s.deps.Emitter.Emit(r.Context(), ev)

	writeJSON(w, http.StatusOK, map[string]string{"message": "Frontend event log request received."})
}
