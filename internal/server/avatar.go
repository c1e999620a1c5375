package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kagami-chat/kagami/internal/eventlog"
	"github.com/kagami-chat/kagami/internal/provider"
	"github.com/kagami-chat/kagami/internal/redact"
	"github.com/kagami-chat/kagami/internal/session"
)

// avatarPromptTemplate wraps the participant's idea with the constraints
// that keep every generated avatar compositionally comparable across the
// experiment.
const avatarPromptTemplate = "Edit this cute 3D animal character to match: [__USER_PROMPT__]. " +
	"Keep the exact same pose, sitting with legs crossed and hands in the same position. " +
	"Maintain a perfectly front-facing camera angle (0° yaw, 0° pitch, 0° roll), with no tilt or rotation. " +
	"The entire full-body must remain fully visible, centered, and proportional within the 1024×1024 frame. " +
	"Preserve the soft Animal Crossing style. " +
	"Only modify the animal species, accessories, and clothing based on the prompt. " +
	"**The background must remain fully transparent, with no scenery, patterns, colors, or objects added.**"

type avatarRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"sessionId"`
}

type avatarResponse struct {
	URL    string `json:"url"`
	Prompt string `json:"prompt"`
}

func (s *Server) handleAvatarGenerate(w http.ResponseWriter, r *http.Request) {
	var req avatarRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess := s.session(req.SessionID)
	if sess == nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if s.deps.ImageEditor == nil {
		writeError(w, http.StatusServiceUnavailable, "Avatar generation is not configured.")
		return
	}

	unlock := s.deps.Registry.Lock(sess.ID)
	defer unlock()

	if len(sess.GeneratedAvatars) >= s.cfg.Engine.MaxAvatarGenerations {
		writeError(w, http.StatusBadRequest, "Maximum avatar generations reached")
		return
	}

	userPrompt := strings.TrimSpace(req.Prompt)
	if userPrompt == "" {
		writeError(w, http.StatusBadRequest, "Avatar prompt cannot be empty")
		return
	}

	basePath := filepath.Join(s.deps.StaticDir, "base_images", "kagami.webp")
	if _, err := os.Stat(basePath); err != nil {
		errEv := eventlog.New(eventlog.TypeError, sess)
		errEv.ErrorSource = "avatar_generation_base_image"
		errEv.ErrorMessage = fmt.Sprintf("base image not found at %s", basePath)
		s.deps.Emitter.Emit(r.Context(), errEv)
		writeError(w, http.StatusInternalServerError, "Base image not found.")
		return
	}

	resp, err := s.deps.ImageEditor.EditImage(r.Context(), &provider.ImageEditRequest{
		Model:     s.cfg.Provider.ImageModel,
		Prompt:    strings.ReplaceAll(avatarPromptTemplate, "[__USER_PROMPT__]", userPrompt),
		ImagePath: basePath,
		Size:      "1024x1024",
		Quality:   "medium",
	})
	if err != nil {
		redact.Logf("server: avatar generation failed for session %s: %v", sess.ID, err)
		writeError(w, http.StatusBadGateway, "Image generation API failed.")
		return
	}

	filename := fmt.Sprintf("%s_avatar%d.webp", sess.ID, len(sess.GeneratedAvatars)+1)
	outPath := filepath.Join(s.deps.StaticDir, "generated", filename)
	if err := os.WriteFile(outPath, resp.ImageBytes, 0o644); err != nil {
		writeError(w, http.StatusInternalServerError, "Error writing generated avatar file.")
		return
	}

	url := "/static/generated/" + filename
	sess.GeneratedAvatars = append(sess.GeneratedAvatars, session.Avatar{URL: url, Prompt: userPrompt})

	ev := eventlog.New(eventlog.TypeAvatarCreated, sess)
	ev.EventData = map[string]any{
		"avatar_prompt":        userPrompt,
		"avatar_url_generated": url,
	}
	s.deps.Emitter.Emit(r.Context(), ev)

	if s.deps.Telemetry != nil {
		s.deps.Telemetry.RecordAvatarGeneration(sess.Condition.Name)
	}

	s.persist(r.Context(), sess)

	writeJSON(w, http.StatusOK, avatarResponse{URL: url, Prompt: userPrompt})
}
