package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const generalLogName = "general_frontend_events.jsonl"

// SessionFileSink appends events to one JSONL file per session, named
// participant_<pid>_<sid>.jsonl. Events without a session id land in a
// shared general file.
type SessionFileSink struct {
	dir string

	mu    sync.Mutex
	files map[string]*logFile
}

type logFile struct {
	file   *os.File
	writer *bufio.Writer
}

// NewSessionFileSink creates the log directory if needed.
func NewSessionFileSink(dir string) (*SessionFileSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("log dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &SessionFileSink{
		dir:   dir,
		files: make(map[string]*logFile),
	}, nil
}

func (s *SessionFileSink) Name() string { return "session_jsonl:" + s.dir }

func (s *SessionFileSink) fileNameFor(ev *Event) string {
	if ev.SessionID == "" {
		return generalLogName
	}
	pid := ev.ParticipantID
	if pid == "" {
		pid = "unknown"
	}
	return fmt.Sprintf("participant_%s_%s.jsonl", pid, ev.SessionID)
}

func (s *SessionFileSink) Deliver(_ context.Context, ev *Event) error {
	if ev == nil {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	name := s.fileNameFor(ev)

	s.mu.Lock()
	defer s.mu.Unlock()

	lf, ok := s.files[name]
	if !ok {
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		lf = &logFile{file: f, writer: bufio.NewWriter(f)}
		s.files[name] = lf
	}

	if _, err := lf.writer.Write(data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if err := lf.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	if err := lf.writer.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// CloseSession flushes and closes the file for one session so a finished
// conversation's log can be archived.
func (s *SessionFileSink) CloseSession(participantID, sessionID string) (string, error) {
	name := s.fileNameFor(&Event{ParticipantID: participantID, SessionID: sessionID})
	path := filepath.Join(s.dir, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	lf, ok := s.files[name]
	if !ok {
		return path, nil
	}
	delete(s.files, name)
	if err := lf.writer.Flush(); err != nil {
		lf.file.Close()
		return path, fmt.Errorf("flush: %w", err)
	}
	if err := lf.file.Close(); err != nil {
		return path, fmt.Errorf("close: %w", err)
	}
	return path, nil
}

func (s *SessionFileSink) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for name, lf := range s.files {
		if err := lf.writer.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := lf.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.files, name)
	}
	return firstErr
}
