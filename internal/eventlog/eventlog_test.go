package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kagami-chat/kagami/internal/session"
)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New("p07", "none_adaptive")
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	s.TurnNumber = 3
	return s
}

func TestNewEventCarriesSessionIdentity(t *testing.T) {
	s := testSession(t)
	ev := New(TypeUserMessage, s)

	if ev.SessionID != s.ID || ev.ParticipantID != "p07" {
		t.Fatalf("identity not copied: %+v", ev)
	}
	if ev.TurnNumber != 3 {
		t.Fatalf("turn number not copied: %d", ev.TurnNumber)
	}
	if ev.Condition == nil || !ev.Condition.Adaptive {
		t.Fatalf("condition not copied: %+v", ev.Condition)
	}
	if ev.TimestampUTC.IsZero() {
		t.Fatalf("timestamp should be set")
	}
}

func TestApplyLevel(t *testing.T) {
	build := func() *Event {
		ev := New(TypeUserMessage, testSession(t))
		ev.Content = "hi there sk-abcdefghijklmnopqrstuvwx"
		ev.SystemInstruction = "be nice"
		ev.EventData = map[string]any{"k": "v"}
		return ev
	}

	meta := build().ApplyLevel(LevelMetadata)
	if meta.Content != "" || meta.SystemInstruction != "" || meta.EventData != nil {
		t.Fatalf("metadata level should drop content: %+v", meta)
	}
	if meta.SessionID == "" {
		t.Fatalf("metadata level keeps identity")
	}

	red := build().ApplyLevel(LevelRedacted)
	if red.Content == "" {
		t.Fatalf("redacted level keeps content")
	}
	if red.Content == "hi there sk-abcdefghijklmnopqrstuvwx" {
		t.Fatalf("redacted level should scrub secrets: %q", red.Content)
	}

	full := build().ApplyLevel(LevelFull)
	if full.Content != "hi there sk-abcdefghijklmnopqrstuvwx" {
		t.Fatalf("full level leaves content alone")
	}
}

func TestSessionFileSinkWritesPerSessionFiles(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewSessionFileSink(dir)
	if err != nil {
		t.Fatalf("NewSessionFileSink: %v", err)
	}
	defer sink.Close(context.Background())

	s := testSession(t)
	for i := 0; i < 2; i++ {
		ev := New(TypeUserMessage, s)
		ev.Content = "hello"
		if err := sink.Deliver(context.Background(), ev); err != nil {
			t.Fatalf("Deliver: %v", err)
		}
	}

	path := filepath.Join(dir, "participant_p07_"+s.ID+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("expected per-session log file: %v", err)
	}
	defer f.Close()

	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev Event
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		if ev.EventType != TypeUserMessage {
			t.Fatalf("unexpected event type %q", ev.EventType)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}

func TestSessionFileSinkGeneralFallback(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewSessionFileSink(dir)
	if err != nil {
		t.Fatalf("NewSessionFileSink: %v", err)
	}
	defer sink.Close(context.Background())

	ev := New(TypeFrontend, nil)
	ev.EventData = map[string]any{"page": "landing"}
	if err := sink.Deliver(context.Background(), ev); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, generalLogName)); err != nil {
		t.Fatalf("general log file missing: %v", err)
	}
}

func TestSessionFileSinkCloseSession(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewSessionFileSink(dir)
	if err != nil {
		t.Fatalf("NewSessionFileSink: %v", err)
	}
	defer sink.Close(context.Background())

	s := testSession(t)
	if err := sink.Deliver(context.Background(), New(TypeSessionStart, s)); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	path, err := sink.CloseSession(s.ParticipantID, s.ID)
	if err != nil {
		t.Fatalf("CloseSession: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("closed log should remain on disk: %v", err)
	}
	// Closing an unknown session is a no-op.
	if _, err := sink.CloseSession("p99", "nope"); err != nil {
		t.Fatalf("unknown session close should not error: %v", err)
	}
}

type captureSink struct {
	delivered atomic.Int64
	fail      bool
}

func (c *captureSink) Name() string { return "capture" }
func (c *captureSink) Deliver(context.Context, *Event) error {
	if c.fail {
		return errors.New("boom")
	}
	c.delivered.Add(1)
	return nil
}
func (c *captureSink) Close(context.Context) error { return nil }

func TestEmitterDeliversAndCounts(t *testing.T) {
	sink := &captureSink{}
	em := NewEmitter(EmitterConfig{QueueSize: 10, Workers: 1, Level: LevelFull}, []Sink{sink})

	for i := 0; i < 3; i++ {
		em.Emit(context.Background(), New(TypeUserMessage, nil))
	}
	em.Close(context.Background())

	if got := sink.delivered.Load(); got != 3 {
		t.Fatalf("delivered %d events, want 3", got)
	}
	m := em.MetricsSnapshot()
	if m.Enqueued() != 3 || m.Dropped() != 0 {
		t.Fatalf("unexpected metrics: enqueued=%d dropped=%d", m.Enqueued(), m.Dropped())
	}
	if m.SinkSuccess("capture") != 3 {
		t.Fatalf("sink success = %d, want 3", m.SinkSuccess("capture"))
	}
}

func TestEmitterCountsFailures(t *testing.T) {
	sink := &captureSink{fail: true}
	em := NewEmitter(EmitterConfig{QueueSize: 10, Workers: 1, Level: LevelFull}, []Sink{sink})

	em.Emit(context.Background(), New(TypeError, nil))
	em.Close(context.Background())

	m := em.MetricsSnapshot()
	if got := m.SinkFailure("capture"); got != 1 {
		t.Fatalf("sink failure = %d, want 1", got)
	}
}

func TestEmitterDropsAfterClose(t *testing.T) {
	em := NewEmitter(EmitterConfig{QueueSize: 1, Workers: 1, Level: LevelFull}, nil)
	em.Close(context.Background())
	em.Emit(context.Background(), New(TypeUserMessage, nil))

	m := em.MetricsSnapshot()
	if got := m.Dropped(); got != 1 {
		t.Fatalf("dropped = %d, want 1", got)
	}
}

func TestWebhookSinkRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink, err := NewWebhookSink(srv.URL, map[string]string{"X-Archive-Key": "k"}, time.Second)
	if err != nil {
		t.Fatalf("NewWebhookSink: %v", err)
	}
	if err := sink.Deliver(context.Background(), New(TypeSessionEnd, nil)); err != nil {
		t.Fatalf("Deliver should succeed on retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, got %d calls", calls.Load())
	}
}

func TestWebhookSinkGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink, err := NewWebhookSink(srv.URL, nil, time.Second)
	if err != nil {
		t.Fatalf("NewWebhookSink: %v", err)
	}
	if err := sink.Deliver(context.Background(), New(TypeSessionEnd, nil)); err == nil {
		t.Fatalf("persistent failure should surface an error")
	}
}
