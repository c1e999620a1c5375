package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func sampleSession(t *testing.T) *Session {
	t.Helper()
	s, err := New("p42", "generated_adaptive")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Append(RoleAssistant, "Hey there, I'm Kagami.")
	s.TurnNumber = 2
	score := 0.61
	s.SmoothedLSM = &score
	s.History = append(s.History,
		Message{Role: RoleUser, Content: "hi!", TurnNumber: 1},
		Message{Role: RoleAssistant, Content: "hello", TurnNumber: 1},
		Message{Role: RoleUser, Content: "how are you", TurnNumber: 2},
	)
	s.GeneratedAvatars = []Avatar{{URL: "/static/generated/a1.webp", Prompt: "a fox"}}
	return s
}

func assertRoundTrip(t *testing.T, want, got *Session) {
	t.Helper()
	if got.ID != want.ID || got.ParticipantID != want.ParticipantID {
		t.Fatalf("identity mismatch: %+v vs %+v", got, want)
	}
	if got.Condition != want.Condition {
		t.Fatalf("condition mismatch: %+v vs %+v", got.Condition, want.Condition)
	}
	if got.TurnNumber != want.TurnNumber {
		t.Fatalf("turn mismatch: %d vs %d", got.TurnNumber, want.TurnNumber)
	}
	if (got.SmoothedLSM == nil) != (want.SmoothedLSM == nil) {
		t.Fatalf("smoothed score nilness lost: %v vs %v", got.SmoothedLSM, want.SmoothedLSM)
	}
	if got.SmoothedLSM != nil && *got.SmoothedLSM != *want.SmoothedLSM {
		t.Fatalf("smoothed score mismatch: %v vs %v", *got.SmoothedLSM, *want.SmoothedLSM)
	}
	if len(got.History) != len(want.History) {
		t.Fatalf("history length mismatch: %d vs %d", len(got.History), len(want.History))
	}
	for i := range want.History {
		if got.History[i] != want.History[i] {
			t.Fatalf("history[%d] mismatch: %+v vs %+v", i, got.History[i], want.History[i])
		}
	}
	if len(got.GeneratedAvatars) != len(want.GeneratedAvatars) {
		t.Fatalf("avatars lost in round trip")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	want := sampleSession(t)

	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, want.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertRoundTrip(t, want, got)
}

func TestFileStorePreservesNilScore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	s := sampleSession(t)
	s.SmoothedLSM = nil
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, s.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.SmoothedLSM != nil {
		t.Fatalf("nil smoothed score should survive persistence, got %v", *got.SmoothedLSM)
	}
}

func TestFileStoreDeleteAndNotFound(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing session should yield ErrNotFound, got %v", err)
	}

	s := sampleSession(t)
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted session should yield ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("double delete should be a no-op, got %v", err)
	}
}

func TestFileStoreLoadAll(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Save(ctx, sampleSession(t)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	all, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("LoadAll returned %d sessions, want 3", len(all))
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, err := NewRedisStore(ctx, mr.Addr(), "", 0, "kagami", time.Hour)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer store.Close()

	want := sampleSession(t)
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, want.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertRoundTrip(t, want, got)

	all, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("LoadAll returned %d sessions, want 1", len(all))
	}

	if err := store.Delete(ctx, want.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, want.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted session should yield ErrNotFound, got %v", err)
	}
}

func TestRegistrySerializesPerSession(t *testing.T) {
	reg := NewRegistry()

	var order []int
	var mu sync.Mutex
	unlock := reg.Lock("s1")

	done := make(chan struct{})
	go func() {
		u := reg.Lock("s1")
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		u()
		close(done)
	}()

	// The other session's lock must not block.
	u2 := reg.Lock("s2")
	u2()

	mu.Lock()
	order = append(order, 1)
	mu.Unlock()
	unlock()
	<-done

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("turns of one session interleaved: %v", order)
	}
	reg.Forget("s1")
}
