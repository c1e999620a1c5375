package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the store has no record for a session id.
var ErrNotFound = errors.New("session not found")

// Store persists conversation sessions. Implementations must round-trip
// every Session field losslessly, including the nil-vs-0.5 distinction on
// the smoothed score.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	LoadAll(ctx context.Context) ([]*Session, error)
	Close() error
}
