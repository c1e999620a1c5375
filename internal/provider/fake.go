package provider

import (
	"context"
	"errors"
	"sync"
)

// Fake is an in-memory provider for tests and the fake backend config. It
// records every request so tests can assert on the prompt and temperature
// that reached the backend.
type Fake struct {
	mu       sync.Mutex
	requests []Request

	// Reply is returned verbatim; Err, when set, wins.
	Reply string
	Err   error
}

// NewFake returns a fake provider with a canned reply.
func NewFake(reply string) *Fake {
	if reply == "" {
		reply = "That sounds interesting, tell me more."
	}
	return &Fake{Reply: reply}
}

func (f *Fake) ChatCompletion(_ context.Context, req *Request) (*Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	return &Response{
		Message: Message{Role: "assistant", Content: f.Reply},
		Usage:   Usage{PromptTokens: 42, CompletionTokens: 12, TotalTokens: 54},
	}, nil
}

// EditImage returns a tiny fixed payload, or Err when set.
func (f *Fake) EditImage(_ context.Context, req *ImageEditRequest) (*ImageEditResponse, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if req.Prompt == "" {
		return nil, errors.New("empty prompt")
	}
	return &ImageEditResponse{ImageBytes: []byte("RIFFfakewebp")}, nil
}

// Requests returns a copy of every recorded chat request.
func (f *Fake) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// LastRequest returns the most recent chat request, or nil.
func (f *Fake) LastRequest() *Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	last := f.requests[len(f.requests)-1]
	return &last
}
