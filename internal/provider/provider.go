// Package provider wraps the upstream generation backends: chat completion
// for replies, image edits for avatars.
package provider

import "context"

// Message is one chat message in provider wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting from the upstream call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Request is a chat completion request. Temperature is always sent, the
// static condition pins it to 0.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Response is the first choice of a chat completion plus usage.
type Response struct {
	Message Message
	Usage   Usage
}

// Provider is the interface for all upstream chat backends.
type Provider interface {
	ChatCompletion(ctx context.Context, req *Request) (*Response, error)
}

// ImageEditRequest asks for an edit of a base image guided by a prompt.
type ImageEditRequest struct {
	Model     string
	Prompt    string
	ImagePath string
	Size      string
	Quality   string
}

// ImageEditResponse carries the edited image bytes.
type ImageEditResponse struct {
	ImageBytes []byte
}

// ImageEditor is the interface for avatar generation backends.
type ImageEditor interface {
	EditImage(ctx context.Context, req *ImageEditRequest) (*ImageEditResponse, error)
}
