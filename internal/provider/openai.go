package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// openAIProvider implements Provider and ImageEditor against the OpenAI
// HTTP API.
type openAIProvider struct {
	baseURL          string
	apiKey           string
	client           *http.Client
	maxResponseBytes int64
}

// NewOpenAI creates a provider for the Chat Completions and Images APIs.
func NewOpenAI(baseURL, apiKey string, timeout time.Duration, maxResponseBytes int64) *openAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxResponseBytes <= 0 {
		maxResponseBytes = 4 * 1024 * 1024
	}

	return &openAIProvider{
		baseURL:          baseURL,
		apiKey:           apiKey,
		maxResponseBytes: maxResponseBytes,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type openAIChatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (p *openAIProvider) ChatCompletion(ctx context.Context, req *Request) (*Response, error) {
	oaiReq := openAIChatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	body, err := json.Marshal(oaiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal openai request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/chat/completions", p.baseURL),
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("create openai request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := p.readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openai response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		var errBody openAIErrorResponse
		if err := json.Unmarshal(respBody, &errBody); err != nil {
			return nil, fmt.Errorf("openai error status %d and failed to decode error body: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("openai error: %s (type=%s)", errBody.Error.Message, errBody.Error.Type)
	}

	var oaiResp openAIChatResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return nil, fmt.Errorf("decode openai response: %w", err)
	}

	if len(oaiResp.Choices) == 0 {
		return nil, fmt.Errorf("openai response had no choices")
	}

	first := oaiResp.Choices[0]
	return &Response{
		Message: first.Message,
		Usage:   oaiResp.Usage,
	}, nil
}

type openAIImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// EditImage calls the images/edits endpoint with a multipart payload and
// decodes the returned base64 image.
func (p *openAIProvider) EditImage(ctx context.Context, req *ImageEditRequest) (*ImageEditResponse, error) {
	img, err := os.Open(req.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("open base image: %w", err)
	}
	defer img.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", filepath.Base(req.ImagePath))
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, img); err != nil {
		return nil, fmt.Errorf("copy base image: %w", err)
	}

	fields := map[string]string{
		"model":         req.Model,
		"prompt":        req.Prompt,
		"background":    "transparent",
		"output_format": "webp",
		"size":          req.Size,
		"quality":       req.Quality,
		"n":             "1",
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write multipart field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/images/edits", p.baseURL),
		&buf,
	)
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call openai images: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := p.readLimited(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		var errBody openAIErrorResponse
		if err := json.Unmarshal(respBody, &errBody); err != nil {
			return nil, fmt.Errorf("openai images error status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("openai images error: %s (type=%s)", errBody.Error.Message, errBody.Error.Type)
	}

	var imgResp openAIImageResponse
	if err := json.Unmarshal(respBody, &imgResp); err != nil {
		return nil, fmt.Errorf("decode image response: %w", err)
	}
	if len(imgResp.Data) == 0 || imgResp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("image response had no data")
	}

	raw, err := base64.StdEncoding.DecodeString(imgResp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return &ImageEditResponse{ImageBytes: raw}, nil
}

func (p *openAIProvider) readLimited(r io.Reader) ([]byte, error) {
	limited := io.LimitReader(r, p.maxResponseBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > p.maxResponseBytes {
		return nil, fmt.Errorf("response exceeded limit (%d bytes)", p.maxResponseBytes)
	}
	return body, nil
}
