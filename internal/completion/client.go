package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/codegenhq/codegen/internal/config"
)

// systemInstruction pins the upstream model to code-only output.
const systemInstruction = "You generate valid, clean code only."

// ErrMalformedResponse is returned when the upstream reply carries neither
// an error object nor a usable completion.
var ErrMalformedResponse = errors.New("completion: malformed upstream response")

// UpstreamError reports a failure signaled by the completion API itself,
// including transport-level failures reaching it.
type UpstreamError struct {
	Message string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion: upstream error: %s", e.Message)
}

// Generator produces text for a prompt. Satisfied by Client; handlers
// depend on this so tests can substitute a stub.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client calls an OpenAI-compatible chat-completions endpoint once per
// prompt. No retries, no streaming.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// NewClient constructs a Client from completion config.
func NewClient(cfg config.CompletionConfig) *Client {
	return &Client{
		httpClient: &http.Client{},
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
	}
}

// chatMessage is one entry in the upstream messages array.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the upstream request payload.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatResponse covers both the success and the error shape of the upstream
// reply.
type chatResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt upstream and returns the generated text. An
// error object in the reply becomes *UpstreamError; a reply with no usable
// completion becomes ErrMalformedResponse.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
	}
	body, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		return "", fmt.Errorf("completion: marshal request: %w", errMarshal)
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if errReq != nil {
		return "", fmt.Errorf("completion: build request: %w", errReq)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return "", &UpstreamError{Message: errDo.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return "", &UpstreamError{Message: errRead.Error()}
	}

	var parsed chatResponse
	if errUnmarshal := json.Unmarshal(raw, &parsed); errUnmarshal != nil {
		return "", ErrMalformedResponse
	}
	if parsed.Error != nil {
		return "", &UpstreamError{Message: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", ErrMalformedResponse
	}
	return parsed.Choices[0].Message.Content, nil
}
