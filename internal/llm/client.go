package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrGenerationFailed marks any transport, auth or non-2xx failure from the
// text-completion oracle. One attempt per request; callers surface it to the
// player instead of retrying.
var ErrGenerationFailed = errors.New("generation failed")

// Message is one role-tagged conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	HTTPClient  *http.Client
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
}

type chatCompletionsRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	FinishReason string  `json:"finish_reason"`
	Message      Message `json:"message"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		Model:       model,
		Temperature: 0.8,
	}
}

// Generate sends one chat-completions request and returns the raw reply text.
// Every failure mode collapses into ErrGenerationFailed.
func (c *Client) Generate(ctx context.Context, messages []Message) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("%w: api key missing", ErrGenerationFailed)
	}
	endpoint := c.BaseURL + "/chat/completions"

	reqBody, _ := json.Marshal(chatCompletionsRequest{Model: c.Model, Messages: messages, Temperature: c.Temperature})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: status=%d body=%s", ErrGenerationFailed, resp.StatusCode, string(b))
	}
	var cr chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGenerationFailed, err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrGenerationFailed)
	}
	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}
