// Package genai provides a client for the Gemini text-generation API.
package genai

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

// ErrMissingAPIKey indicates the model-access credential is absent from
// configuration. This is a configuration error, not a user-facing one.
var ErrMissingAPIKey = errors.New("GOOGLE_API_KEY is not set")

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Completer produces one text completion for a prompt. It is a single
// blocking call: no retries, no streaming, no partial output.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Config holds generation client configuration.
type Config struct {
	APIKey  string
	Model   string // e.g. "gemini-1.5-flash"
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a new generation client. A missing API key is rejected
// here so callers fail fast before any prompt is sent.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}, nil
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

// Complete sends the prompt and returns the model's text reply. A response
// with no candidates yields an empty string, not an error.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: prompt}}},
		},
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(genResp.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

// Model returns the model being used.
func (c *Client) Model() string {
	return c.model
}

var _ Completer = (*Client)(nil)

// MockCompleter is a canned-response completer for tests.
type MockCompleter struct {
	Reply   string
	Err     error
	Prompts []string
}

// Complete records the prompt and returns the canned reply or error.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

var _ Completer = (*MockCompleter)(nil)
