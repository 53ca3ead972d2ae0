package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// systemPrompt frames the assistant as the P2H safety officer the mobile
// app exposes. All intelligence lives in the hosted model.
const systemPrompt = "Anda adalah asisten Safety Officer (P2H & ERT) yang ahli. " +
	"Jawablah dengan ringkas, ramah, dan profesional dalam Bahasa Indonesia. " +
	"Bantu pengguna menganalisa masalah unit atau prosedur keselamatan."

// Client forwards user text to an OpenAI-compatible chat-completions
// endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewClient constructs a client for the given API base URL and model.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Ask sends one user message and returns the assistant reply.
func (c *Client) Ask(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("chat api key not configured")
	}

	payload := map[string]any{
		"model": c.model,
		"messages": []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/chat/completions", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return "", errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "chat completion request")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", errors.Errorf("chat api returned %s", resp.Status)
	}

	var result struct {
		Choices []struct {
			Message message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.WithStack(err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("chat api returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}
