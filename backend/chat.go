package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	nfhttp "github.com/newsflowhq/newsflow/http"
)

// Message is one chat message sent to the completion endpoint.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces a completion for a chat exchange. The server depends
// on this seam so tests can script model output.
type Completer interface {
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// ChatClient calls an OpenAI-compatible chat completion API.
type ChatClient struct {
	client *nfhttp.Client
	model  string
}

var _ Completer = (*ChatClient)(nil)

// ChatClientConfig configures a ChatClient.
type ChatClientConfig struct {
	Endpoint string // API base URL, e.g. https://api.openai.com/v1
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// NewChatClient builds a client from configuration.
func NewChatClient(cfg ChatClientConfig) *ChatClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	apiKey := cfg.APIKey
	return &ChatClient{
		model: cfg.Model,
		client: nfhttp.NewClient(nfhttp.ClientConfig{
			Client:      &http.Client{Timeout: timeout},
			BaseURL:     cfg.Endpoint,
			ServiceName: "chat",
			BeforeRequest: func(req *http.Request) {
				if apiKey != "" {
					req.Header.Set("Authorization", "Bearer "+apiKey)
				}
			},
		}),
	}
}

// Complete implements Completer.
func (c *ChatClient) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	req := struct {
		Model       string    `json:"model"`
		Messages    []Message `json:"messages"`
		Temperature float64   `json:"temperature"`
	}{Model: c.model, Messages: messages, Temperature: temperature}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.client.Post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
