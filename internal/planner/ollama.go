package planner

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/ollama/ollama/api"
)

// Ollama talks to a local Ollama server's chat endpoint.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama creates a backend for the server at cfg.URL.
func NewOllama(cfg config.LocalConfig, httpClient *http.Client) (*Ollama, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Ollama{client: api.NewClient(base, httpClient), model: cfg.Model}, nil
}

func (o *Ollama) Name() string { return "ollama/" + o.model }

func (o *Ollama) Complete(ctx context.Context, messages []model.Message) (string, error) {
	msgs := make([]api.Message, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}
	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   &stream,
	}

	var sb strings.Builder
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return sb.String(), nil
}
