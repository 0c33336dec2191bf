package planner

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrMissingAPIKey is returned by Remote.Complete when no bearer token is
// configured. No request is sent.
var ErrMissingAPIKey = errors.New("api key is not set")

// Remote talks to an OpenAI-compatible chat completions API such as
// OpenRouter.
type Remote struct {
	client openai.Client
	model  string
	keyEnv string
	hasKey bool
}

// NewRemote creates a backend for cfg.URL. The bearer token is read from
// the environment variable named by cfg.APIKeyEnv. A missing token does not
// fail construction; every Complete call fails instead.
func NewRemote(cfg config.RemoteConfig, httpClient *http.Client) (*Remote, error) {
	key := cfg.APIKey()
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.URL),
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &Remote{client: openai.NewClient(opts...), model: cfg.Model, keyEnv: cfg.APIKeyEnv, hasKey: key != ""}, nil
}

func (r *Remote) Name() string { return "remote/" + r.model }

func (r *Remote) Complete(ctx context.Context, messages []model.Message) (string, error) {
	if !r.hasKey {
		return "", fmt.Errorf("%w: %s", ErrMissingAPIKey, r.keyEnv)
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(r.model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}
	for _, m := range messages {
		switch m.Role {
		case model.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case model.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
