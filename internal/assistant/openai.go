package assistant

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider calls the chat completions API
type OpenAIProvider struct {
	client   *openai.Client
	settings Settings
}

// NewOpenAIProvider creates a provider; baseURL overrides the API endpoint
func NewOpenAIProvider(apiKey, baseURL string, s Settings) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg), settings: s}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Complete sends the system context followed by msgs
func (p *OpenAIProvider) Complete(ctx context.Context, system string, msgs []Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, m := range msgs {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.settings.Model,
		Messages:    messages,
		Temperature: float32(p.settings.Temperature),
		MaxTokens:   p.settings.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}
