package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider calls the Messages API
type AnthropicProvider struct {
	client   anthropic.Client
	settings Settings
}

// NewAnthropicProvider creates a provider; baseURL overrides the API endpoint
func NewAnthropicProvider(apiKey, baseURL string, s Settings) *AnthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL), option.WithMaxRetries(0))
	}
	return &AnthropicProvider{client: anthropic.NewClient(opts...), settings: s}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

// Complete sends msgs with system as the System parameter
func (p *AnthropicProvider) Complete(ctx context.Context, system string, msgs []Message) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.settings.Model),
		MaxTokens: int64(p.settings.MaxTokens),
		Messages:  messages,
	}
	if p.settings.Temperature > 0 {
		params.Temperature = anthropic.Float(p.settings.Temperature)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}
	return sb.String(), nil
}
