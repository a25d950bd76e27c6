package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/fii-advisor/backend/pkg/config"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
)

// ErrProviderDisabled is returned when no LLM provider is configured
var ErrProviderDisabled = errors.New("llm provider disabled")

// Role of a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Provider completes a conversation with a system instruction
type Provider interface {
	Name() string
	Complete(ctx context.Context, system string, msgs []Message) (string, error)
}

// Settings shared by providers
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Provider defaults
const (
	DefaultOpenAIModel    = "gpt-3.5-turbo"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultTemperature    = 0.7
	DefaultMaxTokens      = 1000
)

// NewProvider builds the provider selected by cfg.
// A missing API key yields the disabled provider instead of an error.
func NewProvider(cfg config.LLMConfig, log *logger.Logger) (Provider, error) {
	s := Settings{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultMaxTokens
	}

	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIKey == "" {
			log.Warn("OPENAI_API_KEY not set, assistant disabled")
			return Disabled{}, nil
		}
		if s.Model == "" {
			s.Model = DefaultOpenAIModel
		}
		return NewOpenAIProvider(cfg.OpenAIKey, "", s), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			log.Warn("ANTHROPIC_API_KEY not set, assistant disabled")
			return Disabled{}, nil
		}
		if s.Model == "" {
			s.Model = DefaultAnthropicModel
		}
		return NewAnthropicProvider(cfg.AnthropicKey, "", s), nil
	case "none", "":
		return Disabled{}, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}

// Disabled always fails with ErrProviderDisabled
type Disabled struct{}

func (Disabled) Name() string { return "none" }

func (Disabled) Complete(context.Context, string, []Message) (string, error) {
	return "", ErrProviderDisabled
}
