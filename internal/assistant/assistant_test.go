package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fii-advisor/backend/internal/insights"
	"github.com/wonny/fii-advisor/backend/pkg/config"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
	"github.com/wonny/fii-advisor/backend/pkg/redis"
)

type fakeProvider struct {
	reply  string
	err    error
	system string
	msgs   []Message
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, system string, msgs []Message) (string, error) {
	f.system = system
	f.msgs = msgs
	return f.reply, f.err
}

func TestChat(t *testing.T) {
	p := &fakeProvider{reply: "FIIs distribuem rendimentos mensais."}
	a := New(p, 0, logger.Nop())

	history := []Message{
		{Role: RoleUser, Content: "Olá"},
		{Role: RoleAssistant, Content: "Olá! Como posso ajudar?"},
	}

	reply, updated, err := a.Chat(context.Background(), history, "  O que é um FII?  ")
	require.NoError(t, err)

	assert.Equal(t, p.reply, reply)
	assert.Equal(t, ChatContext, p.system)
	require.Len(t, p.msgs, 3)
	assert.Equal(t, Message{Role: RoleUser, Content: "O que é um FII?"}, p.msgs[2])

	require.Len(t, updated, 4)
	assert.Equal(t, Message{Role: RoleAssistant, Content: p.reply}, updated[3])
	assert.Len(t, history, 2, "input history untouched")
}

func TestChatWithSharedLimit(t *testing.T) {
	p := &fakeProvider{reply: "ok"}
	a := New(p, 5, logger.Nop()).WithSharedLimit(redis.NewRateLimiter(redis.Disabled(), "test"), 5)

	reply, _, err := a.Chat(context.Background(), nil, "oi")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, 5, a.sharedRL.Limit)
}

func TestChatTrimsHistory(t *testing.T) {
	p := &fakeProvider{reply: "ok"}
	a := New(p, 0, logger.Nop())

	var history []Message
	for i := 0; i < 30; i++ {
		history = append(history, Message{Role: RoleUser, Content: "q"})
	}

	_, updated, err := a.Chat(context.Background(), history, "última")
	require.NoError(t, err)
	assert.Len(t, p.msgs, MaxHistory)
	assert.Equal(t, "última", p.msgs[MaxHistory-1].Content)
	assert.Len(t, updated, 32)
}

func TestChatErrors(t *testing.T) {
	a := New(&fakeProvider{}, 0, logger.Nop())
	_, _, err := a.Chat(context.Background(), nil, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	failing := New(&fakeProvider{err: errors.New("boom")}, 0, logger.Nop())
	history := []Message{{Role: RoleUser, Content: "a"}}
	_, got, err := failing.Chat(context.Background(), history, "b")
	assert.Error(t, err)
	assert.Equal(t, history, got)
}

func TestDisabledProvider(t *testing.T) {
	a := New(Disabled{}, 0, logger.Nop())
	assert.False(t, a.Enabled())

	_, _, err := a.Chat(context.Background(), nil, "oi")
	assert.ErrorIs(t, err, ErrProviderDisabled)
}

func TestAnalyzeFund(t *testing.T) {
	p := &fakeProvider{reply: "análise"}
	a := New(p, 60, logger.Nop())
	assert.True(t, a.Enabled())

	got, err := a.AnalyzeFund(context.Background(), insights.FundProfile{
		Ticker:        "HGLG11",
		DividendYield: 0.85,
		NetEquity:     1234567.891,
		Holders:       350000,
		Price:         160.5,
		Segment:       "Logística",
	})
	require.NoError(t, err)
	assert.Equal(t, "análise", got)

	require.Len(t, p.msgs, 1)
	prompt := p.msgs[0].Content
	assert.Contains(t, prompt, "- Ticker: HGLG11")
	assert.Contains(t, prompt, "- Dividend Yield Mensal Atual: 0,85%")
	assert.Contains(t, prompt, "- Patrimônio Líquido: R$ 1.234.567,89")
	assert.Contains(t, prompt, "- Valor da Cota: R$ 160,50")
	assert.Contains(t, prompt, "- Total de Cotistas: 350000")
	assert.Contains(t, prompt, "- Segmento: Logística")
	assert.Contains(t, prompt, "4. Riscos e oportunidades")
}

func TestAnalysisPromptWithoutPrice(t *testing.T) {
	prompt := AnalysisPrompt(insights.FundProfile{Ticker: "XPML11"})
	assert.Contains(t, prompt, "- Valor da Cota: R$ indisponível")
}

func TestSummarizeReportMissingFile(t *testing.T) {
	p := &fakeProvider{reply: "resumo"}
	a := New(p, 0, logger.Nop())

	_, err := a.SummarizeReport(context.Background(), "HGLG11", "/nonexistent/report.pdf")
	assert.Error(t, err)
	assert.Nil(t, p.msgs, "provider not called")
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		want    string
		wantErr bool
	}{
		{"openai", config.LLMConfig{Provider: "openai", OpenAIKey: "k"}, "openai", false},
		{"openai without key", config.LLMConfig{Provider: "openai"}, "none", false},
		{"anthropic", config.LLMConfig{Provider: "anthropic", AnthropicKey: "k"}, "anthropic", false},
		{"anthropic without key", config.LLMConfig{Provider: "anthropic"}, "none", false},
		{"none", config.LLMConfig{Provider: "none"}, "none", false},
		{"unknown", config.LLMConfig{Provider: "gemini"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg, logger.Nop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}
}
