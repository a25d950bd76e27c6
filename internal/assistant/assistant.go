package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/fii-advisor/backend/internal/insights"
	"github.com/wonny/fii-advisor/backend/internal/reports"
	"github.com/wonny/fii-advisor/backend/pkg/logger"
	"github.com/wonny/fii-advisor/backend/pkg/redis"
)

// ErrEmptyMessage is returned for blank chat input
var ErrEmptyMessage = errors.New("empty message")

// MaxHistory bounds the turns sent back to the provider
const MaxHistory = 20

// Assistant answers FII questions through an LLM provider
// ⭐ SSOT: LLM 호출은 여기서만
type Assistant struct {
	provider Provider
	limiter  *rate.Limiter
	shared   *redis.RateLimiter // optional, shared across API instances
	sharedRL redis.RateLimitConfig
	logger   *logger.Logger
}

// New creates an assistant; requestsPerMin <= 0 disables throttling
func New(provider Provider, requestsPerMin int, log *logger.Logger) *Assistant {
	a := &Assistant{
		provider: provider,
		logger:   log.WithComponent("assistant"),
	}
	if requestsPerMin > 0 {
		a.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMin)), requestsPerMin)
	}
	return a
}

// WithSharedLimit additionally throttles completions through Redis
func (a *Assistant) WithSharedLimit(limiter *redis.RateLimiter, requestsPerMin int) *Assistant {
	a.shared = limiter
	a.sharedRL = redis.LLMRateLimit(requestsPerMin)
	return a
}

// Enabled reports whether a real provider is configured
func (a *Assistant) Enabled() bool {
	_, disabled := a.provider.(Disabled)
	return !disabled
}

func (a *Assistant) complete(ctx context.Context, system string, msgs []Message) (string, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	if a.shared != nil {
		if err := a.shared.Wait(ctx, a.sharedRL); err != nil {
			return "", err
		}
	}

	start := time.Now()
	reply, err := a.provider.Complete(ctx, system, msgs)
	log := a.logger.WithFields(map[string]interface{}{
		"provider": a.provider.Name(),
		"messages": len(msgs),
		"duration": time.Since(start),
	})
	if err != nil {
		if !errors.Is(err, ErrProviderDisabled) {
			log.WithError(err).Warn("Completion failed")
		}
		return "", err
	}
	log.Debug("Completion succeeded")
	return reply, nil
}

// Chat appends userMessage to history, asks the provider and returns the
// reply with the updated history. history is not modified.
func (a *Assistant) Chat(ctx context.Context, history []Message, userMessage string) (string, []Message, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return "", history, ErrEmptyMessage
	}

	updated := make([]Message, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated, Message{Role: RoleUser, Content: userMessage})

	sent := updated
	if len(sent) > MaxHistory {
		sent = sent[len(sent)-MaxHistory:]
	}

	reply, err := a.complete(ctx, ChatContext, sent)
	if err != nil {
		return "", history, err
	}

	updated = append(updated, Message{Role: RoleAssistant, Content: reply})
	return reply, updated, nil
}

// AnalyzeFund asks for a written analysis of profile
func (a *Assistant) AnalyzeFund(ctx context.Context, profile insights.FundProfile) (string, error) {
	return a.complete(ctx, analysisContext, []Message{{Role: RoleUser, Content: AnalysisPrompt(profile)}})
}

// SummarizeReport extracts the text of a report PDF and summarizes it
func (a *Assistant) SummarizeReport(ctx context.Context, ticker, path string) (string, error) {
	text, err := reports.ExtractText(path, reports.MaxChars)
	if err != nil {
		return "", fmt.Errorf("extract report: %w", err)
	}
	return a.complete(ctx, reportContext, []Message{{Role: RoleUser, Content: ReportPrompt(ticker, text)}})
}
