package llm

import (
	"context"
	"time"

	"github.com/abhisek/stylequiz/internal/logging"
	"github.com/abhisek/stylequiz/internal/store"
)

type loggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      *logging.Logger
}

// WithLogging records every request to events (when non-nil) and to log.
// Recording failures are logged and never fail the request.
func WithLogging(p Provider, providerName string, events store.EventRepo, log *logging.Logger) Provider {
	if log == nil {
		log = logging.Nop()
	}
	return &loggingProvider{inner: p, provider: providerName, events: events, log: log}
}

func (l *loggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:  l.provider,
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.Model = resp.Model
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	args := []any{
		"provider", data.Provider, "model", data.Model, "purpose", data.Purpose,
		"latency_ms", data.LatencyMs, "tokens", data.InputTokens + data.OutputTokens,
	}
	if price, ok := LookupPrice(data.Model); ok && resp != nil {
		args = append(args, "cost_usd", price.Cost(resp.Usage))
	}
	if err != nil {
		l.log.WarnContext(ctx, "llm request failed", append(args, "error", err)...)
	} else {
		l.log.DebugContext(ctx, "llm request", args...)
	}

	if l.events != nil {
		if recErr := l.events.AppendLLMRequest(ctx, data); recErr != nil {
			l.log.WarnContext(ctx, "record llm request", "error", recErr)
		}
	}
	return resp, err
}
