package store

import (
	"context"
	"fmt"
)

// eventRepo implements EventRepo on the shared database and sequence.
type eventRepo struct {
	s *Store
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q := sqlite().Insert(tableLLMRequests).
		Columns("sequence", "timestamp", "provider", "model", "purpose",
			"input_tokens", "output_tokens", "latency_ms", "success", "error_message").
		Values(seq, r.s.stamp(), data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage)
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAPICall(ctx context.Context, data APICallEventData) error {
	seq, err := r.s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q := sqlite().Insert(tableAPICalls).
		Columns("sequence", "timestamp", "method", "path", "status",
			"latency_ms", "success", "error_message").
		Values(seq, r.s.stamp(), data.Method, data.Path, data.Status,
			data.LatencyMs, data.Success, data.ErrorMessage)
	if _, err := r.s.exec(ctx, q); err != nil {
		return fmt.Errorf("save API call event: %w", err)
	}
	return nil
}
