package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

var tipsSchema = &Schema{
	Name: "test-tips",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"tips"},
		"properties": map[string]any{
			"tips": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string"},
			},
		},
	},
}

func TestMockProvider_ReplaysScript(t *testing.T) {
	mock := NewMockProvider(
		Scripted{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		Scripted{Content: json.RawMessage(`{"b":2}`)},
	)

	resp, err := mock.Generate(context.Background(), UserMessage("", "first"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"a":1}` {
		t.Errorf("content = %s, want {\"a\":1}", resp.Content)
	}
	if resp.Usage.Total() != 15 {
		t.Errorf("total tokens = %d, want 15", resp.Usage.Total())
	}

	if _, err := mock.Generate(context.Background(), UserMessage("", "second")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = mock.Generate(context.Background(), UserMessage("", "third"))
	var un *UnavailableError
	if !errors.As(err, &un) {
		t.Fatalf("empty script error = %v, want UnavailableError", err)
	}

	reqs := mock.Requests()
	if len(reqs) != 3 || reqs[2].Messages[0].Content != "third" {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestFinish_ValidatesSchema(t *testing.T) {
	req := UserMessage("", "tips please")
	req.Schema = tipsSchema

	if _, err := finish(req, &Response{Content: json.RawMessage(`{"tips":["draw it"]}`)}); err != nil {
		t.Fatalf("valid content rejected: %v", err)
	}

	for _, raw := range []string{`{"tips":[]}`, `{"tip":"x"}`, `not json`, `{"tips":[1]}`} {
		_, err := finish(req, &Response{Content: json.RawMessage(raw)})
		var inv *InvalidResponseError
		if !errors.As(err, &inv) {
			t.Errorf("finish(%s) error = %v, want InvalidResponseError", raw, err)
		}
	}
}

func TestFinish_TruncatedStructuredOutput(t *testing.T) {
	req := UserMessage("", "x")
	req.Schema = tipsSchema
	_, err := finish(req, &Response{Content: json.RawMessage(`{"tips":["a"`), StopReason: StopMaxTokens})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("error = %v, want ErrTruncated", err)
	}
}

func TestFinish_PlainTextIsQuoted(t *testing.T) {
	resp, err := finish(UserMessage("", "x"), &Response{Content: json.RawMessage(`Try mind maps.`)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var s string
	if err := json.Unmarshal(resp.Content, &s); err != nil || s != "Try mind maps." {
		t.Errorf("content = %s, want quoted text", resp.Content)
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name    string
		aliases map[string]string
		want    string
	}{
		{"claude-haiku", anthropicAliases, "claude-haiku-4-5-20251001"},
		{"gemini-flash", geminiAliases, "gemini-2.0-flash"},
		{"gemini-2.0-flash-lite", geminiAliases, "gemini-2.0-flash-lite"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.name, tt.aliases); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestPrice(t *testing.T) {
	p, ok := LookupPrice("gpt-4o-mini")
	if !ok {
		t.Fatal("gpt-4o-mini has no price")
	}
	got := p.Cost(Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000})
	if got < 0.749 || got > 0.751 {
		t.Errorf("cost = %f, want 0.75", got)
	}
	if _, ok := LookupPrice("no-such-model"); ok {
		t.Error("unknown model has a price")
	}
}

func TestPurpose(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Errorf("PurposeFrom(empty) = %q", got)
	}
	if got := PurposeFrom(WithPurpose(context.Background(), "study-tips")); got != "study-tips" {
		t.Errorf("PurposeFrom = %q, want study-tips", got)
	}
}
