package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		Scripted{Err: &UnavailableError{Err: errors.New("down")}},
		Scripted{Err: &RateLimitError{Err: errors.New("slow down")}},
		Scripted{Content: json.RawMessage(`{"ok":true}`)},
	)
	resp, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"ok":true}` {
		t.Errorf("content = %s", resp.Content)
	}
	if n := len(mock.Requests()); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(
		Scripted{Err: &UnavailableError{}},
		Scripted{Err: &UnavailableError{}},
		Scripted{Err: &UnavailableError{}},
		Scripted{Content: json.RawMessage(`{}`)},
	)
	_, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})
	var un *UnavailableError
	if !errors.As(err, &un) {
		t.Fatalf("error = %v, want UnavailableError", err)
	}
	if n := len(mock.Requests()); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	mock := NewMockProvider(
		Scripted{Err: &InvalidResponseError{Err: errors.New("bad")}},
		Scripted{Err: &InvalidResponseError{Err: errors.New("bad again")}},
		Scripted{Content: json.RawMessage(`{}`)},
	)
	_, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})
	var inv *InvalidResponseError
	if !errors.As(err, &inv) {
		t.Fatalf("error = %v, want InvalidResponseError", err)
	}
	if n := len(mock.Requests()); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestRetry_PermanentErrorNotRetried(t *testing.T) {
	mock := NewMockProvider(Scripted{Err: statusError(400, errors.New("bad request"))})
	if _, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if n := len(mock.Requests()); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestRetry_StopsOnCancel(t *testing.T) {
	mock := NewMockProvider(Scripted{Err: &UnavailableError{}}, Scripted{Content: json.RawMessage(`{}`)})
	cfg := fastRetry()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := WithRetry(mock, cfg).Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}

func TestRetry_HonorsRetryAfter(t *testing.T) {
	r := &retryProvider{cfg: fastRetry()}
	got := r.wait(0, &RateLimitError{RetryAfter: 3 * time.Second})
	if got != 3*time.Second {
		t.Errorf("wait = %s, want 3s", got)
	}
	for attempt := range 5 {
		if w := r.wait(attempt, &UnavailableError{}); w > 6*time.Millisecond {
			t.Errorf("wait(%d) = %s, exceeds max plus jitter", attempt, w)
		}
	}
}
