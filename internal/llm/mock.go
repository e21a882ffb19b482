package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// Scripted is one canned reply for MockProvider.
type Scripted struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies in order and records each request.
// With an empty script it fails as unavailable.
type MockProvider struct {
	mu       sync.Mutex
	script   []Scripted
	requests []Request
}

// NewMockProvider returns a provider that replays script.
func NewMockProvider(script ...Scripted) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.script) == 0 {
		return nil, &UnavailableError{}
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return finish(req, &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: StopEnd})
}

func (m *MockProvider) ModelID() string { return "mock" }

// Push appends replies to the script.
func (m *MockProvider) Push(s ...Scripted) {
	m.mu.Lock()
	m.script = append(m.script, s...)
	m.mu.Unlock()
}

// Requests returns a copy of every request seen so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
