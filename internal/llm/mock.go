package llm

import (
	"context"
	"errors"
	"sync"
)

// MockProvider returns scripted responses for tests.
type MockProvider struct {
	mu        sync.Mutex
	responses []*ChatResponse
	errs      []error
	handler   func(ChatRequest) (*ChatResponse, error)
	requests  []ChatRequest
}

// NewMockProvider creates a mock that replies with contents in order.
func NewMockProvider(contents ...string) *MockProvider {
	m := &MockProvider{}
	for _, c := range contents {
		m.Queue(c)
	}
	return m
}

// Queue appends a response.
func (m *MockProvider) Queue(content string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, &ChatResponse{Content: content, Model: "mock"})
	m.errs = append(m.errs, nil)
	return m
}

// QueueError appends a failing call.
func (m *MockProvider) QueueError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, nil)
	m.errs = append(m.errs, err)
	return m
}

// SetResponse replaces the queue with a single response returned forever.
func (m *MockProvider) SetResponse(content string) {
	m.SetHandler(func(ChatRequest) (*ChatResponse, error) {
		return &ChatResponse{Content: content, Model: "mock"}, nil
	})
}

// SetHandler computes responses from requests; it takes precedence over the queue.
func (m *MockProvider) SetHandler(h func(ChatRequest) (*ChatResponse, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

// Chat records the request and returns the next scripted response.
func (m *MockProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.requests = append(m.requests, cloneRequest(req))
	h := m.handler
	if h != nil {
		m.mu.Unlock()
		return h(req)
	}
	defer m.mu.Unlock()

	if len(m.responses) == 0 {
		return nil, errors.New("mock provider: no responses queued")
	}
	resp, err := m.responses[0], m.errs[0]
	m.responses, m.errs = m.responses[1:], m.errs[1:]
	if err != nil {
		return nil, err
	}
	out := *resp
	out.InputTokens = len(req.Messages)
	out.OutputTokens = len(out.Content)
	return &out, nil
}

// Requests returns every request seen so far.
func (m *MockProvider) Requests() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	r := m.requests[len(m.requests)-1]
	return &r
}

func cloneRequest(req ChatRequest) ChatRequest {
	req.Messages = append([]Message(nil), req.Messages...)
	req.Stop = append([]string(nil), req.Stop...)
	return req
}
