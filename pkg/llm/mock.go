package llm

import (
	"context"
	"sync"

	"github.com/thelegendaryrichman/nova/pkg/types"
)

// MockProvider is a scripted Provider for tests.
// GenerateFunc, when set, decides each response; otherwise Response/Err are returned.
type MockProvider struct {
	Model        string
	Response     *Response
	Err          error
	GenerateFunc func(ctx context.Context, req *Request) (*Response, error)

	mu       sync.Mutex
	requests []Request
}

// Generate records the request and returns the scripted result.
func (m *MockProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, *req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Response == nil {
		return &Response{}, nil
	}
	resp := *m.Response
	return &resp, nil
}

// Requests returns a copy of every request received so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// GetModelInfo returns minimal model metadata.
func (m *MockProvider) GetModelInfo() *types.ModelInfo {
	return &types.ModelInfo{Provider: "mock", Name: m.Model}
}

// GetModel returns the configured model name.
func (m *MockProvider) GetModel() string { return m.Model }

// GetBaseURL returns an empty base URL.
func (m *MockProvider) GetBaseURL() string { return "" }
