// Package llmtest provides a function-field mock of llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/interview-assistant/internal/llm"
)

// MockClient implements llm.Client for testing
type MockClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)

	mu      sync.Mutex
	prompts []string
}

// Reply returns a mock whose GenerateJSON always answers with reply.
func Reply(reply string) *MockClient {
	return &MockClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return reply, nil
		},
	}
}

// Fail returns a mock whose calls all fail with err.
func Fail(err error) *MockClient {
	fn := func(context.Context, string, llm.ModelTier) (string, error) {
		return "", err
	}
	return &MockClient{GenerateContentFunc: fn, GenerateJSONFunc: fn}
}

func (m *MockClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(prompt)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.record(prompt)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "{}", nil
}

func (m *MockClient) GetModel(llm.ModelTier) string {
	return "mock-model"
}

func (m *MockClient) Close() error {
	return nil
}

// Prompts returns every prompt the mock has received.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func (m *MockClient) record(prompt string) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
}
