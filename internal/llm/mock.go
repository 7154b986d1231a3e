package llm

import (
	"context"
	"sync"
)

// Mock is a deterministic LLM implementation for testing.
// It returns a fixed response, or consumes a scripted queue of responses
// when the pipeline under test issues several calls in sequence.
type Mock struct {
	// Response is the fixed text returned by Generate when Responses is empty.
	Response string

	// Responses is a queue of scripted replies, consumed one per call.
	// When exhausted, Generate falls back to Response.
	Responses []string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// Errors is a queue of scripted errors aligned with Responses; a nil
	// entry means the corresponding call succeeds.
	Errors []error

	mu      sync.Mutex
	prompts []string
	calls   int
}

// NewMock creates a mock LLM with the given fixed response.
func NewMock(response string) *Mock {
	return &Mock{Response: response}
}

// NewMockWithError creates a mock LLM that always returns an error.
func NewMockWithError(err error) *Mock {
	return &Mock{Error: err}
}

// NewMockScripted creates a mock LLM that replies from a queue, one response
// per Generate call.
func NewMockScripted(responses ...string) *Mock {
	return &Mock{Responses: responses}
}

// Generate returns the next scripted response, the fixed response, or the
// configured error. Every prompt is recorded for later assertions.
func (m *Mock) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := m.calls
	m.calls++
	m.prompts = append(m.prompts, prompt)

	if call < len(m.Errors) && m.Errors[call] != nil {
		return "", m.Errors[call]
	}
	if m.Error != nil {
		return "", m.Error
	}
	if call < len(m.Responses) {
		return m.Responses[call], nil
	}
	return m.Response, nil
}

// Calls returns how many times Generate was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns a copy of every prompt passed to Generate, in order.
func (m *Mock) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or "" if Generate never ran.
func (m *Mock) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}
