package mock

import (
	"context"
	"strings"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// CompleteFunc is called by Complete if set.
	// If nil, uses default canned behavior.
	CompleteFunc func(ctx context.Context, system, prompt string) (string, error)

	callCount int
}

// NewMockGenerator creates a mock generator with default canned behavior.
// Note: Returns concrete type to allow test assertions via the mock's methods.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Complete returns a deterministic canned completion.
// Default behavior: echoes the last prompt line into a short multi-sentence
// answer so callers exercising post-processing have something to work with.
func (m *MockGenerator) Complete(ctx context.Context, system, prompt string) (string, error) {
	m.callCount++

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, system, prompt)
	}

	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	last := ""
	if len(lines) > 0 {
		last = strings.TrimSpace(lines[len(lines)-1])
	}
	return "That is a good question. I don't have a curated answer for \"" + last +
		"\" yet. Feel free to rephrase or ask about something else.", nil
}

// CallCount returns the number of times Complete was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.CompleteFunc = nil
}
