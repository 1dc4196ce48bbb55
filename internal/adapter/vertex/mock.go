package vertex

import "rag/internal/port"

// MockEmbedder produces deterministic vectors without network access.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(texts []string, intent port.Intent) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, e.dimension)
		for j, r := range texts[i] {
			if j < e.dimension {
				vectors[i][j] = float32(r) / 1000.0
			}
		}
	}
	return vectors, nil
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}

// MockCompleter echoes a canned answer, recording the last prompt it saw.
type MockCompleter struct {
	Answer     string
	LastPrompt string
}

func (c *MockCompleter) Complete(prompt string, params port.GenerationParams) (string, error) {
	c.LastPrompt = prompt
	return c.Answer, nil
}

func (c *MockCompleter) ModelName() string {
	return "mock"
}
