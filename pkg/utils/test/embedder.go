package testutils

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
)

// MockEmbedder is a test embedder that returns predictable embeddings.
// Fixed vectors can be registered per text; unregistered texts get a
// deterministic vector derived from the text itself, so equal texts always
// embed equally.
type MockEmbedder struct {
	Embeddings map[string][]float32

	// Dimensions is the width of derived vectors. Defaults to 4.
	Dimensions int

	// FailOn causes Embed to return an error when the input text matches
	FailOn string

	// BlockOn causes Embed to block until the context is done when the
	// input text matches, then return the context error.
	BlockOn string

	// Calls counts Embed invocations. Safe under concurrent embedding.
	Calls int

	mu sync.Mutex
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Dimensions: 4,
	}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if m.BlockOn != "" && text == m.BlockOn {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	return m.derive(text), nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (m *MockEmbedder) Close() error {
	return nil
}

// derive hashes the text into a stable pseudo-embedding.
func (m *MockEmbedder) derive(text string) []float32 {
	dims := m.Dimensions
	if dims <= 0 {
		dims = 4
	}

	emb := make([]float32, dims)
	for i := range emb {
		h := fnv.New32a()
		fmt.Fprintf(h, "%d:%s", i, text)
		emb[i] = float32(h.Sum32()%1000)/1000.0 + 0.001
	}
	return emb
}
