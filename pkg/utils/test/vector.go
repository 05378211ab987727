package testutils

import (
	"context"
	"sync"

	"github.com/namihq/knowledgebase/pkg/vector"
)

// MockVectorDriver is a recording vector driver for tests. Stored
// documents and canned search results are inspectable; failures can be
// injected per operation.
type MockVectorDriver struct {
	mu        sync.Mutex
	Documents []vector.Document
	Results   []vector.QueryResult

	// AddCalls counts Add invocations, one per batch.
	AddCalls int

	// FailAdd and FailSearch inject errors into the matching operation.
	FailAdd    error
	FailSearch error
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{}
}

func (m *MockVectorDriver) Add(_ context.Context, docs []vector.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAdd != nil {
		return m.FailAdd
	}
	m.AddCalls++
	m.Documents = append(m.Documents, docs...)
	return nil
}

func (m *MockVectorDriver) Search(_ context.Context, _ []float32, topK int) ([]vector.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSearch != nil {
		return nil, m.FailSearch
	}
	if len(m.Results) < topK {
		return m.Results, nil
	}
	return m.Results[:topK], nil
}

func (m *MockVectorDriver) MMRSearch(ctx context.Context, embedding []float32, topK, fetchK int, lambda float32) ([]vector.QueryResult, error) {
	if fetchK < topK {
		fetchK = topK
	}
	candidates, err := m.Search(ctx, embedding, fetchK)
	if err != nil {
		return nil, err
	}
	return vector.SelectMMR(embedding, candidates, topK, lambda), nil
}

func (m *MockVectorDriver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var docs []vector.Document
	for _, id := range ids {
		for _, doc := range m.Documents {
			if doc.ID == id {
				docs = append(docs, doc)
				break
			}
		}
	}
	return docs, nil
}

func (m *MockVectorDriver) Delete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.Documents[:0]
	for _, doc := range m.Documents {
		remove := false
		for _, id := range ids {
			if doc.ID == id {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, doc)
		}
	}
	m.Documents = kept
	return nil
}

func (m *MockVectorDriver) Close() error {
	return nil
}

// StoredTexts returns the text of every stored document in insertion order.
func (m *MockVectorDriver) StoredTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	texts := make([]string, len(m.Documents))
	for i, doc := range m.Documents {
		texts[i] = doc.Text
	}
	return texts
}

// ResultsFromDocuments turns stored documents into canned search results
// with descending scores, convenient for retrieval tests.
func (m *MockVectorDriver) ResultsFromDocuments() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Results = make([]vector.QueryResult, len(m.Documents))
	for i, doc := range m.Documents {
		m.Results[i] = vector.QueryResult{
			Document: doc,
			Score:    1.0 - float32(i)*0.01,
		}
	}
}

// Ensure MockVectorDriver implements vector.Driver
var _ vector.Driver = (*MockVectorDriver)(nil)
