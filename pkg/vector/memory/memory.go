// Package memory provides an in-memory vector driver using brute-force
// cosine similarity. It backs tests and ephemeral deployments where no
// persistence is wanted.
package memory

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/namihq/knowledgebase/pkg/vector"
)

// Driver implements vector.Driver with an in-process index.
type Driver struct {
	mu     sync.RWMutex
	docs   map[string]vector.Document
	order  []string
	logger *zap.Logger
}

// NewDriver creates a new in-memory vector driver.
func NewDriver(logger *zap.Logger) *Driver {
	return &Driver{
		docs:   make(map[string]vector.Document),
		logger: logger,
	}
}

// Add stores documents with their embeddings.
// If a document with the same ID already exists, it is updated.
func (d *Driver) Add(_ context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		if _, exists := d.docs[doc.ID]; !exists {
			d.order = append(d.order, doc.ID)
		}
		d.docs[doc.ID] = doc
	}

	d.logger.Debug("added documents to memory store",
		zap.Int("count", len(docs)),
		zap.Int("total", len(d.docs)),
	)

	return nil
}

// Search finds the topK most similar documents to the given embedding.
func (d *Driver) Search(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	results := make([]vector.QueryResult, 0, len(d.docs))
	for _, id := range d.order {
		doc := d.docs[id]
		results = append(results, vector.QueryResult{
			Document: doc,
			Score:    vector.CosineSimilarity(embedding, doc.Embedding),
		})
	}

	// Stable sort keeps insertion order among equal scores so results
	// stay deterministic.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK < len(results) {
		results = results[:topK]
	}

	return results, nil
}

// MMRSearch retrieves fetchK nearest candidates and re-ranks them with
// Maximal Marginal Relevance.
func (d *Driver) MMRSearch(ctx context.Context, embedding []float32, topK, fetchK int, lambda float32) ([]vector.QueryResult, error) {
	if fetchK < topK {
		fetchK = topK
	}

	candidates, err := d.Search(ctx, embedding, fetchK)
	if err != nil {
		return nil, err
	}

	return vector.SelectMMR(embedding, candidates, topK, lambda), nil
}

// Get retrieves documents by their IDs. IDs with no stored document are
// skipped.
func (d *Driver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	docs := make([]vector.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := d.docs[id]; ok {
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(_ context.Context, ids []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := d.docs[id]; ok {
			delete(d.docs, id)
			removed[id] = true
		}
	}

	if len(removed) > 0 {
		kept := d.order[:0]
		for _, id := range d.order {
			if !removed[id] {
				kept = append(kept, id)
			}
		}
		d.order = kept
	}

	return nil
}

// Count returns the number of stored documents.
func (d *Driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs)
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs = make(map[string]vector.Document)
	d.order = nil
	return nil
}

// Ensure Driver implements vector.Driver
var _ vector.Driver = (*Driver)(nil)
