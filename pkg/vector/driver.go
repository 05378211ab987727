// Package vector provides interfaces and implementations for vector storage
// of report chunks.
package vector

import "context"

// Document represents a stored chunk with its embedding and metadata.
type Document struct {
	// ID is a unique identifier for the document.
	ID string

	// Text is the chunk text this document carries.
	Text string

	// Embedding is the vector representation of the chunk text.
	Embedding []float32

	// Metadata holds the flattened chunk metadata (topic, source,
	// created_at, chunk_id, total_chunks plus caller-supplied fields).
	Metadata map[string]string
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of chunk embeddings.
type Driver interface {
	// Add stores documents with their embeddings in one batch. A reader
	// never observes a subset of the batch. If a document with the same
	// ID already exists, implementers should update the document.
	Add(ctx context.Context, docs []Document) error

	// Search finds the topK most similar documents to the given embedding,
	// ordered by descending score.
	Search(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// MMRSearch retrieves the fetchK nearest candidates and re-ranks them
	// with Maximal Marginal Relevance, returning up to topK results.
	// lambda close to 1 favors relevance, lower values favor diversity;
	// lambda=1 matches Search ordering.
	MMRSearch(ctx context.Context, embedding []float32, topK, fetchK int, lambda float32) ([]QueryResult, error)

	// Get retrieves documents by their IDs.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
