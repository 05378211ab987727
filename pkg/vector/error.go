package vector

import "errors"

var (
	// ErrNotFound is returned when a document is not found in the vector store.
	ErrNotFound = errors.New("document not found")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")

	// ErrCollectionNotFound is returned when the named collection does not
	// exist and creation was not requested.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDimensionMismatch is returned when an embedding does not match the
	// collection's configured dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
