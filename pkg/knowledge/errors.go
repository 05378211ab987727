package knowledge

import "errors"

// Validation errors. The input was unacceptable and nothing was persisted.
var (
	// ErrContentTooShort is returned when a report's trimmed content is
	// shorter than the configured minimum.
	ErrContentTooShort = errors.New("content too short")

	// ErrEmptyInput is returned for an empty topic, query, or report body.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidSplitConfig is returned when the chunking configuration
	// cannot produce a valid splitter.
	ErrInvalidSplitConfig = errors.New("invalid split configuration")

	// ErrNoValidChunks is returned when splitting produced no usable chunks.
	ErrNoValidChunks = errors.New("no valid chunks produced")
)

// Infrastructure errors. The operation may succeed on retry.
var (
	// ErrEmbeddingUnavailable is returned when the embedding provider
	// could not be reached or rejected the request.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrStore is returned when the vector store rejected an operation.
	ErrStore = errors.New("vector store failure")

	// ErrCollectionNotFound is returned when the target collection does
	// not exist.
	ErrCollectionNotFound = errors.New("collection not found")
)
