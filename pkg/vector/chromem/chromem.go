// Package chromem provides an embedded, file-persisted vector driver backed
// by chromem-go. It is the default store: the collection lives under a local
// directory and needs no external server.
package chromem

import (
	"context"
	"fmt"

	chromemgo "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/namihq/knowledgebase/pkg/vector"
)

// Driver implements vector.Driver using a chromem-go collection.
type Driver struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection
	dimensions uint
	logger     *zap.Logger
}

// Config holds configuration for the chromem driver.
type Config struct {
	// Path is the persistence directory. Empty runs fully in-memory.
	Path string

	// Collection is the collection name. Required.
	Collection string

	// Create makes a missing collection instead of failing with
	// vector.ErrCollectionNotFound.
	Create bool

	// Dimensions, when non-zero, is enforced on every added embedding.
	Dimensions uint
}

// NewDriver opens (or creates) a chromem collection.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.Collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	var db *chromemgo.DB
	var err error
	if c.Path == "" {
		db = chromemgo.NewDB()
	} else {
		db, err = chromemgo.NewPersistentDB(c.Path, false)
		if err != nil {
			return nil, fmt.Errorf("%w: opening chromem db at %s: %v", vector.ErrConnection, c.Path, err)
		}
	}

	// Cosine is chromem's similarity space; the metadata entry mirrors
	// Chroma server conventions.
	meta := map[string]string{"hnsw:space": "cosine"}

	var collection *chromemgo.Collection
	if c.Create {
		collection, err = db.GetOrCreateCollection(c.Collection, meta, nil)
		if err != nil {
			return nil, fmt.Errorf("creating collection %q: %w", c.Collection, err)
		}
	} else {
		collection = db.GetCollection(c.Collection, nil)
		if collection == nil {
			return nil, fmt.Errorf("%w: %q", vector.ErrCollectionNotFound, c.Collection)
		}
	}

	logger.Info("chromem vector driver initialized",
		zap.String("path", c.Path),
		zap.String("collection", c.Collection),
		zap.Int("documents", collection.Count()),
	)

	return &Driver{
		db:         db,
		collection: collection,
		dimensions: c.Dimensions,
		logger:     logger,
	}, nil
}

// Add stores documents with their embeddings in one batched call.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	embeddings := make([][]float32, len(docs))
	metadatas := make([]map[string]string, len(docs))
	contents := make([]string, len(docs))

	for i, doc := range docs {
		if len(doc.Embedding) == 0 {
			return fmt.Errorf("%w: document %s has no embedding", vector.ErrEmbedding, doc.ID)
		}
		if d.dimensions != 0 && uint(len(doc.Embedding)) != d.dimensions {
			return fmt.Errorf("%w: document %s has %d dimensions, want %d",
				vector.ErrDimensionMismatch, doc.ID, len(doc.Embedding), d.dimensions)
		}

		ids[i] = doc.ID
		embeddings[i] = doc.Embedding
		metadatas[i] = doc.Metadata
		contents[i] = doc.Text
	}

	if err := d.collection.Add(ctx, ids, embeddings, metadatas, contents); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}

	d.logger.Debug("added documents to chromem",
		zap.Int("count", len(docs)),
	)

	return nil
}

// Search finds the topK most similar documents to the given embedding.
func (d *Driver) Search(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	// chromem rejects nResults beyond the stored document count.
	if count := d.collection.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := d.collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying chromem: %w", err)
	}

	out := make([]vector.QueryResult, 0, len(results))
	for _, r := range results {
		out = append(out, vector.QueryResult{
			Document: vector.Document{
				ID:        r.ID,
				Text:      r.Content,
				Embedding: r.Embedding,
				Metadata:  r.Metadata,
			},
			Score: r.Similarity,
		})
	}

	d.logger.Debug("queried chromem",
		zap.Int("results", len(out)),
	)

	return out, nil
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
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	docs := make([]vector.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := d.collection.GetByID(ctx, id)
		if err != nil {
			continue
		}
		docs = append(docs, vector.Document{
			ID:        doc.ID,
			Text:      doc.Content,
			Embedding: doc.Embedding,
			Metadata:  doc.Metadata,
		})
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := d.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}

	d.logger.Debug("deleted documents from chromem",
		zap.Int("count", len(ids)),
	)

	return nil
}

// Count returns the number of stored documents.
func (d *Driver) Count() int {
	return d.collection.Count()
}

// Close releases resources held by the driver.
func (d *Driver) Close() error {
	// chromem persists on write; nothing to flush.
	return nil
}

// Ensure Driver implements vector.Driver
var _ vector.Driver = (*Driver)(nil)
