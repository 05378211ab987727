// Package knowledgeutils wires a full ingestion/retrieval stack from
// configuration.
package knowledgeutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/namihq/knowledgebase/pkg/config"
	"github.com/namihq/knowledgebase/pkg/embeddings"
	embeddingutils "github.com/namihq/knowledgebase/pkg/embeddings/utils"
	"github.com/namihq/knowledgebase/pkg/knowledge"
	"github.com/namihq/knowledgebase/pkg/vector"
	vectorutils "github.com/namihq/knowledgebase/pkg/vector/utils"
)

// Services bundles the knowledge services with the infrastructure they
// own. Close releases the driver and embedder.
type Services struct {
	Ingestor  *knowledge.Ingestor
	Retriever *knowledge.Retriever

	driver   vector.Driver
	embedder embeddings.Embedder
}

// NewServices builds the embedder, vector driver, ingestor, and retriever
// from the given configuration.
func NewServices(cfg *config.Config, logger *zap.Logger) (*Services, error) {
	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("building embedder: %w", err)
	}

	// The store target defaults to the persistence directory.
	target := cfg.VectorStore.Target
	if target == "" {
		target = cfg.Storage.Dir
	}

	driver, err := vectorutils.NewVectorDriver(&vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		Target:       target,
		Collection:   cfg.Storage.Collection,
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       logger,
	})
	if err != nil {
		embedder.Close()
		return nil, fmt.Errorf("building vector driver: %w", err)
	}

	ingestor, err := knowledge.NewIngestor(driver, embedder, cfg, logger)
	if err != nil {
		driver.Close()
		embedder.Close()
		return nil, err
	}

	return &Services{
		Ingestor:  ingestor,
		Retriever: knowledge.NewRetriever(driver, embedder, cfg, logger),
		driver:    driver,
		embedder:  embedder,
	}, nil
}

// Close releases the underlying driver and embedder.
func (s *Services) Close() error {
	derr := s.driver.Close()
	eerr := s.embedder.Close()
	if derr != nil {
		return derr
	}
	return eerr
}
