package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/namihq/knowledgebase/pkg/config"
	"github.com/namihq/knowledgebase/pkg/embeddings"
	"github.com/namihq/knowledgebase/pkg/splitter"
	"github.com/namihq/knowledgebase/pkg/vector"
)

// Ingestor chunks, embeds, and persists reports.
type Ingestor struct {
	driver        vector.Driver
	embedder      embeddings.Embedder
	split         *splitter.Recursive
	collection    string
	minContent    int
	workers       int
	reportTimeout time.Duration
	logger        *zap.Logger
}

// NewIngestor builds an ingestor from explicit dependencies.
func NewIngestor(driver vector.Driver, embedder embeddings.Embedder, cfg *config.Config, logger *zap.Logger) (*Ingestor, error) {
	split, err := splitter.NewRecursive(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("%w: size %d, overlap %d", ErrInvalidSplitConfig, cfg.Chunking.Size, cfg.Chunking.Overlap)
	}

	workers := cfg.Ingest.Workers
	if workers <= 0 {
		workers = 4
	}

	reportTimeout := time.Duration(cfg.Ingest.ReportTimeout) * time.Second
	if reportTimeout <= 0 {
		reportTimeout = 2 * time.Minute
	}

	return &Ingestor{
		driver:        driver,
		embedder:      embedder,
		split:         split,
		collection:    cfg.Storage.Collection,
		minContent:    cfg.Chunking.MinContent,
		workers:       workers,
		reportTimeout: reportTimeout,
		logger:        logger,
	}, nil
}

func failure(topic string, err error, msg string) IngestResult {
	return IngestResult{
		Topic:   topic,
		Message: msg,
		Err:     err,
	}
}

// AddReport validates, chunks, embeds, and stores a single report.
// Either every chunk is persisted or none is.
func (in *Ingestor) AddReport(ctx context.Context, report Report) IngestResult {
	topic := strings.TrimSpace(report.Topic)
	if topic == "" {
		return failure(topic, ErrEmptyInput, "report topic is empty")
	}

	content := strings.TrimSpace(report.Content)
	if n := utf8.RuneCountInString(content); n < in.minContent {
		return failure(topic,
			fmt.Errorf("%w: %d chars, minimum %d", ErrContentTooShort, n, in.minContent),
			fmt.Sprintf("content too short (%d chars, minimum %d)", n, in.minContent),
		)
	}

	chunks, err := in.split.Split(content)
	if err != nil {
		if errors.Is(err, splitter.ErrEmptyInput) {
			return failure(topic, ErrEmptyInput, "report content is empty")
		}
		return failure(topic, fmt.Errorf("splitting report: %w", err), "splitting report failed")
	}
	if len(chunks) == 0 {
		return failure(topic, ErrNoValidChunks, "splitting produced no usable chunks")
	}

	// Chunk IDs and document IDs are fixed in chunk order before any
	// embedding work is dispatched, so concurrency cannot reorder them.
	now := time.Now()
	docs := make([]vector.Document, len(chunks))
	for i, chunk := range chunks {
		meta := ChunkMeta{
			Topic:       topic,
			Source:      DefaultSource,
			Collection:  in.collection,
			CreatedAt:   now,
			ChunkID:     i,
			TotalChunks: len(chunks),
			Extra:       report.Metadata,
		}
		docs[i] = vector.Document{
			ID:       uuid.NewString(),
			Text:     chunk,
			Metadata: meta.Flatten(),
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)
	for i := range docs {
		g.Go(func() error {
			emb, err := in.embedder.Embed(gctx, docs[i].Text)
			if err != nil {
				return err
			}
			docs[i].Embedding = emb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return failure(topic,
			fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err),
			"embedding failed, nothing was stored",
		)
	}

	if err := in.driver.Add(ctx, docs); err != nil {
		if errors.Is(err, vector.ErrCollectionNotFound) {
			return failure(topic, fmt.Errorf("%w: %v", ErrCollectionNotFound, err), "collection not found")
		}
		return failure(topic,
			fmt.Errorf("%w: %v", ErrStore, err),
			"storing chunks failed, nothing was stored",
		)
	}

	in.logger.Info("ingested report",
		zap.String("topic", topic),
		zap.Int("chunks", len(chunks)),
	)

	return IngestResult{
		Success:     true,
		Topic:       topic,
		ChunksAdded: len(chunks),
		Message:     fmt.Sprintf("added %d chunks for %q", len(chunks), topic),
	}
}

// AddReports ingests reports one by one. A failed report never stops the
// batch; its result is recorded and the loop continues. Each report runs
// under its own deadline, so a stalled report cannot hold up the rest.
func (in *Ingestor) AddReports(ctx context.Context, reports []Report) BatchResult {
	var batch BatchResult
	batch.Details = make([]IngestResult, 0, len(reports))

	for _, report := range reports {
		rctx, cancel := context.WithTimeout(ctx, in.reportTimeout)
		result := in.AddReport(rctx, report)
		cancel()
		if result.Success {
			batch.Successful++
		} else {
			batch.Failed++
			in.logger.Warn("report ingestion failed",
				zap.String("topic", report.Topic),
				zap.Error(result.Err),
			)
		}
		batch.Details = append(batch.Details, result)
	}

	return batch
}
