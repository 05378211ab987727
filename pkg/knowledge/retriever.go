package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/namihq/knowledgebase/pkg/config"
	"github.com/namihq/knowledgebase/pkg/embeddings"
	"github.com/namihq/knowledgebase/pkg/vector"
)

const (
	// verifyK is the number of neighbors sampled when verifying a topic.
	verifyK = 3

	// verifySampleLen bounds the content preview returned by verification.
	verifySampleLen = 200

	// listSampleK is the sample size used to enumerate ingested reports.
	listSampleK = 100

	// listProbe is the query used to draw the enumeration sample.
	listProbe = "research"
)

// Retriever answers questions against the ingested corpus.
type Retriever struct {
	driver   vector.Driver
	embedder embeddings.Embedder
	defaults config.RetrievalConfig
	logger   *zap.Logger
}

// NewRetriever builds a retriever from explicit dependencies.
func NewRetriever(driver vector.Driver, embedder embeddings.Embedder, cfg *config.Config, logger *zap.Logger) *Retriever {
	return &Retriever{
		driver:   driver,
		embedder: embedder,
		defaults: cfg.Retrieval,
		logger:   logger,
	}
}

func (r *Retriever) embed(ctx context.Context, text string) ([]float32, error) {
	emb, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	return emb, nil
}

func wrapStoreErr(err error) error {
	if errors.Is(err, vector.ErrCollectionNotFound) {
		return fmt.Errorf("%w: %v", ErrCollectionNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}

// Query embeds the question and returns the most relevant chunks. MMR
// re-ranking is on by default; opts override the configured defaults.
// An empty result set is not an error.
func (r *Retriever) Query(ctx context.Context, question string, opts QueryOptions) ([]vector.QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: query text", ErrEmptyInput)
	}

	k := opts.K
	if k <= 0 {
		k = r.defaults.K
	}
	fetchK := opts.FetchK
	if fetchK <= 0 {
		fetchK = r.defaults.FetchK
	}
	lambda := opts.Lambda
	if lambda < 0 || (lambda == 0 && !opts.LambdaSet) {
		lambda = r.defaults.Lambda
	}
	useMMR := r.defaults.UseMMR && !opts.NoMMR

	emb, err := r.embed(ctx, question)
	if err != nil {
		return nil, err
	}

	var results []vector.QueryResult
	if useMMR {
		results, err = r.driver.MMRSearch(ctx, emb, k, fetchK, lambda)
	} else {
		results, err = r.driver.Search(ctx, emb, k)
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	r.logger.Debug("query answered",
		zap.Int("results", len(results)),
		zap.Bool("mmr", useMMR),
	)

	return results, nil
}

// VerifyIngestion checks that chunks for a topic are actually retrievable.
// The probe query defaults to the topic itself. Finding nothing is a valid
// outcome, not an error.
func (r *Retriever) VerifyIngestion(ctx context.Context, topic, query string) (VerifyResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return VerifyResult{}, fmt.Errorf("%w: topic", ErrEmptyInput)
	}
	if strings.TrimSpace(query) == "" {
		query = topic
	}

	emb, err := r.embed(ctx, query)
	if err != nil {
		return VerifyResult{}, err
	}

	results, err := r.driver.Search(ctx, emb, verifyK)
	if err != nil {
		return VerifyResult{}, wrapStoreErr(err)
	}

	verify := VerifyResult{TotalResults: len(results)}
	for _, res := range results {
		meta := ParseChunkMeta(res.Metadata)
		if meta.Topic != topic {
			continue
		}
		verify.ChunksFound++
		if verify.SampleContent == "" {
			sample := res.Text
			if len(sample) > verifySampleLen {
				cut := verifySampleLen
				for cut > 0 && !utf8.RuneStart(sample[cut]) {
					cut--
				}
				sample = sample[:cut]
			}
			verify.SampleContent = sample
		}
	}
	verify.Found = verify.ChunksFound > 0

	return verify, nil
}

// ListIngestedReports enumerates distinct topics observed in a bounded
// sample of the store. The sample is drawn with a generic probe query, so
// very large corpora may under-report. Topics keep first-seen order.
func (r *Retriever) ListIngestedReports(ctx context.Context) ([]ReportSummary, error) {
	emb, err := r.embed(ctx, listProbe)
	if err != nil {
		return nil, err
	}

	results, err := r.driver.Search(ctx, emb, listSampleK)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	var summaries []ReportSummary
	index := make(map[string]int)
	for _, res := range results {
		meta := ParseChunkMeta(res.Metadata)
		if meta.Topic == "" {
			continue
		}
		if i, ok := index[meta.Topic]; ok {
			// TotalChunks already counts the whole report; only fall
			// back to tallying when the metadata lacks it.
			if summaries[i].Chunks < meta.TotalChunks {
				summaries[i].Chunks = meta.TotalChunks
			} else if meta.TotalChunks == 0 {
				summaries[i].Chunks++
			}
			continue
		}
		index[meta.Topic] = len(summaries)
		chunks := meta.TotalChunks
		if chunks == 0 {
			chunks = 1
		}
		summaries = append(summaries, ReportSummary{
			Topic:     meta.Topic,
			CreatedAt: meta.CreatedAt,
			Chunks:    chunks,
		})
	}

	return summaries, nil
}
