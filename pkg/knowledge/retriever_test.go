package knowledge_test

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/namihq/knowledgebase/pkg/config"
	"github.com/namihq/knowledgebase/pkg/knowledge"
	testutils "github.com/namihq/knowledgebase/pkg/utils/test"
	"github.com/namihq/knowledgebase/pkg/vector"
	"github.com/namihq/knowledgebase/pkg/vector/memory"
)

// seed stores chunks for a topic directly in the driver with the given
// base embedding, nudged slightly per chunk.
func seed(driver vector.Driver, topic string, base []float32, chunks int) {
	docs := make([]vector.Document, chunks)
	for i := range chunks {
		emb := make([]float32, len(base))
		copy(emb, base)
		emb[0] += float32(i) * 0.01

		meta := knowledge.ChunkMeta{
			Topic:       topic,
			Source:      knowledge.DefaultSource,
			Collection:  "research_reports",
			ChunkID:     i,
			TotalChunks: chunks,
		}
		docs[i] = vector.Document{
			ID:        fmt.Sprintf("%s-%d", topic, i),
			Text:      fmt.Sprintf("%s chunk %d: %s", topic, i, strings.Repeat("content ", 40)),
			Embedding: emb,
			Metadata:  meta.Flatten(),
		}
	}
	Expect(driver.Add(context.Background(), docs)).To(Succeed())
}

var _ = Describe("Retriever", func() {
	var (
		driver    *memory.Driver
		embedder  *testutils.MockEmbedder
		retriever *knowledge.Retriever
		ctx       context.Context
	)

	BeforeEach(func() {
		driver = memory.NewDriver(zap.NewNop())
		embedder = testutils.NewMockEmbedder()
		embedder.Dimensions = 3
		retriever = knowledge.NewRetriever(driver, embedder, config.NewDefaultConfig(), zap.NewNop())
		ctx = context.Background()

		// Two well-separated topics.
		seed(driver, "golang", []float32{1, 0, 0}, 3)
		seed(driver, "baking", []float32{0, 1, 0}, 2)

		embedder.Embeddings["how do goroutines work"] = []float32{1, 0.05, 0}
		embedder.Embeddings["sourdough starter"] = []float32{0.05, 1, 0}
	})

	Describe("Query", func() {
		It("returns chunks from the semantically closest topic", func() {
			results, err := retriever.Query(ctx, "how do goroutines work", knowledge.QueryOptions{K: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).NotTo(BeEmpty())

			meta := knowledge.ParseChunkMeta(results[0].Metadata)
			Expect(meta.Topic).To(Equal("golang"))

			golang := 0
			for _, res := range results {
				if knowledge.ParseChunkMeta(res.Metadata).Topic == "golang" {
					golang++
				}
			}
			Expect(golang).To(BeNumerically(">", len(results)/2))
		})

		It("honors the NoMMR option", func() {
			results, err := retriever.Query(ctx, "sourdough starter", knowledge.QueryOptions{K: 2, NoMMR: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			for _, res := range results {
				Expect(knowledge.ParseChunkMeta(res.Metadata).Topic).To(Equal("baking"))
			}
		})

		It("honors an explicit zero lambda as maximum diversity", func() {
			// With the default lambda both picks stay on the closest topic;
			// lambda 0 ignores relevance after the first pick.
			results, err := retriever.Query(ctx, "how do goroutines work", knowledge.QueryOptions{K: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(knowledge.ParseChunkMeta(results[1].Metadata).Topic).To(Equal("golang"))

			results, err = retriever.Query(ctx, "how do goroutines work", knowledge.QueryOptions{
				K:         2,
				Lambda:    0,
				LambdaSet: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(knowledge.ParseChunkMeta(results[0].Metadata).Topic).To(Equal("golang"))
			Expect(knowledge.ParseChunkMeta(results[1].Metadata).Topic).To(Equal("baking"))
		})

		It("rejects an empty question", func() {
			_, err := retriever.Query(ctx, "  ", knowledge.QueryOptions{})
			Expect(err).To(MatchError(knowledge.ErrEmptyInput))
		})

		It("treats an empty result set as success", func() {
			empty := memory.NewDriver(zap.NewNop())
			r := knowledge.NewRetriever(empty, embedder, config.NewDefaultConfig(), zap.NewNop())

			results, err := r.Query(ctx, "anything", knowledge.QueryOptions{})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("wraps store failures", func() {
			mock := testutils.NewMockVectorDriver()
			mock.FailSearch = fmt.Errorf("connection refused")
			r := knowledge.NewRetriever(mock, embedder, config.NewDefaultConfig(), zap.NewNop())

			_, err := r.Query(ctx, "anything", knowledge.QueryOptions{})
			Expect(err).To(MatchError(knowledge.ErrStore))
		})

		It("wraps embedder failures", func() {
			embedder.FailOn = "broken question"
			_, err := retriever.Query(ctx, "broken question", knowledge.QueryOptions{})
			Expect(err).To(MatchError(knowledge.ErrEmbeddingUnavailable))
		})
	})

	Describe("VerifyIngestion", func() {
		It("finds chunks for an ingested topic and returns a bounded sample", func() {
			embedder.Embeddings["golang"] = []float32{1, 0, 0}

			verify, err := retriever.VerifyIngestion(ctx, "golang", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(verify.Found).To(BeTrue())
			Expect(verify.ChunksFound).To(BeNumerically(">", 0))
			Expect(verify.TotalResults).To(BeNumerically("<=", 3))
			Expect(verify.SampleContent).NotTo(BeEmpty())
			Expect(len(verify.SampleContent)).To(BeNumerically("<=", 200))
		})

		It("reports not found without error for an absent topic", func() {
			embedder.Embeddings["quantum farming"] = []float32{0, 0, 1}

			verify, err := retriever.VerifyIngestion(ctx, "quantum farming", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(verify.Found).To(BeFalse())
			Expect(verify.ChunksFound).To(BeZero())
		})

		It("cuts the content sample at a rune boundary", func() {
			// 100 three-byte runes; a naive cut at byte 200 would land
			// mid-rune.
			meta := knowledge.ChunkMeta{
				Topic:       "multibyte",
				Source:      knowledge.DefaultSource,
				TotalChunks: 1,
			}
			Expect(driver.Add(ctx, []vector.Document{{
				ID:        "multibyte-0",
				Text:      strings.Repeat("界", 100),
				Embedding: []float32{0, 0, 1},
				Metadata:  meta.Flatten(),
			}})).To(Succeed())
			embedder.Embeddings["multibyte"] = []float32{0, 0, 1}

			verify, err := retriever.VerifyIngestion(ctx, "multibyte", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(verify.Found).To(BeTrue())
			Expect(len(verify.SampleContent)).To(BeNumerically("<=", 200))
			Expect(utf8.ValidString(verify.SampleContent)).To(BeTrue())
			Expect(strings.HasSuffix(verify.SampleContent, "界")).To(BeTrue())
		})

		It("uses the explicit probe query when given", func() {
			embedder.Embeddings["concurrency primitives"] = []float32{1, 0.01, 0}

			verify, err := retriever.VerifyIngestion(ctx, "golang", "concurrency primitives")
			Expect(err).NotTo(HaveOccurred())
			Expect(verify.Found).To(BeTrue())
		})

		It("rejects an empty topic", func() {
			_, err := retriever.VerifyIngestion(ctx, "", "probe")
			Expect(err).To(MatchError(knowledge.ErrEmptyInput))
		})
	})

	Describe("ListIngestedReports", func() {
		It("deduplicates topics in first-seen order with chunk counts", func() {
			embedder.Embeddings["research"] = []float32{0.7, 0.7, 0}

			summaries, err := retriever.ListIngestedReports(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(HaveLen(2))

			byTopic := map[string]knowledge.ReportSummary{}
			for _, s := range summaries {
				byTopic[s.Topic] = s
			}
			Expect(byTopic["golang"].Chunks).To(Equal(3))
			Expect(byTopic["baking"].Chunks).To(Equal(2))
		})

		It("returns an empty list for an empty store", func() {
			empty := memory.NewDriver(zap.NewNop())
			r := knowledge.NewRetriever(empty, embedder, config.NewDefaultConfig(), zap.NewNop())

			summaries, err := r.ListIngestedReports(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summaries).To(BeEmpty())
		})
	})
})
