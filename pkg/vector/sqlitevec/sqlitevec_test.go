package sqlitevec_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/namihq/knowledgebase/pkg/vector"
	"github.com/namihq/knowledgebase/pkg/vector/sqlitevec"
)

func TestSQLiteVec(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQLiteVec Driver Suite")
}

var _ = Describe("SQLiteVecDriver", func() {
	var logger *zap.Logger

	BeforeEach(func() {
		logger = zap.NewNop()
	})

	Describe("NewSQLiteVecDriver", func() {
		It("should return an error when DBPath is empty", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{DBPath: ""}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database path is required"))
		})

		It("should create a driver with an in-memory database", func() {
			driver, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).NotTo(BeNil())
			Expect(driver.Close()).To(Succeed())
		})

		It("should error when dimension not specified", func() {
			_, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath: ":memory:",
			}, logger)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Interface compliance", func() {
		It("should implement vector.Driver interface", func() {
			var _ vector.Driver = (*sqlitevec.SQLiteVecDriver)(nil)
		})
	})

	Describe("Add", func() {
		var driver *sqlitevec.SQLiteVecDriver

		BeforeEach(func() {
			var err error
			driver, err = sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should do nothing when given empty docs", func() {
			err := driver.Add(context.Background(), []vector.Document{})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should add a single document", func() {
			docs := []vector.Document{
				{
					ID:        "chunk-1",
					Text:      "the first chunk",
					Embedding: []float32{0.1, 0.2, 0.3, 0.4},
					Metadata:  map[string]string{"topic": "testing"},
				},
			}

			err := driver.Add(context.Background(), docs)
			Expect(err).NotTo(HaveOccurred())

			// Verify it was stored
			retrieved, err := driver.Get(context.Background(), []string{"chunk-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved).To(HaveLen(1))
			Expect(retrieved[0].ID).To(Equal("chunk-1"))
			Expect(retrieved[0].Text).To(Equal("the first chunk"))
			Expect(retrieved[0].Metadata).To(HaveKeyWithValue("topic", "testing"))
		})

		It("should add multiple documents", func() {
			docs := []vector.Document{
				{ID: "chunk-1", Text: "one", Embedding: []float32{0.1, 0.1, 0.1, 0.1}},
				{ID: "chunk-2", Text: "two", Embedding: []float32{0.2, 0.2, 0.2, 0.2}},
				{ID: "chunk-3", Text: "three", Embedding: []float32{0.3, 0.3, 0.3, 0.3}},
			}

			err := driver.Add(context.Background(), docs)
			Expect(err).NotTo(HaveOccurred())

			retrieved, err := driver.Get(context.Background(), []string{"chunk-1", "chunk-2", "chunk-3"})
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved).To(HaveLen(3))
		})

		It("should update an existing document", func() {
			docs := []vector.Document{
				{ID: "chunk-1", Text: "original", Embedding: []float32{0.1, 0.1, 0.1, 0.1}},
			}
			err := driver.Add(context.Background(), docs)
			Expect(err).NotTo(HaveOccurred())

			// Update with new text and embedding
			updatedDocs := []vector.Document{
				{ID: "chunk-1", Text: "updated", Embedding: []float32{0.9, 0.9, 0.9, 0.9}},
			}
			err = driver.Add(context.Background(), updatedDocs)
			Expect(err).NotTo(HaveOccurred())

			retrieved, err := driver.Get(context.Background(), []string{"chunk-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieved).To(HaveLen(1))
			Expect(retrieved[0].Text).To(Equal("updated"))
		})

		It("should reject documents without embeddings", func() {
			err := driver.Add(context.Background(), []vector.Document{
				{ID: "chunk-1", Text: "no vector"},
			})
			Expect(err).To(MatchError(vector.ErrEmbedding))
		})
	})

	Describe("Search", func() {
		var driver *sqlitevec.SQLiteVecDriver

		BeforeEach(func() {
			var err error
			driver, err = sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())

			// Insert test data
			docs := []vector.Document{
				{ID: "chunk-1", Text: "one", Embedding: []float32{0.1, 0.1, 0.1, 0.1}},
				{ID: "chunk-2", Text: "two", Embedding: []float32{0.2, 0.2, 0.2, 0.2}},
				{ID: "chunk-3", Text: "three", Embedding: []float32{0.3, 0.3, 0.3, 0.3}},
				{ID: "chunk-4", Text: "four", Embedding: []float32{0.4, 0.4, 0.4, 0.4}},
				{ID: "chunk-5", Text: "five", Embedding: []float32{0.5, 0.5, 0.5, 0.5}},
			}
			err = driver.Add(context.Background(), docs)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should return the closest documents", func() {
			queryVec := []float32{0.3, 0.3, 0.3, 0.3}
			results, err := driver.Search(context.Background(), queryVec, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))

			// The closest document to [0.3, 0.3, 0.3, 0.3] should be chunk-3
			Expect(results[0].ID).To(Equal("chunk-3"))
			Expect(results[0].Text).To(Equal("three"))
		})

		It("should respect topK limit", func() {
			queryVec := []float32{0.3, 0.3, 0.3, 0.3}
			results, err := driver.Search(context.Background(), queryVec, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
		})

		It("should default topK to 10 when zero or negative", func() {
			queryVec := []float32{0.3, 0.3, 0.3, 0.3}
			results, err := driver.Search(context.Background(), queryVec, 0)
			Expect(err).NotTo(HaveOccurred())
			// We only have 5 documents, so we should get 5 back
			Expect(results).To(HaveLen(5))
		})

		It("should return similarity scores in descending order", func() {
			queryVec := []float32{0.3, 0.3, 0.3, 0.3}
			results, err := driver.Search(context.Background(), queryVec, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(5))

			// Scores should be in descending order (closest first = highest score)
			for i := 1; i < len(results); i++ {
				Expect(results[i-1].Score).To(BeNumerically(">=", results[i].Score))
			}
		})

		It("should return stored embeddings with results", func() {
			queryVec := []float32{0.3, 0.3, 0.3, 0.3}
			results, err := driver.Search(context.Background(), queryVec, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Embedding).To(HaveLen(4))
			Expect(results[0].Embedding[0]).To(BeNumerically("~", 0.3, 0.001))
		})
	})

	Describe("MMRSearch", func() {
		var driver *sqlitevec.SQLiteVecDriver

		BeforeEach(func() {
			var err error
			driver, err = sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 3,
			}, logger)
			Expect(err).NotTo(HaveOccurred())

			docs := []vector.Document{
				{ID: "a", Text: "alpha", Embedding: []float32{1, 0, 0}},
				{ID: "b", Text: "beta", Embedding: []float32{0.9, 0.1, 0}},
				{ID: "c", Text: "gamma", Embedding: []float32{0, 0, 1}},
			}
			Expect(driver.Add(context.Background(), docs)).To(Succeed())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should match plain search order when lambda is 1", func() {
			results, err := driver.MMRSearch(context.Background(), []float32{1, 0, 0}, 2, 3, 1.0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("a"))
			Expect(results[1].ID).To(Equal("b"))
		})

		It("should diversify away from near-duplicates at low lambda", func() {
			results, err := driver.MMRSearch(context.Background(), []float32{1, 0.05, 0.05}, 2, 3, 0.3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("a"))
			Expect(results[1].ID).To(Equal("c"))
		})

		It("should raise fetchK to at least topK", func() {
			results, err := driver.MMRSearch(context.Background(), []float32{1, 0, 0}, 3, 1, 1.0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
		})
	})

	Describe("Get", func() {
		var driver *sqlitevec.SQLiteVecDriver

		BeforeEach(func() {
			var err error
			driver, err = sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())

			docs := []vector.Document{
				{ID: "chunk-1", Text: "one", Embedding: []float32{0.1, 0.2, 0.3, 0.4}},
				{ID: "chunk-2", Text: "two", Embedding: []float32{0.5, 0.6, 0.7, 0.8}},
			}
			err = driver.Add(context.Background(), docs)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should return nil for empty IDs", func() {
			docs, err := driver.Get(context.Background(), []string{})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeNil())
		})

		It("should retrieve documents by IDs", func() {
			docs, err := driver.Get(context.Background(), []string{"chunk-1", "chunk-2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(2))
		})

		It("should return embeddings with retrieved documents", func() {
			docs, err := driver.Get(context.Background(), []string{"chunk-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].Embedding).To(HaveLen(4))
			Expect(docs[0].Embedding[0]).To(BeNumerically("~", 0.1, 0.001))
			Expect(docs[0].Embedding[1]).To(BeNumerically("~", 0.2, 0.001))
			Expect(docs[0].Embedding[2]).To(BeNumerically("~", 0.3, 0.001))
			Expect(docs[0].Embedding[3]).To(BeNumerically("~", 0.4, 0.001))
		})

		It("should skip non-existent IDs", func() {
			docs, err := driver.Get(context.Background(), []string{"chunk-1", "nonexistent"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal("chunk-1"))
		})
	})

	Describe("Delete", func() {
		var driver *sqlitevec.SQLiteVecDriver

		BeforeEach(func() {
			var err error
			driver, err = sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())

			docs := []vector.Document{
				{ID: "chunk-1", Text: "one", Embedding: []float32{0.1, 0.1, 0.1, 0.1}},
				{ID: "chunk-2", Text: "two", Embedding: []float32{0.2, 0.2, 0.2, 0.2}},
				{ID: "chunk-3", Text: "three", Embedding: []float32{0.3, 0.3, 0.3, 0.3}},
			}
			err = driver.Add(context.Background(), docs)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		It("should do nothing when given empty IDs", func() {
			err := driver.Delete(context.Background(), []string{})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should delete a single document", func() {
			err := driver.Delete(context.Background(), []string{"chunk-1"})
			Expect(err).NotTo(HaveOccurred())

			docs, err := driver.Get(context.Background(), []string{"chunk-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeEmpty())

			// Other documents should still exist
			docs, err = driver.Get(context.Background(), []string{"chunk-2", "chunk-3"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(2))
		})

		It("should delete multiple documents", func() {
			err := driver.Delete(context.Background(), []string{"chunk-1", "chunk-2"})
			Expect(err).NotTo(HaveOccurred())

			docs, err := driver.Get(context.Background(), []string{"chunk-1", "chunk-2", "chunk-3"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal("chunk-3"))
		})

		It("should not error when deleting non-existent IDs", func() {
			err := driver.Delete(context.Background(), []string{"nonexistent"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should remove documents from search results after deletion", func() {
			err := driver.Delete(context.Background(), []string{"chunk-3"})
			Expect(err).NotTo(HaveOccurred())

			queryVec := []float32{0.3, 0.3, 0.3, 0.3}
			results, err := driver.Search(context.Background(), queryVec, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))

			for _, result := range results {
				Expect(result.ID).NotTo(Equal("chunk-3"))
			}
		})
	})

	Describe("Close", func() {
		It("should close the database connection", func() {
			driver, err := sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
				DBPath:     ":memory:",
				Dimensions: 4,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver.Close()).To(Succeed())
		})
	})
})
