package config

const (
	defaultCollection = "research_reports"

	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
	defaultMinContent   = 100

	defaultIngestWorkers = 4

	// defaultReportTimeout is the per-report ingestion deadline in seconds.
	defaultReportTimeout = 120

	defaultRetrievalK      = 5
	defaultRetrievalFetchK = 20
	defaultRetrievalLambda = 0.7

	defaultVectorProvider = "chromem"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Collection: defaultCollection,
		},
		Chunking: ChunkingConfig{
			Size:       defaultChunkSize,
			Overlap:    defaultChunkOverlap,
			MinContent: defaultMinContent,
		},
		Ingest: IngestConfig{
			Workers:       defaultIngestWorkers,
			ReportTimeout: defaultReportTimeout,
		},
		Retrieval: RetrievalConfig{
			K:      defaultRetrievalK,
			FetchK: defaultRetrievalFetchK,
			Lambda: defaultRetrievalLambda,
			UseMMR: true,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
	}
}
