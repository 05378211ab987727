package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/namihq/knowledgebase/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the KB_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound by the command)
//  2. Environment variables (KB_STORAGE_DIR, KB_EMBEDDING_MODEL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
//
// storage.dir additionally honors the legacy RAG_DIR environment variable.
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: KB_STORAGE_COLLECTION, KB_CHUNKING_SIZE, etc.
	v.SetEnvPrefix("KB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// RAG_DIR predates the KB_ prefix and is still recognized for the
	// vector store persistence directory.
	_ = v.BindEnv("storage.dir", "KB_STORAGE_DIR", "RAG_DIR")

	// Default the store directory to the resolved .kb/ dir when nothing
	// else set it.
	if v.GetString("storage.dir") == "" && target != "" {
		v.SetDefault("storage.dir", target)
	}

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.collection", d.Storage.Collection)

	// Chunking
	v.SetDefault("chunking.size", d.Chunking.Size)
	v.SetDefault("chunking.overlap", d.Chunking.Overlap)
	v.SetDefault("chunking.min_content", d.Chunking.MinContent)

	// Ingest
	v.SetDefault("ingest.workers", d.Ingest.Workers)
	v.SetDefault("ingest.report_timeout", d.Ingest.ReportTimeout)

	// Retrieval
	v.SetDefault("retrieval.k", d.Retrieval.K)
	v.SetDefault("retrieval.fetch_k", d.Retrieval.FetchK)
	v.SetDefault("retrieval.lambda", d.Retrieval.Lambda)
	v.SetDefault("retrieval.use_mmr", d.Retrieval.UseMMR)

	// Vector store
	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
}

// FromViper materializes a typed Config from the given viper instance.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Dir:        v.GetString("storage.dir"),
			Collection: v.GetString("storage.collection"),
		},
		Chunking: ChunkingConfig{
			Size:       v.GetInt("chunking.size"),
			Overlap:    v.GetInt("chunking.overlap"),
			MinContent: v.GetInt("chunking.min_content"),
		},
		Ingest: IngestConfig{
			Workers:       v.GetInt("ingest.workers"),
			ReportTimeout: v.GetInt("ingest.report_timeout"),
		},
		Retrieval: RetrievalConfig{
			K:      v.GetInt("retrieval.k"),
			FetchK: v.GetInt("retrieval.fetch_k"),
			Lambda: float32(v.GetFloat64("retrieval.lambda")),
			UseMMR: v.GetBool("retrieval.use_mmr"),
		},
		VectorStore: VectorStoreConfig{
			Provider: v.GetString("vector_store.provider"),
			Target:   v.GetString("vector_store.target"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
		},
	}

	applyDefaults(cfg)
	return cfg
}
