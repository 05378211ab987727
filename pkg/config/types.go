package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent knowledgebase configuration stored as
// config.toml in the .kb/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	Chunking    ChunkingConfig    `toml:"chunking"`
	Ingest      IngestConfig      `toml:"ingest"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
}

// StorageConfig holds persistence settings for the vector store.
type StorageConfig struct {
	// Dir is the directory holding the persisted collection. When empty,
	// the resolved .kb/ directory is used. The RAG_DIR environment variable
	// overrides this for compatibility with older deployments.
	Dir string `toml:"dir,omitempty"`

	// Collection is the named collection reports are ingested into.
	Collection string `toml:"collection,omitempty"`
}

// ChunkingConfig holds text splitting settings.
type ChunkingConfig struct {
	Size       int `toml:"size,omitempty"`
	Overlap    int `toml:"overlap,omitempty"`
	MinContent int `toml:"min_content,omitempty"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	// Workers bounds the number of concurrent embedding calls per report.
	Workers int `toml:"workers,omitempty"`

	// ReportTimeout bounds the ingestion of a single report, in seconds.
	// Each report in a batch gets its own deadline.
	ReportTimeout int `toml:"report_timeout,omitempty"`
}

// RetrievalConfig holds query-time defaults.
type RetrievalConfig struct {
	K      int     `toml:"k,omitempty"`
	FetchK int     `toml:"fetch_k,omitempty"`
	Lambda float32 `toml:"lambda,omitempty"`
	UseMMR bool    `toml:"use_mmr"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	// Provider selects the driver: chromem, sqlite, chroma, or memory.
	Provider string `toml:"provider,omitempty"`

	// Target is a path (chromem, sqlite) or URL (chroma) depending on provider.
	Target string `toml:"target,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// configKeyInfo binds a dotted key name to its getter and setter on Config.
type configKeyInfo struct {
	get func(*Config) string
	set func(*Config, string) error
}

func intKey(get func(*Config) *int, name string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *get(c) == 0 {
				return ""
			}
			return strconv.Itoa(*get(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*get(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
var configKeys = map[string]configKeyInfo{
	"storage.dir": {
		get: func(c *Config) string { return c.Storage.Dir },
		set: func(c *Config, v string) error { c.Storage.Dir = v; return nil },
	},
	"storage.collection": {
		get: func(c *Config) string { return c.Storage.Collection },
		set: func(c *Config, v string) error { c.Storage.Collection = v; return nil },
	},
	"chunking.size":         intKey(func(c *Config) *int { return &c.Chunking.Size }, "chunking.size"),
	"chunking.overlap":      intKey(func(c *Config) *int { return &c.Chunking.Overlap }, "chunking.overlap"),
	"chunking.min_content":  intKey(func(c *Config) *int { return &c.Chunking.MinContent }, "chunking.min_content"),
	"ingest.workers":        intKey(func(c *Config) *int { return &c.Ingest.Workers }, "ingest.workers"),
	"ingest.report_timeout": intKey(func(c *Config) *int { return &c.Ingest.ReportTimeout }, "ingest.report_timeout"),
	"retrieval.k":           intKey(func(c *Config) *int { return &c.Retrieval.K }, "retrieval.k"),
	"retrieval.fetch_k":     intKey(func(c *Config) *int { return &c.Retrieval.FetchK }, "retrieval.fetch_k"),
	"retrieval.lambda": {
		get: func(c *Config) string {
			if c.Retrieval.Lambda == 0 {
				return ""
			}
			return strconv.FormatFloat(float64(c.Retrieval.Lambda), 'f', -1, 32)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 32)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.lambda: %w", err)
			}
			c.Retrieval.Lambda = float32(f)
			return nil
		},
	},
	"retrieval.use_mmr": {
		get: func(c *Config) string { return strconv.FormatBool(c.Retrieval.UseMMR) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.use_mmr: %w", err)
			}
			c.Retrieval.UseMMR = b
			return nil
		},
	},
	"vector_store.provider": {
		get: func(c *Config) string { return c.VectorStore.Provider },
		set: func(c *Config, v string) error { c.VectorStore.Provider = v; return nil },
	},
	"vector_store.target": {
		get: func(c *Config) string { return c.VectorStore.Target },
		set: func(c *Config, v string) error { c.VectorStore.Target = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
}
