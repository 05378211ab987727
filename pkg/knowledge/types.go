// Package knowledge implements the ingestion and retrieval services that
// turn free-form research reports into searchable chunk embeddings.
package knowledge

import (
	"strconv"
	"time"
)

// Metadata keys used at the vector driver boundary.
const (
	metaTopic       = "topic"
	metaSource      = "source"
	metaCreatedAt   = "created_at"
	metaCollection  = "collection"
	metaChunkID     = "chunk_id"
	metaTotalChunks = "total_chunks"
)

// DefaultSource tags every ingested chunk so mixed collections can be
// filtered back down to report content.
const DefaultSource = "research_report"

// Report is a unit of ingestion: a named body of text plus optional
// caller-supplied metadata carried through to every chunk.
type Report struct {
	Topic    string
	Content  string
	Metadata map[string]string
}

// ChunkMeta is the typed metadata attached to each stored chunk.
type ChunkMeta struct {
	Topic       string
	Source      string
	Collection  string
	CreatedAt   time.Time
	ChunkID     int
	TotalChunks int

	// Extra holds caller-supplied metadata passed through verbatim.
	Extra map[string]string
}

// Flatten converts the metadata to the string map stored by drivers.
// Extra entries may override any default field except the topic.
func (m ChunkMeta) Flatten() map[string]string {
	out := map[string]string{
		metaTopic:       m.Topic,
		metaSource:      m.Source,
		metaCreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
		metaCollection:  m.Collection,
		metaChunkID:     strconv.Itoa(m.ChunkID),
		metaTotalChunks: strconv.Itoa(m.TotalChunks),
	}
	for k, v := range m.Extra {
		if k == metaTopic {
			continue
		}
		out[k] = v
	}
	return out
}

// ParseChunkMeta reconstructs typed metadata from a driver's string map.
// Unknown keys land in Extra.
func ParseChunkMeta(m map[string]string) ChunkMeta {
	var meta ChunkMeta
	for k, v := range m {
		switch k {
		case metaTopic:
			meta.Topic = v
		case metaSource:
			meta.Source = v
		case metaCollection:
			meta.Collection = v
		case metaCreatedAt:
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				meta.CreatedAt = t
			}
		case metaChunkID:
			if n, err := strconv.Atoi(v); err == nil {
				meta.ChunkID = n
			}
		case metaTotalChunks:
			if n, err := strconv.Atoi(v); err == nil {
				meta.TotalChunks = n
			}
		default:
			if meta.Extra == nil {
				meta.Extra = make(map[string]string)
			}
			meta.Extra[k] = v
		}
	}
	return meta
}

// IngestResult reports the outcome of ingesting a single report. A failed
// ingestion carries Err; nothing is persisted on failure.
type IngestResult struct {
	Success     bool
	Topic       string
	ChunksAdded int
	Message     string
	Err         error
}

// BatchResult aggregates per-report outcomes for a multi-report ingestion.
type BatchResult struct {
	Successful int
	Failed     int
	Details    []IngestResult
}

// VerifyResult reports whether chunks for a topic are retrievable.
// Found=false with no Err means verification ran and found nothing.
type VerifyResult struct {
	Found         bool
	ChunksFound   int
	TotalResults  int
	SampleContent string
}

// ReportSummary describes one ingested report as observed in the store.
type ReportSummary struct {
	Topic     string
	CreatedAt time.Time
	Chunks    int
}

// QueryOptions tunes a single retrieval. Zero values fall back to the
// configured defaults.
type QueryOptions struct {
	// K is the number of results to return.
	K int

	// NoMMR forces plain similarity ranking even when MMR is the
	// configured default.
	NoMMR bool

	// FetchK is the MMR candidate pool size.
	FetchK int

	// Lambda is the MMR relevance/diversity trade-off in [0,1].
	Lambda float32

	// LambdaSet marks Lambda as explicitly chosen, letting a zero value
	// request pure diversity instead of the configured default.
	LambdaSet bool
}
