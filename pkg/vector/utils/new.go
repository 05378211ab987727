package vectorutils

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/namihq/knowledgebase/pkg/vector"
	"github.com/namihq/knowledgebase/pkg/vector/chroma"
	"github.com/namihq/knowledgebase/pkg/vector/chromem"
	"github.com/namihq/knowledgebase/pkg/vector/memory"
	"github.com/namihq/knowledgebase/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	// ProviderType selects the backend: "chromem", "sqlite", "chroma",
	// or "memory".
	ProviderType string

	// Target is provider-specific: a directory for chromem, a database
	// file for sqlite, a server URL for chroma. Ignored by memory.
	Target string

	// Collection is the collection name for providers that have one.
	Collection string

	// Dimensions is the embedding width, required by the sqlite provider.
	Dimensions uint

	Logger *zap.Logger
}

func NewVectorDriver(o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "chromem":
		return chromem.NewDriver(chromem.Config{
			Path:       o.Target,
			Collection: o.Collection,
			Create:     true,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "sqlite", "sqlitevec":
		dbPath := o.Target
		if dbPath != "" && dbPath != ":memory:" {
			dbPath = filepath.Join(dbPath, "vectors.db")
		}
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     dbPath,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "chroma":
		return chroma.NewChromaDriver(chroma.Config{
			URL:            o.Target,
			CollectionName: o.Collection,
		}, o.Logger)
	case "memory":
		return memory.NewDriver(o.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
