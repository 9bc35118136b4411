package vectorstore

import (
	"context"

	"github.com/google/uuid"
)

// Payload is the metadata carried alongside each indexed vector. Text is
// stored verbatim so retrieval never needs a second lookup.
type Payload struct {
	DocumentId uuid.UUID
	ChunkIndex int
	Text       string
	SourceRef  string
}

// Point is a single vector plus its payload, keyed by a stable id.
type Point struct {
	Id      string
	Vector  []float32
	Payload Payload
}

// ScoredPoint is a search hit. Score is cosine similarity in [0, 1].
type ScoredPoint struct {
	Id      string
	Score   float32
	Payload Payload
}

// IStore is the vector index surface the ingestion and retrieval paths
// depend on. Collections are scoped per session and live only in memory.
type IStore interface {
	CreateCollection(ctx context.Context, name string, dimension int) error
	DeleteCollection(ctx context.Context, name string) error
	Exists(name string) bool
	Count(name string) (int, error)
	Upsert(ctx context.Context, name string, points []Point) error
	Search(ctx context.Context, name string, vector []float32, limit int, scoreThreshold float64) ([]ScoredPoint, error)
}
