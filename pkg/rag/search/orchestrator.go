package search

import (
	"context"
	"fmt"

	"doc-session-be/internal/pkg/logger"
	"doc-session-be/pkg/embedding"
	"doc-session-be/pkg/vectorstore"

	"github.com/google/uuid"
)

// RetrievedChunk is one evidence candidate surfaced for a query.
type RetrievedChunk struct {
	DocumentId uuid.UUID
	ChunkIndex int
	Text       string
	SourceRef  string
	Score      float32
}

// Config encapsulates retrieval parameters.
type Config struct {
	Threshold float64
	TopK      int
}

// Orchestrator embeds the query and runs the similarity search against the
// session's collection.
type Orchestrator struct {
	embeddingProvider embedding.EmbeddingProvider
	store             vectorstore.IStore
	logger            logger.ILogger
}

func NewOrchestrator(embeddingProvider embedding.EmbeddingProvider, store vectorstore.IStore, logger logger.ILogger) *Orchestrator {
	return &Orchestrator{
		embeddingProvider: embeddingProvider,
		store:             store,
		logger:            logger,
	}
}

// Execute returns the chunks above the similarity threshold, best first.
// An empty result is not an error: the caller decides how to answer
// without evidence.
func (o *Orchestrator) Execute(ctx context.Context, collectionName, query string, config Config) ([]RetrievedChunk, error) {
	embeddingRes, err := o.embeddingProvider.Generate(query, embedding.TaskTypeQuery)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	hits, err := o.store.Search(ctx, collectionName, embeddingRes.Embedding.Values, config.TopK, config.Threshold)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("rag.search", "retrieval complete", map[string]interface{}{
		"collection": collectionName,
		"top_k":      config.TopK,
		"threshold":  config.Threshold,
		"hits":       len(hits),
	})

	chunks := make([]RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, RetrievedChunk{
			DocumentId: hit.Payload.DocumentId,
			ChunkIndex: hit.Payload.ChunkIndex,
			Text:       hit.Payload.Text,
			SourceRef:  hit.Payload.SourceRef,
			Score:      hit.Score,
		})
	}
	return chunks, nil
}
