package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"doc-session-be/internal/pkg/apperror"
)

const (
	metaDocumentId = "document_id"
	metaChunkIndex = "chunk_index"
	metaSourceRef  = "source_ref"
)

// ChromemStore wraps an in-memory chromem-go database with per-session
// collections. Embeddings are always supplied by the caller, so the
// collection-level embedding function must never run.
type ChromemStore struct {
	mu         sync.RWMutex
	db         *chromem.DB
	dimensions map[string]int
}

var _ IStore = &ChromemStore{}

func NewChromemStore() *ChromemStore {
	return &ChromemStore{
		db:         chromem.NewDB(),
		dimensions: make(map[string]int),
	}
}

// noEmbed satisfies chromem's collection API. Every document and query
// arrives with a precomputed vector, so reaching this is a bug.
func noEmbed(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("vectorstore: embedding function must not be called")
}

func (s *ChromemStore) CreateCollection(_ context.Context, name string, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.CreateCollection(name, nil, noEmbed); err != nil {
		return apperror.Wrap(apperror.CodeInternal, "failed to create collection", err)
	}
	s.dimensions[name] = dimension
	return nil
}

func (s *ChromemStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(name); err != nil {
		return apperror.Wrap(apperror.CodeInternal, "failed to delete collection", err)
	}
	delete(s.dimensions, name)
	return nil
}

func (s *ChromemStore) Exists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.GetCollection(name, noEmbed) != nil
}

// Count degrades to zero for an absent collection so callers sweeping
// already-cleaned sessions never trip on it.
func (s *ChromemStore) Count(name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.db.GetCollection(name, noEmbed)
	if col == nil {
		return 0, nil
	}
	return col.Count(), nil
}

func (s *ChromemStore) Upsert(ctx context.Context, name string, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.db.GetCollection(name, noEmbed)
	if col == nil {
		return apperror.NotFound("collection not found")
	}

	dimension := s.dimensions[name]
	for _, point := range points {
		if dimension > 0 && len(point.Vector) != dimension {
			return apperror.New(
				apperror.CodeUpstreamPermanent,
				fmt.Sprintf("embedding dimension mismatch: got %d, want %d", len(point.Vector), dimension),
			)
		}
		doc := chromem.Document{
			ID:        point.Id,
			Embedding: point.Vector,
			Content:   point.Payload.Text,
			Metadata: map[string]string{
				metaDocumentId: point.Payload.DocumentId.String(),
				metaChunkIndex: strconv.Itoa(point.Payload.ChunkIndex),
				metaSourceRef:  point.Payload.SourceRef,
			},
		}
		if err := col.AddDocument(ctx, doc); err != nil {
			return apperror.Wrap(apperror.CodeInternal, "failed to upsert point", err)
		}
	}
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, name string, vector []float32, limit int, scoreThreshold float64) ([]ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col := s.db.GetCollection(name, noEmbed)
	if col == nil {
		// absent collection degrades to no evidence
		return nil, nil
	}

	if dimension := s.dimensions[name]; dimension > 0 && len(vector) != dimension {
		return nil, apperror.New(
			apperror.CodeUpstreamPermanent,
			fmt.Sprintf("query dimension mismatch: got %d, want %d", len(vector), dimension),
		)
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}
	if limit <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, "vector search failed", err)
	}

	hits := make([]ScoredPoint, 0, len(results))
	for _, r := range results {
		if float64(r.Similarity) < scoreThreshold {
			continue
		}
		hits = append(hits, ScoredPoint{
			Id:      r.ID,
			Score:   r.Similarity,
			Payload: payloadFromResult(r),
		})
	}
	return hits, nil
}

func payloadFromResult(r chromem.Result) Payload {
	documentId, _ := uuid.Parse(r.Metadata[metaDocumentId])
	chunkIndex, _ := strconv.Atoi(r.Metadata[metaChunkIndex])
	return Payload{
		DocumentId: documentId,
		ChunkIndex: chunkIndex,
		Text:       r.Content,
		SourceRef:  r.Metadata[metaSourceRef],
	}
}
