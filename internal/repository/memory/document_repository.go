package memory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"doc-session-be/internal/entity"
)

type IDocumentRepository interface {
	Save(document *entity.Document)
	Get(documentId uuid.UUID) (*entity.Document, bool)
	ListBySession(sessionId uuid.UUID) []*entity.Document
	DeleteBySession(sessionId uuid.UUID)
}

// documentRepository keeps document metadata keyed by document id.
// Documents never expire on their own; session cleanup removes them.
type documentRepository struct {
	cache *cache.Cache
}

func NewDocumentRepository() IDocumentRepository {
	return &documentRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *documentRepository) Save(document *entity.Document) {
	r.cache.Set(document.Id.String(), document, cache.NoExpiration)
}

func (r *documentRepository) Get(documentId uuid.UUID) (*entity.Document, bool) {
	if x, found := r.cache.Get(documentId.String()); found {
		return x.(*entity.Document), true
	}
	return nil, false
}

func (r *documentRepository) ListBySession(sessionId uuid.UUID) []*entity.Document {
	var out []*entity.Document
	for _, item := range r.cache.Items() {
		document := item.Object.(*entity.Document)
		if document.SessionId == sessionId {
			out = append(out, document)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *documentRepository) DeleteBySession(sessionId uuid.UUID) {
	for key, item := range r.cache.Items() {
		if item.Object.(*entity.Document).SessionId == sessionId {
			r.cache.Delete(key)
		}
	}
}
