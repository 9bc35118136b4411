package memory

import (
	"sync"

	"github.com/google/uuid"

	"doc-session-be/internal/entity"
)

// ISessionRepository stores live sessions. Expiry is lazy: entries stay
// until the reaper or a read path removes them, so there is no background
// janitor here.
type ISessionRepository interface {
	Save(session *entity.Session)
	Get(sessionId uuid.UUID) (*entity.Session, bool)
	Delete(sessionId uuid.UUID)
	List() []*entity.Session
}

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*entity.Session
}

func NewSessionRepository() ISessionRepository {
	return &sessionRepository{
		sessions: make(map[uuid.UUID]*entity.Session),
	}
}

func (r *sessionRepository) Save(session *entity.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.Id] = session
}

func (r *sessionRepository) Get(sessionId uuid.UUID) (*entity.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, found := r.sessions[sessionId]
	return session, found
}

func (r *sessionRepository) Delete(sessionId uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionId)
}

func (r *sessionRepository) List() []*entity.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		out = append(out, session)
	}
	return out
}
