package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"doc-session-be/internal/config"
	"doc-session-be/internal/dto"
	"doc-session-be/internal/entity"
	"doc-session-be/internal/pkg/apperror"
	"doc-session-be/internal/pkg/logger"
	"doc-session-be/internal/repository/memory"
	ragmemory "doc-session-be/pkg/rag/memory"
	"doc-session-be/pkg/rag/metrics"
	"doc-session-be/pkg/vectorstore"
)

type ISessionService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, sessionId uuid.UUID) (*dto.SessionResponse, error)
	Touch(ctx context.Context, sessionId uuid.UUID) (*dto.SessionResponse, error)
	UpdateLanguage(ctx context.Context, sessionId uuid.UUID, language string) error
	UpdatePrompt(ctx context.Context, sessionId uuid.UUID, customPrompt string) error
	Close(ctx context.Context, sessionId uuid.UUID) error
	Restart(ctx context.Context, sessionId uuid.UUID) (*dto.SessionResponse, error)

	// Resolve returns the live session, lazily expiring it first. Every
	// caller counts as activity, so the TTL window is refreshed.
	Resolve(ctx context.Context, sessionId uuid.UUID) (*entity.Session, error)
	Transition(session *entity.Session, to entity.SessionState) error
	RecordIngest(session *entity.Session, vectors int)
	ReapIfExpired(ctx context.Context, session *entity.Session, now time.Time) bool
	Cleanup(ctx context.Context, session *entity.Session)
}

// validTransitions enumerates the lifecycle edges. ERROR is reachable from
// everywhere and is handled separately in Transition.
var validTransitions = map[entity.SessionState][]entity.SessionState{
	entity.SessionStateInitializing:   {entity.SessionStateReadyForUpload},
	entity.SessionStateReadyForUpload: {entity.SessionStateProcessing},
	entity.SessionStateProcessing:     {entity.SessionStateReadyForChat},
	entity.SessionStateReadyForChat:   {entity.SessionStateProcessing, entity.SessionStateChatting},
	entity.SessionStateChatting:       {entity.SessionStateProcessing, entity.SessionStateReadyForChat},
	entity.SessionStateError:          {},
}

type sessionService struct {
	sessionRepo  memory.ISessionRepository
	documentRepo memory.IDocumentRepository
	vectorStore  vectorstore.IStore
	memoryStore  *ragmemory.Store
	tracker      *metrics.Tracker
	logger       logger.ILogger

	ttl              time.Duration
	defaultThreshold float64
	dimension        int
	now              func() time.Time

	// locks holds one mutex per session id. Sessions are shared by pointer
	// between request handlers, the ingest consumer and the reaper, so every
	// field mutation goes through the session's mutex. The mutex is never
	// held across provider or vector store calls.
	locks sync.Map
}

func NewSessionService(
	sessionRepo memory.ISessionRepository,
	documentRepo memory.IDocumentRepository,
	vectorStore vectorstore.IStore,
	memoryStore *ragmemory.Store,
	tracker *metrics.Tracker,
	log logger.ILogger,
	sessionCfg config.SessionConfig,
	ragCfg config.RagConfig,
	aiCfg config.AIConfig,
) ISessionService {
	return &sessionService{
		sessionRepo:      sessionRepo,
		documentRepo:     documentRepo,
		vectorStore:      vectorStore,
		memoryStore:      memoryStore,
		tracker:          tracker,
		logger:           log,
		ttl:              sessionCfg.TTL,
		defaultThreshold: ragCfg.DefaultThreshold,
		dimension:        aiCfg.EmbeddingDimension,
		now:              time.Now,
	}
}

func (s *sessionService) Create(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	threshold := req.SimilarityThreshold
	if threshold == 0 {
		threshold = s.defaultThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, apperror.Validation("similarity_threshold must be between 0 and 1")
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	now := s.now()
	session := &entity.Session{
		Id:                  uuid.New(),
		State:               entity.SessionStateInitializing,
		Language:            language,
		SimilarityThreshold: threshold,
		CustomPrompt:        req.CustomPrompt,
		ApiKey:              req.ApiKey,
		CreatedAt:           now,
	}
	session.CollectionName = entity.CollectionNameFor(session.Id)
	session.Touch(now, s.ttl)

	if err := s.vectorStore.CreateCollection(ctx, session.CollectionName, s.dimension); err != nil {
		return nil, err
	}
	session.State = entity.SessionStateReadyForUpload
	s.sessionRepo.Save(session)

	s.logger.Info("service.session", "session created", map[string]interface{}{
		"session_id": session.Id.String(),
		"language":   session.Language,
		"threshold":  session.SimilarityThreshold,
		"expires_at": session.ExpiresAt,
	})

	return toSessionResponse(session), nil
}

func (s *sessionService) sessionLock(sessionId uuid.UUID) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(sessionId, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *sessionService) Resolve(_ context.Context, sessionId uuid.UUID) (*entity.Session, error) {
	session, found := s.sessionRepo.Get(sessionId)
	if !found {
		return nil, apperror.NotFound("session not found")
	}

	mu := s.sessionLock(sessionId)
	mu.Lock()
	defer mu.Unlock()

	now := s.now()
	if session.Expired(now) {
		// lazy expiry: an expired session is indistinguishable from one
		// that never existed
		s.Cleanup(context.Background(), session)
		return nil, apperror.NotFound("session not found")
	}

	session.Touch(now, s.ttl)
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.Resolve(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

func (s *sessionService) Touch(ctx context.Context, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	return s.Get(ctx, sessionId)
}

func (s *sessionService) UpdateLanguage(ctx context.Context, sessionId uuid.UUID, language string) error {
	if language == "" {
		return apperror.Validation("language must not be empty")
	}
	session, err := s.Resolve(ctx, sessionId)
	if err != nil {
		return err
	}
	mu := s.sessionLock(session.Id)
	mu.Lock()
	session.Language = language
	mu.Unlock()
	return nil
}

func (s *sessionService) UpdatePrompt(ctx context.Context, sessionId uuid.UUID, customPrompt string) error {
	session, err := s.Resolve(ctx, sessionId)
	if err != nil {
		return err
	}
	mu := s.sessionLock(session.Id)
	mu.Lock()
	session.CustomPrompt = customPrompt
	mu.Unlock()
	return nil
}

func (s *sessionService) Transition(session *entity.Session, to entity.SessionState) error {
	mu := s.sessionLock(session.Id)
	mu.Lock()
	defer mu.Unlock()

	from := session.State
	if from == to {
		return nil
	}
	if to != entity.SessionStateError {
		allowed := false
		for _, next := range validTransitions[from] {
			if next == to {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperror.New(apperror.CodeValidation,
				"invalid state transition from "+string(from)+" to "+string(to))
		}
	}

	session.State = to
	s.logger.Info("service.session", "session state changed", map[string]interface{}{
		"session_id": session.Id.String(),
		"from":       string(from),
		"to":         string(to),
	})
	return nil
}

// RecordIngest adds one ingested document to the session's counters.
func (s *sessionService) RecordIngest(session *entity.Session, vectors int) {
	mu := s.sessionLock(session.Id)
	mu.Lock()
	session.DocumentCount++
	session.VectorCount += vectors
	mu.Unlock()
	s.sessionRepo.Save(session)
}

// ReapIfExpired removes the session when its TTL window has lapsed at the
// given instant. Reports whether the session was reaped.
func (s *sessionService) ReapIfExpired(ctx context.Context, session *entity.Session, now time.Time) bool {
	mu := s.sessionLock(session.Id)
	mu.Lock()
	defer mu.Unlock()

	if !session.Expired(now) {
		return false
	}
	s.Cleanup(ctx, session)
	return true
}

func (s *sessionService) Close(ctx context.Context, sessionId uuid.UUID) error {
	session, err := s.Resolve(ctx, sessionId)
	if err != nil {
		return err
	}
	s.Cleanup(ctx, session)
	return nil
}

func (s *sessionService) Restart(ctx context.Context, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.Resolve(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	// drop everything the session accumulated, keep its identity and settings
	if err := s.vectorStore.DeleteCollection(ctx, session.CollectionName); err != nil {
		s.logger.Warn("service.session", "failed to drop collection on restart", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}
	s.memoryStore.Drop(session.Id)
	s.tracker.Drop(session.Id)
	s.documentRepo.DeleteBySession(session.Id)

	if err := s.vectorStore.CreateCollection(ctx, session.CollectionName, s.dimension); err != nil {
		return nil, err
	}

	mu := s.sessionLock(session.Id)
	mu.Lock()
	session.State = entity.SessionStateReadyForUpload
	session.DocumentCount = 0
	session.VectorCount = 0
	session.Touch(s.now(), s.ttl)
	mu.Unlock()

	s.logger.Info("service.session", "session restarted", map[string]interface{}{
		"session_id": session.Id.String(),
	})
	return toSessionResponse(session), nil
}

// Cleanup tears a session down completely. Safe to call on sessions that
// are already partially cleaned: every step tolerates absence.
func (s *sessionService) Cleanup(ctx context.Context, session *entity.Session) {
	if err := s.vectorStore.DeleteCollection(ctx, session.CollectionName); err != nil {
		s.logger.Warn("service.session", "failed to delete collection during cleanup", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}
	s.memoryStore.Drop(session.Id)
	s.tracker.Drop(session.Id)
	s.documentRepo.DeleteBySession(session.Id)
	s.sessionRepo.Delete(session.Id)
	s.locks.Delete(session.Id)

	s.logger.Info("service.session", "session removed", map[string]interface{}{
		"session_id": session.Id.String(),
	})
}

func toSessionResponse(session *entity.Session) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:                  session.Id,
		State:               string(session.State),
		Language:            session.Language,
		SimilarityThreshold: session.SimilarityThreshold,
		DocumentCount:       session.DocumentCount,
		VectorCount:         session.VectorCount,
		CreatedAt:           session.CreatedAt,
		LastActivityAt:      session.LastActivityAt,
		ExpiresAt:           session.ExpiresAt,
	}
}
