package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"doc-session-be/internal/config"
	"doc-session-be/internal/dto"
	"doc-session-be/internal/entity"
	"doc-session-be/internal/pkg/apperror"
	"doc-session-be/internal/pkg/logger"
	"doc-session-be/internal/repository/memory"
	"doc-session-be/pkg/llm"
	ragmemory "doc-session-be/pkg/rag/memory"
	"doc-session-be/pkg/rag/metrics"
	"doc-session-be/pkg/rag/prompt"
	"doc-session-be/pkg/rag/response"
	"doc-session-be/pkg/rag/search"
	"doc-session-be/pkg/rag/summary"
)

// promptHistoryWindow caps how many past exchanges enter the prompt.
// The memory store keeps more for the history endpoint.
const promptHistoryWindow = 5

type IChatService interface {
	Query(ctx context.Context, sessionId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error)
	History(ctx context.Context, sessionId uuid.UUID, limit int) ([]*dto.HistoryItem, error)
	ClearHistory(ctx context.Context, sessionId uuid.UUID) error
	Metrics(ctx context.Context, sessionId uuid.UUID) (*dto.SessionMetricsResponse, error)
	Summary(ctx context.Context, sessionId uuid.UUID) (*dto.SummaryResponse, error)
}

type chatService struct {
	sessionService ISessionService
	documentRepo   memory.IDocumentRepository
	orchestrator   *search.Orchestrator
	generator      *response.Generator
	memoryStore    *ragmemory.Store
	tracker        *metrics.Tracker
	logger         logger.ILogger
	ragCfg         config.RagConfig
}

func NewChatService(
	sessionService ISessionService,
	documentRepo memory.IDocumentRepository,
	orchestrator *search.Orchestrator,
	generator *response.Generator,
	memoryStore *ragmemory.Store,
	tracker *metrics.Tracker,
	log logger.ILogger,
	ragCfg config.RagConfig,
) IChatService {
	return &chatService{
		sessionService: sessionService,
		documentRepo:   documentRepo,
		orchestrator:   orchestrator,
		generator:      generator,
		memoryStore:    memoryStore,
		tracker:        tracker,
		logger:         log,
		ragCfg:         ragCfg,
	}
}

func (s *chatService) Query(ctx context.Context, sessionId uuid.UUID, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, apperror.Validation("query must not be empty")
	}

	session, err := s.sessionService.Resolve(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	// the transition guard rejects every state that is not ready for chat
	if err := s.sessionService.Transition(session, entity.SessionStateChatting); err != nil {
		return nil, err
	}

	chunks, err := s.orchestrator.Execute(ctx, session.CollectionName, req.Query, search.Config{
		Threshold: session.SimilarityThreshold,
		TopK:      s.ragCfg.TopK,
	})
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		// no evidence: decline without calling the model
		return s.complete(session, req.Query, prompt.DeclineMessage(session.Language),
			entity.ResponseTypeCannotAnswer, nil, 0, 0), nil
	}

	builder := prompt.NewBuilder(session.Language, session.CustomPrompt)
	history := s.memoryStore.ForSession(session.Id).Recent(promptHistoryWindow)
	promptText := builder.Build(req.Query, chunks, history)

	completion, err := s.generator.Generate(ctx, promptText,
		s.generationOptions(session, s.ragCfg.MaxOutputTokens)...)
	if err != nil {
		// metrics and memory only move after a successful generation
		return nil, err
	}

	return s.complete(session, req.Query, completion.Text,
		entity.ResponseTypeAnswered, chunks, completion.InputTokens, completion.OutputTokens), nil
}

// generationOptions applies the session's provider-key override on top of
// the configured sampling defaults.
func (s *chatService) generationOptions(session *entity.Session, maxTokens int) []llm.Option {
	opts := []llm.Option{
		llm.WithTemperature(s.ragCfg.Temperature),
		llm.WithMaxTokens(maxTokens),
	}
	if session.ApiKey != "" {
		opts = append(opts, llm.WithApiKey(session.ApiKey))
	}
	return opts
}

// complete records the finished exchange in metrics and memory, then
// shapes the transport response.
func (s *chatService) complete(
	session *entity.Session,
	query, answer string,
	responseType entity.ResponseType,
	chunks []search.RetrievedChunk,
	inputTokens, outputTokens int,
) *dto.QueryResponse {
	s.tracker.Record(session.Id, responseType, len(chunks), inputTokens, outputTokens)
	s.memoryStore.ForSession(session.Id).Add(ragmemory.Exchange{
		Query:     query,
		Answer:    answer,
		Type:      responseType,
		CreatedAt: session.LastActivityAt,
	})

	evidence := make([]dto.EvidenceItem, 0, len(chunks))
	for _, chunk := range chunks {
		evidence = append(evidence, dto.EvidenceItem{
			DocumentId: chunk.DocumentId,
			ChunkIndex: chunk.ChunkIndex,
			Text:       chunk.Text,
			SourceRef:  chunk.SourceRef,
			Score:      chunk.Score,
		})
	}

	s.logger.Info("service.chat", "query completed", map[string]interface{}{
		"session_id":    session.Id.String(),
		"response_type": string(responseType),
		"evidence":      len(evidence),
		"tokens":        inputTokens + outputTokens,
	})

	return &dto.QueryResponse{
		Answer:       answer,
		ResponseType: string(responseType),
		Evidence:     evidence,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
	}
}

func (s *chatService) History(ctx context.Context, sessionId uuid.UUID, limit int) ([]*dto.HistoryItem, error) {
	session, err := s.sessionService.Resolve(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	exchanges := s.memoryStore.ForSession(session.Id).Recent(limit)
	out := make([]*dto.HistoryItem, 0, len(exchanges))
	for _, exchange := range exchanges {
		out = append(out, &dto.HistoryItem{
			Query:        exchange.Query,
			Answer:       exchange.Answer,
			ResponseType: string(exchange.Type),
			CreatedAt:    exchange.CreatedAt,
		})
	}
	return out, nil
}

func (s *chatService) ClearHistory(ctx context.Context, sessionId uuid.UUID) error {
	session, err := s.sessionService.Resolve(ctx, sessionId)
	if err != nil {
		return err
	}
	s.memoryStore.Drop(session.Id)
	return nil
}

func (s *chatService) Metrics(ctx context.Context, sessionId uuid.UUID) (*dto.SessionMetricsResponse, error) {
	session, err := s.sessionService.Resolve(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	snap := s.tracker.Snapshot(session.Id)
	return &dto.SessionMetricsResponse{
		TotalQueries:      snap.TotalQueries,
		AnsweredCount:     snap.AnsweredCount,
		CannotAnswer:      snap.CannotAnswer,
		UnansweredRatio:   snap.UnansweredRatio,
		AvgChunks:         snap.AvgChunks,
		AvgTokensPerQuery: snap.AvgTokensPerQuery,
		InputTokens:       snap.InputTokens,
		OutputTokens:      snap.OutputTokens,
		TotalTokens:       snap.TotalTokens,
	}, nil
}

func (s *chatService) Summary(ctx context.Context, sessionId uuid.UUID) (*dto.SummaryResponse, error) {
	session, err := s.sessionService.Resolve(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	var parts []string
	truncated := false
	for _, document := range s.documentRepo.ListBySession(session.Id) {
		if document.ModerationStatus != entity.ModerationStatusApproved || document.SummarySource == "" {
			continue
		}
		parts = append(parts, document.SummarySource)
		truncated = truncated || document.SummaryTruncated
	}
	if len(parts) == 0 {
		return nil, apperror.Validation("session has no summarizable material")
	}

	corpus := strings.Join(parts, "\n\n")
	if bounded := summary.TruncateAtSentence(corpus, s.ragCfg.SummaryCharBudget); len(bounded) < len(corpus) {
		corpus = bounded
		truncated = true
	}

	completion, err := s.generator.Generate(ctx, summary.BuildPrompt(session.Language, corpus),
		s.generationOptions(session, s.ragCfg.SummaryMaxTokens)...)
	if err != nil {
		return nil, err
	}

	return &dto.SummaryResponse{
		SessionId: session.Id,
		Summary:   completion.Text,
		Truncated: truncated,
	}, nil
}
