package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"doc-session-be/internal/dto"
	"doc-session-be/internal/entity"
	"doc-session-be/internal/pkg/apperror"
	"doc-session-be/internal/pkg/logger"
	"doc-session-be/internal/repository/memory"
)

type IDocumentService interface {
	UploadFile(ctx context.Context, sessionId uuid.UUID, filename string, content []byte) (*dto.UploadDocumentResponse, error)
	UploadText(ctx context.Context, sessionId uuid.UUID, req *dto.UploadTextRequest) (*dto.UploadDocumentResponse, error)
	UploadURL(ctx context.Context, sessionId uuid.UUID, req *dto.UploadURLRequest) (*dto.UploadDocumentResponse, error)
	List(ctx context.Context, sessionId uuid.UUID) ([]*dto.DocumentStatusResponse, error)
	Status(ctx context.Context, sessionId uuid.UUID, documentId uuid.UUID) (*dto.DocumentStatusResponse, error)
}

type documentService struct {
	sessionService   ISessionService
	documentRepo     memory.IDocumentRepository
	publisherService IPublisherService
	logger           logger.ILogger
	maxUploadBytes   int64
}

func NewDocumentService(
	sessionService ISessionService,
	documentRepo memory.IDocumentRepository,
	publisherService IPublisherService,
	log logger.ILogger,
	maxUploadBytes int64,
) IDocumentService {
	return &documentService{
		sessionService:   sessionService,
		documentRepo:     documentRepo,
		publisherService: publisherService,
		logger:           log,
		maxUploadBytes:   maxUploadBytes,
	}
}

func (s *documentService) UploadFile(ctx context.Context, sessionId uuid.UUID, filename string, content []byte) (*dto.UploadDocumentResponse, error) {
	if len(content) == 0 {
		return nil, apperror.Validation("uploaded file is empty")
	}
	if int64(len(content)) > s.maxUploadBytes {
		return nil, apperror.Validation("uploaded file exceeds the size limit")
	}
	return s.accept(ctx, sessionId, entity.SourceKindFile, filename, content)
}

func (s *documentService) UploadText(ctx context.Context, sessionId uuid.UUID, req *dto.UploadTextRequest) (*dto.UploadDocumentResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperror.Validation("text must not be empty")
	}
	if int64(len(req.Text)) > s.maxUploadBytes {
		return nil, apperror.Validation("text exceeds the size limit")
	}
	name := req.Name
	if name == "" {
		name = "pasted-text"
	}
	return s.accept(ctx, sessionId, entity.SourceKindText, name, []byte(req.Text))
}

func (s *documentService) UploadURL(ctx context.Context, sessionId uuid.UUID, req *dto.UploadURLRequest) (*dto.UploadDocumentResponse, error) {
	parsed, err := url.ParseRequestURI(req.Url)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, apperror.Validation("url must be a valid http(s) address")
	}
	// the fetch itself runs in the background pipeline
	return s.accept(ctx, sessionId, entity.SourceKindURL, req.Url, nil)
}

// accept registers the document and hands it to the ingest bus. The caller
// gets accepted-not-completed and polls status afterwards.
func (s *documentService) accept(ctx context.Context, sessionId uuid.UUID, kind entity.SourceKind, sourceRef string, raw []byte) (*dto.UploadDocumentResponse, error) {
	session, err := s.sessionService.Resolve(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	// the transition guard rejects uploads from INITIALIZING and ERROR
	if err := s.sessionService.Transition(session, entity.SessionStateProcessing); err != nil {
		return nil, err
	}

	document := &entity.Document{
		Id:               uuid.New(),
		SessionId:        session.Id,
		SourceKind:       kind,
		SourceRef:        sourceRef,
		RawSource:        raw,
		ExtractionStatus: entity.ExtractionStatusPending,
		ModerationStatus: entity.ModerationStatusPending,
		CreatedAt:        session.LastActivityAt,
	}
	s.documentRepo.Save(document)

	payload, err := json.Marshal(dto.PublishIngestMessage{
		SessionId:  session.Id,
		DocumentId: document.Id,
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, "failed to encode ingest message", err)
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, apperror.Wrap(apperror.CodeInternal, "failed to enqueue document", err)
	}

	s.logger.Info("service.document", "document accepted", map[string]interface{}{
		"session_id":  session.Id.String(),
		"document_id": document.Id.String(),
		"source_kind": string(kind),
		"source_ref":  sourceRef,
	})

	return &dto.UploadDocumentResponse{
		Id:        document.Id,
		SessionId: session.Id,
		SourceRef: sourceRef,
		Accepted:  true,
	}, nil
}

func (s *documentService) List(ctx context.Context, sessionId uuid.UUID) ([]*dto.DocumentStatusResponse, error) {
	session, err := s.sessionService.Resolve(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	documents := s.documentRepo.ListBySession(session.Id)
	out := make([]*dto.DocumentStatusResponse, 0, len(documents))
	for _, document := range documents {
		out = append(out, toDocumentStatusResponse(document))
	}
	return out, nil
}

func (s *documentService) Status(ctx context.Context, sessionId uuid.UUID, documentId uuid.UUID) (*dto.DocumentStatusResponse, error) {
	session, err := s.sessionService.Resolve(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	document, found := s.documentRepo.Get(documentId)
	if !found || document.SessionId != session.Id {
		return nil, apperror.NotFound("document not found")
	}
	return toDocumentStatusResponse(document), nil
}

func toDocumentStatusResponse(document *entity.Document) *dto.DocumentStatusResponse {
	return &dto.DocumentStatusResponse{
		Id:                document.Id,
		SourceKind:        string(document.SourceKind),
		SourceRef:         document.SourceRef,
		ExtractionStatus:  string(document.ExtractionStatus),
		ModerationStatus:  string(document.ModerationStatus),
		BlockedCategories: document.BlockedCategories,
		ChunkCount:        document.ChunkCount,
		IndexedChunkCount: document.IndexedChunkCount,
		SkippedChunkCount: document.SkippedChunkCount,
		ErrorCode:         document.ErrorCode,
		ErrorMessage:      document.ErrorMessage,
		CreatedAt:         document.CreatedAt,
		UpdatedAt:         document.UpdatedAt,
	}
}
