package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"golang.org/x/time/rate"

	"doc-session-be/internal/dto"
	"doc-session-be/internal/entity"
	"doc-session-be/internal/pkg/logger"
	"doc-session-be/internal/repository/memory"
	"doc-session-be/pkg/chunker"
	"doc-session-be/pkg/embedding"
	"doc-session-be/pkg/extract"
	"doc-session-be/pkg/moderation"
	"doc-session-be/pkg/rag/summary"
	"doc-session-be/pkg/vectorstore"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	sessionService    ISessionService
	sessionRepo       memory.ISessionRepository
	documentRepo      memory.IDocumentRepository
	extractor         *extract.Extractor
	urlFetcher        *extract.URLFetcher
	classifier        moderation.Classifier
	splitter          *chunker.Chunker
	embeddingProvider embedding.EmbeddingProvider
	embedLimiter      *rate.Limiter
	vectorStore       vectorstore.IStore
	logger            logger.ILogger
	summaryCharBudget int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sessionService ISessionService,
	sessionRepo memory.ISessionRepository,
	documentRepo memory.IDocumentRepository,
	extractor *extract.Extractor,
	urlFetcher *extract.URLFetcher,
	classifier moderation.Classifier,
	splitter *chunker.Chunker,
	embeddingProvider embedding.EmbeddingProvider,
	embedLimiter *rate.Limiter,
	vectorStore vectorstore.IStore,
	log logger.ILogger,
	summaryCharBudget int,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		sessionService:    sessionService,
		sessionRepo:       sessionRepo,
		documentRepo:      documentRepo,
		extractor:         extractor,
		urlFetcher:        urlFetcher,
		classifier:        classifier,
		splitter:          splitter,
		embeddingProvider: embeddingProvider,
		embedLimiter:      embedLimiter,
		vectorStore:       vectorStore,
		logger:            log,
		summaryCharBudget: summaryCharBudget,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("service.consumer", "failed to unmarshal ingest message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads must not loop forever
		return
	}

	document, found := cs.documentRepo.Get(payload.DocumentId)
	if !found {
		cs.logger.Warn("service.consumer", "document vanished before ingestion", map[string]interface{}{
			"document_id": payload.DocumentId.String(),
		})
		msg.Ack()
		return
	}
	session, found := cs.sessionRepo.Get(payload.SessionId)
	if !found {
		cs.logger.Warn("service.consumer", "session vanished before ingestion", map[string]interface{}{
			"session_id": payload.SessionId.String(),
		})
		msg.Ack()
		return
	}

	cs.ingest(ctx, session, document)
	msg.Ack()
}

// ingest runs the strict stage order for one document. Each stage records
// its outcome on the document before the next one starts.
func (cs *consumerService) ingest(ctx context.Context, session *entity.Session, document *entity.Document) {
	// [STAGE 1] Extract
	text, err := cs.extract(document)
	if err != nil {
		document.MarkExtractionFailed(extractionErrorCode(err), err.Error())
		cs.documentRepo.Save(document)
		cs.failSession(session, "extraction failed for "+document.SourceRef)
		return
	}
	document.MarkExtracted(text)
	cs.documentRepo.Save(document)

	// [STAGE 2] Moderate
	result, err := cs.classifier.Classify(ctx, text)
	if err != nil {
		// availability over safety: classifier outage approves, loudly
		cs.logger.Warn("service.consumer", "moderation unavailable, approving by default", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		document.MarkModerationApproved()
	} else if !result.Approved {
		document.MarkModerationBlocked(result.Categories, result.Reason)
		cs.documentRepo.Save(document)
		cs.logger.Warn("service.consumer", "document blocked by moderation", map[string]interface{}{
			"document_id": document.Id.String(),
			"categories":  result.Categories,
		})
		// blocked is terminal for the document, not for the session
		cs.finishSession(session)
		return
	} else {
		document.MarkModerationApproved()
	}
	cs.documentRepo.Save(document)

	// [STAGE 3] Chunk
	document.SummarySource = summary.TruncateAtSentence(text, cs.summaryCharBudget)
	document.SummaryTruncated = len(document.SummarySource) < len(text)
	chunks := cs.splitter.Split(text)
	document.MarkChunked(len(chunks))
	cs.documentRepo.Save(document)

	if len(chunks) == 0 {
		document.MarkIndexed(0, 0)
		cs.documentRepo.Save(document)
		cs.finishSession(session)
		return
	}

	// [STAGE 4] Embed, rate limited, skip-and-continue on per-chunk failure
	var points []vectorstore.Point
	skipped := 0
	for _, chunk := range chunks {
		if err := cs.embedLimiter.Wait(ctx); err != nil {
			cs.logger.Error("service.consumer", "embedding rate limiter interrupted", map[string]interface{}{
				"document_id": document.Id.String(),
				"error":       err.Error(),
			})
			skipped = len(chunks) - len(points)
			break
		}
		res, err := cs.embeddingProvider.Generate(chunk.Text, embedding.TaskTypeDocument)
		if err != nil {
			skipped++
			cs.logger.Warn("service.consumer", "skipping chunk after embedding failure", map[string]interface{}{
				"document_id": document.Id.String(),
				"chunk_index": chunk.Index,
				"error":       err.Error(),
			})
			continue
		}
		points = append(points, vectorstore.Point{
			Id:     fmt.Sprintf("%s_chunk_%d", document.Id, chunk.Index),
			Vector: res.Embedding.Values,
			Payload: vectorstore.Payload{
				DocumentId: document.Id,
				ChunkIndex: chunk.Index,
				Text:       chunk.Text,
				SourceRef:  document.SourceRef,
			},
		})
	}

	// [STAGE 5] Index
	if len(points) > 0 {
		if err := cs.vectorStore.Upsert(ctx, session.CollectionName, points); err != nil {
			document.MarkFailed("index_failed", err.Error())
			cs.documentRepo.Save(document)
			cs.failSession(session, "indexing failed for "+document.SourceRef)
			return
		}
	}

	document.MarkIndexed(len(points), skipped)
	cs.documentRepo.Save(document)

	cs.sessionService.RecordIngest(session, len(points))
	cs.finishSession(session)

	cs.logger.Info("service.consumer", "document ingested", map[string]interface{}{
		"session_id":  session.Id.String(),
		"document_id": document.Id.String(),
		"chunks":      len(chunks),
		"indexed":     len(points),
		"skipped":     skipped,
	})
}

func (cs *consumerService) extract(document *entity.Document) (string, error) {
	if document.SourceKind == entity.SourceKindURL {
		return cs.urlFetcher.Fetch(document.SourceRef)
	}
	return cs.extractor.ExtractBytes(document.RawSource, document.SourceRef)
}

func (cs *consumerService) finishSession(session *entity.Session) {
	if err := cs.sessionService.Transition(session, entity.SessionStateReadyForChat); err != nil {
		// a session another document already failed stays failed
		cs.logger.Warn("service.consumer", "session left in its current state after ingestion", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}
	cs.sessionRepo.Save(session)
}

func (cs *consumerService) failSession(session *entity.Session, reason string) {
	// the error edge is legal from every state
	_ = cs.sessionService.Transition(session, entity.SessionStateError)
	cs.sessionRepo.Save(session)
	cs.logger.Error("service.consumer", "session moved to error state", map[string]interface{}{
		"session_id": session.Id.String(),
		"reason":     reason,
	})
}

func extractionErrorCode(err error) string {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, extract.ErrEmptySource):
		return "empty_source"
	case errors.Is(err, extract.ErrOversizeSource):
		return "source_too_large"
	case errors.Is(err, extract.ErrFetch):
		return "fetch_failed"
	default:
		return "extraction_failed"
	}
}
