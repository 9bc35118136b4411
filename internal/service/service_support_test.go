package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"doc-session-be/internal/config"
	"doc-session-be/internal/dto"
	"doc-session-be/internal/pkg/logger"
	"doc-session-be/internal/repository/memory"
	"doc-session-be/pkg/chunker"
	"doc-session-be/pkg/embedding"
	"doc-session-be/pkg/extract"
	"doc-session-be/pkg/llm"
	"doc-session-be/pkg/moderation"
	ragmemory "doc-session-be/pkg/rag/memory"
	"doc-session-be/pkg/rag/metrics"
	"doc-session-be/pkg/rag/response"
	"doc-session-be/pkg/rag/search"
	"doc-session-be/pkg/vectorstore"
)

const testDimension = 3

// fakeEmbedder returns a fixed unit vector so every chunk and query land
// at similarity 1.0. failEvery > 0 fails each n-th call.
type fakeEmbedder struct {
	calls     int
	failEvery int
}

func (f *fakeEmbedder) Generate(_ string, _ string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.failEvery > 0 && f.calls%f.failEvery == 0 {
		return nil, errors.New("embedding provider unavailable")
	}
	res := &embedding.EmbeddingResponse{}
	res.Embedding.Values = []float32{1, 0, 0}
	return res, nil
}

// scriptedLLM returns canned completions, or an error when failing. The
// options of the most recent call are kept for inspection.
type scriptedLLM struct {
	calls       int
	failing     error
	text        string
	lastOptions llm.Options
}

func (s *scriptedLLM) Generate(_ context.Context, _ string, opts ...llm.Option) (*llm.Completion, error) {
	s.calls++
	s.lastOptions = llm.Options{}
	for _, opt := range opts {
		opt(&s.lastOptions)
	}
	if s.failing != nil {
		return nil, s.failing
	}
	return &llm.Completion{Text: s.text, InputTokens: 100, OutputTokens: 25}, nil
}

type capturingPublisher struct {
	payloads [][]byte
}

func (p *capturingPublisher) Publish(_ context.Context, payload []byte) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

type logEntry struct {
	level   string
	module  string
	message string
	details map[string]interface{}
}

// recordingLogger keeps every emitted entry so tests can assert on them.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, module, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, module: module, message: message, details: details})
}

func (l *recordingLogger) Debug(module, message string, details map[string]interface{}) {
	l.record("DEBUG", module, message, details)
}

func (l *recordingLogger) Info(module, message string, details map[string]interface{}) {
	l.record("INFO", module, message, details)
}

func (l *recordingLogger) Warn(module, message string, details map[string]interface{}) {
	l.record("WARN", module, message, details)
}

func (l *recordingLogger) Error(module, message string, details map[string]interface{}) {
	l.record("ERROR", module, message, details)
}

func (l *recordingLogger) Sync() error { return nil }

// byMessage returns every entry with the given message, oldest first.
func (l *recordingLogger) byMessage(message string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, entry := range l.entries {
		if entry.message == message {
			out = append(out, entry)
		}
	}
	return out
}

type fixture struct {
	sessionRepo  memory.ISessionRepository
	documentRepo memory.IDocumentRepository
	store        *vectorstore.ChromemStore
	memStore     *ragmemory.Store
	tracker      *metrics.Tracker
	embedder     *fakeEmbedder
	model        *scriptedLLM
	publisher    *capturingPublisher
	logs         *recordingLogger

	sessionService  ISessionService
	documentService IDocumentService
	consumer        *consumerService
	chatService     IChatService

	clock time.Time
}

func newFixture() *fixture {
	f := &fixture{
		sessionRepo:  memory.NewSessionRepository(),
		documentRepo: memory.NewDocumentRepository(),
		store:        vectorstore.NewChromemStore(),
		memStore:     ragmemory.NewStore(10),
		tracker:      metrics.NewTracker(),
		embedder:     &fakeEmbedder{},
		model:        &scriptedLLM{text: "grounded answer"},
		publisher:    &capturingPublisher{},
		logs:         &recordingLogger{},
		clock:        time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}

	var log logger.ILogger = f.logs
	sessionCfg := config.SessionConfig{TTL: 30 * time.Minute, ReapInterval: time.Minute, MemoryCapacity: 10}
	ragCfg := config.RagConfig{
		ChunkSize:         200,
		ChunkOverlap:      40,
		MinChunkLength:    5,
		TopK:              5,
		DefaultThreshold:  0.35,
		Temperature:       0.1,
		MaxOutputTokens:   256,
		MaxUploadBytes:    1 << 20,
		SummaryCharBudget: 500,
		SummaryMaxTokens:  128,
	}
	aiCfg := config.AIConfig{EmbeddingDimension: testDimension}

	f.sessionService = NewSessionService(
		f.sessionRepo, f.documentRepo, f.store, f.memStore, f.tracker,
		log, sessionCfg, ragCfg, aiCfg,
	)
	f.sessionService.(*sessionService).now = func() time.Time { return f.clock }

	f.documentService = NewDocumentService(f.sessionService, f.documentRepo, f.publisher, log, ragCfg.MaxUploadBytes)

	f.consumer = NewConsumerService(
		nil, "INGEST_DOCUMENT",
		f.sessionService,
		f.sessionRepo, f.documentRepo,
		extract.NewExtractor(),
		extract.NewURLFetcher(time.Second, 1<<20),
		moderation.NewPatternClassifier(),
		chunker.New(ragCfg.ChunkSize, ragCfg.ChunkOverlap, ragCfg.MinChunkLength),
		f.embedder,
		rate.NewLimiter(rate.Inf, 1),
		f.store,
		log,
		ragCfg.SummaryCharBudget,
	).(*consumerService)

	orchestrator := search.NewOrchestrator(f.embedder, f.store, log)
	generator := response.NewGeneratorWithBackOff(f.model, log, func() backoff.BackOff {
		return backoff.NewConstantBackOff(0)
	})
	f.chatService = NewChatService(
		f.sessionService, f.documentRepo, orchestrator, generator,
		f.memStore, f.tracker, log, ragCfg,
	)

	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func ragmemoryExchange(query, answer string) ragmemory.Exchange {
	return ragmemory.Exchange{Query: query, Answer: answer}
}

func newUUID() uuid.UUID {
	return uuid.New()
}

func (f *fixture) createSession() *dto.SessionResponse {
	session, err := f.sessionService.Create(context.Background(), &dto.CreateSessionRequest{})
	if err != nil {
		panic(err)
	}
	return session
}
