package metrics

import (
	"sync"

	"github.com/google/uuid"

	"doc-session-be/internal/entity"
)

// Snapshot is a point-in-time view of one session's query statistics.
type Snapshot struct {
	TotalQueries      int     `json:"total_queries"`
	AnsweredCount     int     `json:"answered_count"`
	CannotAnswer      int     `json:"cannot_answer_count"`
	UnansweredRatio   float64 `json:"unanswered_ratio"`
	AvgChunks         float64 `json:"avg_chunks_retrieved"`
	AvgTokensPerQuery float64 `json:"avg_tokens_per_query"`
	InputTokens       int     `json:"input_tokens"`
	OutputTokens      int     `json:"output_tokens"`
	TotalTokens       int     `json:"total_tokens"`
}

type sessionStats struct {
	totalQueries int
	cannotAnswer int
	chunkSum     int
	inputTokens  int
	outputTokens int
}

// Tracker keeps cumulative per-session counters. Counters only move after
// a query fully completes, so a failed generation never skews the ratio.
type Tracker struct {
	mu    sync.Mutex
	stats map[uuid.UUID]*sessionStats
}

func NewTracker() *Tracker {
	return &Tracker{
		stats: make(map[uuid.UUID]*sessionStats),
	}
}

// Record adds one completed query to the session's counters.
func (t *Tracker) Record(sessionId uuid.UUID, responseType entity.ResponseType, chunksRetrieved, inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.stats[sessionId]
	if !ok {
		s = &sessionStats{}
		t.stats[sessionId] = s
	}

	s.totalQueries++
	if responseType == entity.ResponseTypeCannotAnswer {
		s.cannotAnswer++
	}
	s.chunkSum += chunksRetrieved
	s.inputTokens += inputTokens
	s.outputTokens += outputTokens
}

// Snapshot returns the session's current statistics. A session that never
// queried yields the zero snapshot.
func (t *Tracker) Snapshot(sessionId uuid.UUID) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.stats[sessionId]
	if !ok || s.totalQueries == 0 {
		return Snapshot{}
	}

	totalTokens := s.inputTokens + s.outputTokens
	return Snapshot{
		TotalQueries:      s.totalQueries,
		AnsweredCount:     s.totalQueries - s.cannotAnswer,
		CannotAnswer:      s.cannotAnswer,
		UnansweredRatio:   float64(s.cannotAnswer) / float64(s.totalQueries),
		AvgChunks:         float64(s.chunkSum) / float64(s.totalQueries),
		AvgTokensPerQuery: float64(totalTokens) / float64(s.totalQueries),
		InputTokens:       s.inputTokens,
		OutputTokens:      s.outputTokens,
		TotalTokens:       totalTokens,
	}
}

func (t *Tracker) Drop(sessionId uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.stats, sessionId)
}
