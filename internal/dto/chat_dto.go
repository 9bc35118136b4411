package dto

import (
	"time"

	"github.com/google/uuid"
)

type QueryRequest struct {
	Query string `json:"query" validate:"required"`
}

type EvidenceItem struct {
	DocumentId uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
	SourceRef  string    `json:"source_ref"`
	Score      float32   `json:"score"`
}

type QueryResponse struct {
	Answer       string         `json:"answer"`
	ResponseType string         `json:"response_type"`
	Evidence     []EvidenceItem `json:"evidence"`
	InputTokens  int            `json:"input_tokens"`
	OutputTokens int            `json:"output_tokens"`
	TotalTokens  int            `json:"total_tokens"`
}

type HistoryItem struct {
	Query        string    `json:"query"`
	Answer       string    `json:"answer"`
	ResponseType string    `json:"response_type"`
	CreatedAt    time.Time `json:"created_at"`
}

type SessionMetricsResponse struct {
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
