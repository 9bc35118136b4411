package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadTextRequest struct {
	Text string `json:"text" validate:"required"`
	Name string `json:"name"`
}

type UploadURLRequest struct {
	Url string `json:"url" validate:"required"`
}

type UploadDocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	SessionId uuid.UUID `json:"session_id"`
	SourceRef string    `json:"source_ref"`
	Accepted  bool      `json:"accepted"`
}

type DocumentStatusResponse struct {
	Id                uuid.UUID  `json:"id"`
	SourceKind        string     `json:"source_kind"`
	SourceRef         string     `json:"source_ref"`
	ExtractionStatus  string     `json:"extraction_status"`
	ModerationStatus  string     `json:"moderation_status"`
	BlockedCategories []string   `json:"blocked_categories,omitempty"`
	ChunkCount        int        `json:"chunk_count"`
	IndexedChunkCount int        `json:"indexed_chunk_count"`
	SkippedChunkCount int        `json:"skipped_chunk_count"`
	ErrorCode         string     `json:"error_code,omitempty"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at"`
}

type SummaryResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Summary   string    `json:"summary"`
	Truncated bool      `json:"truncated"`
}
