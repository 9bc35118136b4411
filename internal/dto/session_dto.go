package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Language            string  `json:"language"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	CustomPrompt        string  `json:"custom_prompt"`
	ApiKey              string  `json:"api_key"`
}

type SessionResponse struct {
	Id                  uuid.UUID `json:"id"`
	State               string    `json:"state"`
	Language            string    `json:"language"`
	SimilarityThreshold float64   `json:"similarity_threshold"`
	DocumentCount       int       `json:"document_count"`
	VectorCount         int       `json:"vector_count"`
	CreatedAt           time.Time `json:"created_at"`
	LastActivityAt      time.Time `json:"last_activity_at"`
	ExpiresAt           time.Time `json:"expires_at"`
}

type UpdateLanguageRequest struct {
	Language string `json:"language" validate:"required"`
}

type UpdatePromptRequest struct {
	CustomPrompt string `json:"custom_prompt"`
}

// PublishIngestMessage is the payload carried on the ingest topic from
// upload to the background consumer.
type PublishIngestMessage struct {
	SessionId  uuid.UUID `json:"session_id"`
	DocumentId uuid.UUID `json:"document_id"`
}
