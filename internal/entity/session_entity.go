package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionState is the lifecycle state of a workspace session.
type SessionState string

const (
	SessionStateInitializing   SessionState = "INITIALIZING"
	SessionStateReadyForUpload SessionState = "READY_FOR_UPLOAD"
	SessionStateProcessing     SessionState = "PROCESSING"
	SessionStateReadyForChat   SessionState = "READY_FOR_CHAT"
	SessionStateChatting       SessionState = "CHATTING"
	SessionStateError          SessionState = "ERROR"
)

// Session is an isolated, time-limited workspace. It owns one vector
// collection and is removed on explicit close, restart or TTL expiry.
type Session struct {
	Id                  uuid.UUID
	State               SessionState
	Language            string
	SimilarityThreshold float64
	CustomPrompt        string
	CollectionName      string
	DocumentCount       int
	VectorCount         int
	ApiKey              string // optional user-supplied credential

	CreatedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
}

// Expired reports whether the session has outlived its TTL window.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Touch refreshes the activity window so that ExpiresAt = LastActivityAt + ttl.
func (s *Session) Touch(now time.Time, ttl time.Duration) {
	s.LastActivityAt = now
	s.ExpiresAt = now.Add(ttl)
}

// CollectionNameFor derives the vector collection name for a session id.
// Deterministic so the collection can be recomputed from the id alone.
func CollectionNameFor(id uuid.UUID) string {
	return "session_" + strings.ReplaceAll(id.String(), "-", "")
}
