package entity

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind identifies where a document's content came from.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindText SourceKind = "text"
	SourceKindURL  SourceKind = "url"
)

// Extraction and moderation statuses advance as the ingestion pipeline
// moves a document through its stages.
type ExtractionStatus string

const (
	ExtractionStatusPending   ExtractionStatus = "PENDING"
	ExtractionStatusCompleted ExtractionStatus = "COMPLETED"
	ExtractionStatusFailed    ExtractionStatus = "FAILED"
)

type ModerationStatus string

const (
	ModerationStatusPending  ModerationStatus = "PENDING"
	ModerationStatusApproved ModerationStatus = "APPROVED"
	ModerationStatusBlocked  ModerationStatus = "BLOCKED"
)

// Document is one uploaded source within a session. It is mutated in place
// by the ingestion pipeline only; each stage has an explicit transition
// method below so valid status flows stay enumerable.
type Document struct {
	Id        uuid.UUID
	SessionId uuid.UUID

	SourceKind SourceKind
	SourceRef  string // filename or URL

	// RawSource holds the uploaded bytes (or text) until extraction runs.
	// RawText holds the extracted text until chunking runs. Both are
	// transient and cleared once the next stage has consumed them.
	RawSource []byte
	RawText   string

	ExtractionStatus  ExtractionStatus
	ModerationStatus  ModerationStatus
	BlockedCategories []string

	// SummarySource keeps a bounded prefix of the extracted text so the
	// summary path still has material after RawText is released.
	SummarySource    string
	SummaryTruncated bool

	ChunkCount        int
	IndexedChunkCount int
	SkippedChunkCount int

	ErrorCode    string
	ErrorMessage string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (d *Document) touch() {
	now := time.Now()
	d.UpdatedAt = &now
}

// MarkExtracted records successful extraction and releases the raw source.
func (d *Document) MarkExtracted(text string) {
	d.ExtractionStatus = ExtractionStatusCompleted
	d.RawText = text
	d.RawSource = nil
	d.touch()
}

// MarkExtractionFailed terminates the pipeline at the extract stage.
func (d *Document) MarkExtractionFailed(code, message string) {
	d.ExtractionStatus = ExtractionStatusFailed
	d.RawSource = nil
	d.ErrorCode = code
	d.ErrorMessage = message
	d.touch()
}

func (d *Document) MarkModerationApproved() {
	d.ModerationStatus = ModerationStatusApproved
	d.touch()
}

// MarkModerationBlocked terminates the pipeline before chunking ever runs.
func (d *Document) MarkModerationBlocked(categories []string, reason string) {
	d.ModerationStatus = ModerationStatusBlocked
	d.BlockedCategories = categories
	d.ErrorCode = "moderation_blocked"
	d.ErrorMessage = reason
	d.RawText = ""
	d.touch()
}

// MarkChunked records the chunk count and releases the extracted text.
func (d *Document) MarkChunked(chunkCount int) {
	d.ChunkCount = chunkCount
	d.RawText = ""
	d.touch()
}

// MarkIndexed records how many chunks made it into the vector collection.
// skipped is the number of chunks dropped by per-chunk embedding failures.
func (d *Document) MarkIndexed(indexed, skipped int) {
	d.IndexedChunkCount = indexed
	d.SkippedChunkCount = skipped
	d.touch()
}

// MarkFailed terminates the pipeline with a stage-agnostic error.
func (d *Document) MarkFailed(code, message string) {
	d.ErrorCode = code
	d.ErrorMessage = message
	d.touch()
}
