package metrics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"doc-session-be/internal/entity"
)

func TestSnapshotZeroForUnknownSession(t *testing.T) {
	tracker := NewTracker()

	snap := tracker.Snapshot(uuid.New())
	assert.Equal(t, Snapshot{}, snap)
	assert.Equal(t, 0.0, snap.UnansweredRatio)
}

func TestRecordAccumulatesCounters(t *testing.T) {
	tracker := NewTracker()
	sessionId := uuid.New()

	tracker.Record(sessionId, entity.ResponseTypeAnswered, 5, 100, 40)
	tracker.Record(sessionId, entity.ResponseTypeAnswered, 3, 80, 20)
	tracker.Record(sessionId, entity.ResponseTypeCannotAnswer, 0, 30, 10)
	tracker.Record(sessionId, entity.ResponseTypeCannotAnswer, 0, 30, 10)

	snap := tracker.Snapshot(sessionId)
	assert.Equal(t, 4, snap.TotalQueries)
	assert.Equal(t, 2, snap.AnsweredCount)
	assert.Equal(t, 2, snap.CannotAnswer)
	assert.InDelta(t, 0.5, snap.UnansweredRatio, 1e-9)
	assert.InDelta(t, 2.0, snap.AvgChunks, 1e-9)
	assert.Equal(t, 240, snap.InputTokens)
	assert.Equal(t, 80, snap.OutputTokens)
	assert.Equal(t, 320, snap.TotalTokens)
	assert.InDelta(t, 80.0, snap.AvgTokensPerQuery, 1e-9)
}

func TestAvgTokensTimesQueriesMatchesTotal(t *testing.T) {
	tracker := NewTracker()
	sessionId := uuid.New()

	usages := [][2]int{{137, 41}, {64, 12}, {301, 97}, {88, 0}, {19, 230}}
	for _, usage := range usages {
		tracker.Record(sessionId, entity.ResponseTypeAnswered, 3, usage[0], usage[1])
	}

	snap := tracker.Snapshot(sessionId)
	assert.InDelta(t, float64(snap.TotalTokens), snap.AvgTokensPerQuery*float64(snap.TotalQueries), 1e-9)
}

func TestSessionsAreIndependentAndDroppable(t *testing.T) {
	tracker := NewTracker()
	sessionA := uuid.New()
	sessionB := uuid.New()

	tracker.Record(sessionA, entity.ResponseTypeAnswered, 2, 10, 5)

	assert.Equal(t, 1, tracker.Snapshot(sessionA).TotalQueries)
	assert.Equal(t, 0, tracker.Snapshot(sessionB).TotalQueries)

	tracker.Drop(sessionA)
	assert.Equal(t, Snapshot{}, tracker.Snapshot(sessionA))
}
