package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-session-be/internal/dto"
	"doc-session-be/internal/entity"
	"doc-session-be/internal/pkg/apperror"
	"doc-session-be/pkg/llm"
)

// readySession creates a session with one ingested document so queries
// have evidence to retrieve.
func readySession(t *testing.T, f *fixture) *entity.Session {
	t.Helper()
	created := f.createSession()
	content := strings.Repeat("The rollout pauses automatically when error rates spike. ", 20)
	uploadAndIngest(t, f, created.Id, "rollout.txt", content)
	session, found := f.sessionRepo.Get(created.Id)
	require.True(t, found)
	require.Equal(t, entity.SessionStateReadyForChat, session.State)
	return session
}

func TestQueryAnsweredWithEvidence(t *testing.T) {
	f := newFixture()
	session := readySession(t, f)

	res, err := f.chatService.Query(context.Background(), session.Id, &dto.QueryRequest{Query: "When does the rollout pause?"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.ResponseTypeAnswered), res.ResponseType)
	assert.Equal(t, "grounded answer", res.Answer)
	assert.NotEmpty(t, res.Evidence)
	assert.Equal(t, "rollout.txt", res.Evidence[0].SourceRef)
	assert.Equal(t, 125, res.TotalTokens)
	assert.Equal(t, entity.SessionStateChatting, session.State)

	// metrics and memory moved exactly once
	snap := f.tracker.Snapshot(session.Id)
	assert.Equal(t, 1, snap.TotalQueries)
	assert.Equal(t, 0, snap.CannotAnswer)
	assert.Equal(t, 125, snap.TotalTokens)
	assert.Equal(t, 1, f.memStore.ForSession(session.Id).Len())
}

func TestQueryDeclinesWithoutEvidenceAndSkipsModel(t *testing.T) {
	f := newFixture()
	created := f.createSession()
	session, _ := f.sessionRepo.Get(created.Id)
	session.State = entity.SessionStateReadyForChat

	res, err := f.chatService.Query(context.Background(), session.Id, &dto.QueryRequest{Query: "Anything indexed?"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.ResponseTypeCannotAnswer), res.ResponseType)
	assert.Contains(t, res.Answer, "could not find")
	assert.Empty(t, res.Evidence)
	assert.Zero(t, res.TotalTokens)
	assert.Equal(t, 0, f.model.calls, "no model call without evidence")

	snap := f.tracker.Snapshot(session.Id)
	assert.Equal(t, 1, snap.CannotAnswer)
	assert.InDelta(t, 1.0, snap.UnansweredRatio, 1e-9)
}

func TestQueryFailureLeavesMetricsAndMemoryUntouched(t *testing.T) {
	f := newFixture()
	session := readySession(t, f)
	f.model.failing = llm.ErrUnavailable

	_, err := f.chatService.Query(context.Background(), session.Id, &dto.QueryRequest{Query: "anything"})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeUpstreamTransient, apperror.CodeOf(err))

	assert.Equal(t, 0, f.tracker.Snapshot(session.Id).TotalQueries)
	assert.Equal(t, 0, f.memStore.ForSession(session.Id).Len())
}

func TestQueryRejectedInWrongState(t *testing.T) {
	f := newFixture()
	created := f.createSession() // READY_FOR_UPLOAD

	_, err := f.chatService.Query(context.Background(), created.Id, &dto.QueryRequest{Query: "too early"})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	_, err = f.chatService.Query(context.Background(), created.Id, &dto.QueryRequest{Query: "   "})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestHistoryAndClear(t *testing.T) {
	f := newFixture()
	session := readySession(t, f)

	for _, q := range []string{"first", "second", "third"} {
		_, err := f.chatService.Query(context.Background(), session.Id, &dto.QueryRequest{Query: q})
		require.NoError(t, err)
	}

	history, err := f.chatService.History(context.Background(), session.Id, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].Query)
	assert.Equal(t, "third", history[1].Query)

	require.NoError(t, f.chatService.ClearHistory(context.Background(), session.Id))
	history, err = f.chatService.History(context.Background(), session.Id, 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	// metrics survive a history clear
	assert.Equal(t, 3, f.tracker.Snapshot(session.Id).TotalQueries)
}

func TestMetricsEndpointShape(t *testing.T) {
	f := newFixture()
	session := readySession(t, f)

	_, err := f.chatService.Query(context.Background(), session.Id, &dto.QueryRequest{Query: "q"})
	require.NoError(t, err)

	m, err := f.chatService.Metrics(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalQueries)
	assert.Equal(t, 1, m.AnsweredCount)
	assert.Greater(t, m.AvgChunks, 0.0)
	assert.InDelta(t, float64(m.TotalTokens), m.AvgTokensPerQuery*float64(m.TotalQueries), 1e-9)
}

func TestQueryUsesSessionProviderKey(t *testing.T) {
	f := newFixture()
	created, err := f.sessionService.Create(context.Background(), &dto.CreateSessionRequest{ApiKey: "sk-session-key"})
	require.NoError(t, err)

	content := strings.Repeat("The backup job runs every six hours. ", 20)
	uploadAndIngest(t, f, created.Id, "backup.txt", content)

	_, err = f.chatService.Query(context.Background(), created.Id, &dto.QueryRequest{Query: "How often do backups run?"})
	require.NoError(t, err)
	assert.Equal(t, "sk-session-key", f.model.lastOptions.ApiKey, "session key overrides the configured credential")

	// sessions without a key leave the override unset
	g := newFixture()
	session := readySession(t, g)
	_, err = g.chatService.Query(context.Background(), session.Id, &dto.QueryRequest{Query: "q"})
	require.NoError(t, err)
	assert.Empty(t, g.model.lastOptions.ApiKey)
}

func TestSummaryUsesRetainedMaterial(t *testing.T) {
	f := newFixture()
	session := readySession(t, f)
	f.model.text = "a tidy summary"

	res, err := f.chatService.Summary(context.Background(), session.Id)
	require.NoError(t, err)
	assert.Equal(t, "a tidy summary", res.Summary)
	assert.Equal(t, session.Id, res.SessionId)
}

func TestSummaryWithoutMaterial(t *testing.T) {
	f := newFixture()
	created := f.createSession()

	_, err := f.chatService.Summary(context.Background(), created.Id)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}
