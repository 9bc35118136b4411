package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-session-be/internal/dto"
	"doc-session-be/internal/entity"
	"doc-session-be/internal/pkg/apperror"
)

func TestCreateSessionDefaultsAndCollection(t *testing.T) {
	f := newFixture()

	session, err := f.sessionService.Create(context.Background(), &dto.CreateSessionRequest{})
	require.NoError(t, err)

	assert.Equal(t, string(entity.SessionStateReadyForUpload), session.State)
	assert.Equal(t, "en", session.Language)
	assert.InDelta(t, 0.35, session.SimilarityThreshold, 1e-9)
	assert.Equal(t, f.clock.Add(30*time.Minute), session.ExpiresAt)

	stored, found := f.sessionRepo.Get(session.Id)
	require.True(t, found)
	assert.True(t, f.store.Exists(stored.CollectionName))
	assert.Equal(t, entity.CollectionNameFor(session.Id), stored.CollectionName)
}

func TestCreateSessionRejectsInvalidThreshold(t *testing.T) {
	f := newFixture()

	_, err := f.sessionService.Create(context.Background(), &dto.CreateSessionRequest{SimilarityThreshold: 1.5})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestResolveRefreshesActivityWindow(t *testing.T) {
	f := newFixture()
	created := f.createSession()

	f.advance(10 * time.Minute)
	session, err := f.sessionService.Resolve(context.Background(), created.Id)
	require.NoError(t, err)

	assert.Equal(t, f.clock, session.LastActivityAt)
	assert.Equal(t, f.clock.Add(30*time.Minute), session.ExpiresAt)
}

func TestExpiredSessionIsLazilyRemoved(t *testing.T) {
	f := newFixture()
	created := f.createSession()
	collection := entity.CollectionNameFor(created.Id)

	f.advance(31 * time.Minute)

	_, err := f.sessionService.Get(context.Background(), created.Id)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err), "expired looks identical to never-existed")

	_, found := f.sessionRepo.Get(created.Id)
	assert.False(t, found, "expired session record removed")
	assert.False(t, f.store.Exists(collection), "collection reclaimed")
}

func TestConcurrentResolvesShareOneSession(t *testing.T) {
	f := newFixture()
	created := f.createSession()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_, err := f.sessionService.Resolve(context.Background(), created.Id)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	session, found := f.sessionRepo.Get(created.Id)
	require.True(t, found)
	assert.Equal(t, f.clock.Add(30*time.Minute), session.ExpiresAt)
}

func TestConcurrentCounterAndActivityUpdates(t *testing.T) {
	f := newFixture()
	created := f.createSession()
	session, found := f.sessionRepo.Get(created.Id)
	require.True(t, found)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				f.sessionService.RecordIngest(session, 3)
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := f.sessionService.Resolve(context.Background(), created.Id)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, session.DocumentCount, "no increment lost")
	assert.Equal(t, 1200, session.VectorCount)
}

func TestTransitionGuardsInvalidEdges(t *testing.T) {
	f := newFixture()
	session := &entity.Session{State: entity.SessionStateReadyForUpload}

	require.NoError(t, f.sessionService.Transition(session, entity.SessionStateProcessing))
	assert.Equal(t, entity.SessionStateProcessing, session.State)

	err := f.sessionService.Transition(session, entity.SessionStateChatting)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
	assert.Equal(t, entity.SessionStateProcessing, session.State, "state unchanged on rejection")

	// error state is reachable from anywhere
	require.NoError(t, f.sessionService.Transition(session, entity.SessionStateError))
	assert.Equal(t, entity.SessionStateError, session.State)
}

func TestTransitionLogsTheEdge(t *testing.T) {
	f := newFixture()
	created := f.createSession()
	session, found := f.sessionRepo.Get(created.Id)
	require.True(t, found)

	require.NoError(t, f.sessionService.Transition(session, entity.SessionStateProcessing))

	entries := f.logs.byMessage("session state changed")
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, string(entity.SessionStateReadyForUpload), last.details["from"])
	assert.Equal(t, string(entity.SessionStateProcessing), last.details["to"])

	// a same-state transition is a no-op and logs nothing
	require.NoError(t, f.sessionService.Transition(session, entity.SessionStateProcessing))
	assert.Len(t, f.logs.byMessage("session state changed"), len(entries))
}

func TestCloseTearsDownEverything(t *testing.T) {
	f := newFixture()
	created := f.createSession()
	collection := entity.CollectionNameFor(created.Id)

	f.memStore.ForSession(created.Id).Add(ragmemoryExchange("q", "a"))
	f.tracker.Record(created.Id, entity.ResponseTypeAnswered, 1, 10, 5)

	require.NoError(t, f.sessionService.Close(context.Background(), created.Id))

	_, found := f.sessionRepo.Get(created.Id)
	assert.False(t, found)
	assert.False(t, f.store.Exists(collection))
	assert.Equal(t, 0, f.memStore.ForSession(created.Id).Len())
	assert.Equal(t, 0, f.tracker.Snapshot(created.Id).TotalQueries)

	// closing again reports not found
	err := f.sessionService.Close(context.Background(), created.Id)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestRestartKeepsIdentityDropsContent(t *testing.T) {
	f := newFixture()
	created := f.createSession()

	stored, _ := f.sessionRepo.Get(created.Id)
	stored.State = entity.SessionStateReadyForChat
	stored.DocumentCount = 2
	stored.VectorCount = 40
	f.documentRepo.Save(&entity.Document{Id: newUUID(), SessionId: created.Id})
	f.tracker.Record(created.Id, entity.ResponseTypeAnswered, 1, 10, 5)

	restarted, err := f.sessionService.Restart(context.Background(), created.Id)
	require.NoError(t, err)

	assert.Equal(t, created.Id, restarted.Id)
	assert.Equal(t, string(entity.SessionStateReadyForUpload), restarted.State)
	assert.Equal(t, 0, restarted.DocumentCount)
	assert.Equal(t, 0, restarted.VectorCount)
	assert.Empty(t, f.documentRepo.ListBySession(created.Id))
	assert.Equal(t, 0, f.tracker.Snapshot(created.Id).TotalQueries)
	assert.True(t, f.store.Exists(entity.CollectionNameFor(created.Id)), "fresh collection in place")
}

func TestUpdateLanguageAndPrompt(t *testing.T) {
	f := newFixture()
	created := f.createSession()

	require.NoError(t, f.sessionService.UpdateLanguage(context.Background(), created.Id, "de"))
	require.NoError(t, f.sessionService.UpdatePrompt(context.Background(), created.Id, "Antworte als {language}: {context} {query}"))

	stored, _ := f.sessionRepo.Get(created.Id)
	assert.Equal(t, "de", stored.Language)
	assert.Contains(t, stored.CustomPrompt, "{context}")

	err := f.sessionService.UpdateLanguage(context.Background(), created.Id, "")
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}
