package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-session-be/internal/entity"
)

func TestSessionRepositorySaveGetDelete(t *testing.T) {
	repo := NewSessionRepository()
	session := &entity.Session{Id: uuid.New(), State: entity.SessionStateReadyForUpload}

	repo.Save(session)

	got, found := repo.Get(session.Id)
	require.True(t, found)
	assert.Equal(t, session.Id, got.Id)

	_, found = repo.Get(uuid.New())
	assert.False(t, found)

	repo.Delete(session.Id)
	_, found = repo.Get(session.Id)
	assert.False(t, found)
}

func TestSessionRepositoryList(t *testing.T) {
	repo := NewSessionRepository()
	assert.Empty(t, repo.List())

	repo.Save(&entity.Session{Id: uuid.New()})
	repo.Save(&entity.Session{Id: uuid.New()})

	assert.Len(t, repo.List(), 2)
}

func TestDocumentRepositoryScopedToSession(t *testing.T) {
	repo := NewDocumentRepository()
	sessionA := uuid.New()
	sessionB := uuid.New()

	base := time.Now()
	docs := []*entity.Document{
		{Id: uuid.New(), SessionId: sessionA, SourceRef: "second.txt", CreatedAt: base.Add(time.Second)},
		{Id: uuid.New(), SessionId: sessionA, SourceRef: "first.txt", CreatedAt: base},
		{Id: uuid.New(), SessionId: sessionB, SourceRef: "other.txt", CreatedAt: base},
	}
	for _, doc := range docs {
		repo.Save(doc)
	}

	listed := repo.ListBySession(sessionA)
	require.Len(t, listed, 2)
	assert.Equal(t, "first.txt", listed[0].SourceRef, "oldest first")
	assert.Equal(t, "second.txt", listed[1].SourceRef)

	got, found := repo.Get(docs[2].Id)
	require.True(t, found)
	assert.Equal(t, sessionB, got.SessionId)

	repo.DeleteBySession(sessionA)
	assert.Empty(t, repo.ListBySession(sessionA))
	assert.Len(t, repo.ListBySession(sessionB), 1)
}
