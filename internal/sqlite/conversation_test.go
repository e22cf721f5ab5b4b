package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/repository"
)

func TestMessageRepository_AppendList(t *testing.T) {
	db := NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	agent := "lexa"
	docID := "d1"
	msgs := []*conversation.Message{
		{ID: "m1", ProjectID: "p1", Role: conversation.RoleUser, Author: "Avv. Rossi", Text: "@lexa riassumi"},
		{ID: "m2", ProjectID: "p1", Role: conversation.RoleAgent, AgentID: &agent, Author: "Lexa", Text: "Ecco la bozza", DocumentID: &docID},
		{ID: "m3", ProjectID: "p2", Role: conversation.RoleUser, Author: "Avv. Rossi", Text: "altro"},
	}
	for _, m := range msgs {
		require.NoError(t, repo.Append(ctx, "tenant1", m))
	}
	require.Equal(t, repository.ErrConflict, repo.Append(ctx, "tenant1", msgs[0]))

	got, err := repo.List(ctx, "tenant1", conversation.ListMessagesOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "m1", got[0].ID)
	require.Nil(t, got[0].AgentID)
	require.Equal(t, "lexa", *got[1].AgentID)
	require.Equal(t, "d1", *got[1].DocumentID)

	got, err = repo.List(ctx, "tenant1", conversation.ListMessagesOptions{Offset: 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "m3", got[0].ID)

	got, err = repo.List(ctx, "tenant2", conversation.ListMessagesOptions{})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDraftRepository_SaveGetDelete(t *testing.T) {
	db := NewTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "tenant1", "p1")
	require.Equal(t, repository.ErrNotFound, err)

	draft := &conversation.Draft{ProjectID: "p1", Prompt: "bozza", AgentIDs: []string{"lexa", "iuris"}}
	require.NoError(t, repo.Save(ctx, "tenant1", draft))
	require.False(t, draft.UpdatedAt.IsZero())

	got, err := repo.Get(ctx, "tenant1", "p1")
	require.NoError(t, err)
	require.Equal(t, "bozza", got.Prompt)
	require.Equal(t, []string{"lexa", "iuris"}, got.AgentIDs)

	draft.Prompt = "seconda"
	draft.AgentIDs = nil
	require.NoError(t, repo.Save(ctx, "tenant1", draft))

	got, err = repo.Get(ctx, "tenant1", "p1")
	require.NoError(t, err)
	require.Equal(t, "seconda", got.Prompt)
	require.Equal(t, []string{}, got.AgentIDs)

	_, err = repo.Get(ctx, "tenant2", "p1")
	require.Equal(t, repository.ErrNotFound, err)

	require.NoError(t, repo.Delete(ctx, "tenant1", "p1"))
	require.Equal(t, repository.ErrNotFound, repo.Delete(ctx, "tenant1", "p1"))
}
