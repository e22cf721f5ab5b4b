package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valislegal/valis/internal/domain/activity"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	entry1 := &activity.ActivityEntry{
		ProjectID:   "p1",
		Status:      activity.StatusCreated,
		Description: "Progetto creato",
	}
	entry2 := &activity.ActivityEntry{
		ProjectID:   "p1",
		Status:      activity.StatusUploaded,
		Description: "Documento caricato",
	}

	require.NoError(t, repo.Log(ctx, "tenant1", entry1))
	require.NoError(t, repo.Log(ctx, "tenant1", entry2))
	require.Greater(t, entry2.ID, entry1.ID)
	require.Equal(t, "tenant1", entry1.TenantID)
	require.False(t, entry1.CreatedAt.IsZero())

	entries, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, entry2.Status, entries[0].Status)
	require.Equal(t, entry1.Status, entries[1].Status)
	require.Nil(t, entries[0].DocumentID)
}

func TestActivityRepository_FiltersAndTenantIsolation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	docID := "d1"
	entry := &activity.ActivityEntry{
		ProjectID:   "p1",
		DocumentID:  &docID,
		Status:      activity.StatusEdited,
		Description: "Documento modificato",
	}
	require.NoError(t, repo.Log(ctx, "tenant1", entry))
	require.NoError(t, repo.Log(ctx, "tenant1", &activity.ActivityEntry{Status: activity.StatusCreated, Description: "Raccolta creata"}))
	require.NoError(t, repo.Log(ctx, "tenant2", &activity.ActivityEntry{ProjectID: "p1", Status: activity.StatusEdited, Description: "Altro"}))

	entries, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{DocumentID: &docID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "d1", *entries[0].DocumentID)

	status := activity.StatusEdited
	entries, err = repo.List(ctx, "tenant1", activity.ListActivityOptions{Status: &status})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = repo.List(ctx, "tenant2", activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Altro", entries[0].Description)
}

func TestActivityRepository_Pagination(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	repo := NewActivityRepository(db)
	for _, desc := range []string{"uno", "due", "tre"} {
		require.NoError(t, repo.Log(ctx, "tenant1", &activity.ActivityEntry{Status: activity.StatusCreated, Description: desc}))
	}

	entries, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "tre", entries[0].Description)

	// offset without a limit
	entries, err = repo.List(ctx, "tenant1", activity.ListActivityOptions{Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "due", entries[0].Description)
}
