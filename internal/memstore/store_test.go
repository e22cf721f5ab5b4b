package memstore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/domain/collection"
	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/domain/project"
	"github.com/valislegal/valis/internal/memstore"
)

type services struct {
	projects    *project.Service
	collections *collection.Service
	documents   *document.Service
	activity    *activity.Service
}

func newServices() (*memstore.Store, services) {
	store := memstore.New()
	repos := store.Repositories()
	return store, services{
		projects:    project.NewService(repos.Projects, repos.Activity, nil),
		collections: collection.NewService(repos.Collections, repos.Activity, nil),
		documents:   document.NewService(repos.Documents, repos.Projects, repos.Activity, nil),
		activity:    activity.NewService(repos.Activity, nil),
	}
}

func TestStore_DocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	_, svc := newServices()

	proj, err := svc.projects.Create(ctx, "t1", project.CreateRequest{Name: "Rossi"})
	require.NoError(t, err)
	col, err := svc.collections.Create(ctx, "t1", collection.CreateRequest{Name: "Atti"})
	require.NoError(t, err)

	docs, err := svc.documents.Upload(ctx, "t1", document.UploadRequest{
		ProjectID:    proj.ID,
		CollectionID: &col.ID,
		Files:        []document.File{{Name: "citazione.html", Data: []byte("<p>Cita</p>")}},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)

	got, err := svc.projects.Get(ctx, "t1", proj.ID)
	require.NoError(t, err)
	require.Equal(t, []string{docs[0].ID}, got.DocumentIDs)

	c, err := svc.collections.Get(ctx, "t1", col.ID)
	require.NoError(t, err)
	require.Equal(t, 1, c.DocumentCount)

	require.NoError(t, svc.documents.Delete(ctx, "t1", docs[0].ID))
	got, err = svc.projects.Get(ctx, "t1", proj.ID)
	require.NoError(t, err)
	require.Empty(t, got.DocumentIDs)

	entries, err := svc.activity.GetRecentActivity(ctx, "t1", activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Equal(t, activity.StatusDeleted, entries[0].Status)
	require.Greater(t, entries[0].ID, entries[1].ID)
}

func TestStore_SelectionClearedOnDelete(t *testing.T) {
	ctx := context.Background()
	_, svc := newServices()

	proj, err := svc.projects.Create(ctx, "t1", project.CreateRequest{Name: "Bianchi"})
	require.NoError(t, err)
	require.NoError(t, svc.projects.Select(ctx, "t1", proj.ID))

	list, err := svc.projects.List(ctx, "t1")
	require.NoError(t, err)
	require.True(t, list[0].Selected)

	require.NoError(t, svc.projects.Delete(ctx, "t1", proj.ID))
	_, err = svc.projects.Selected(ctx, "t1")
	require.ErrorIs(t, err, project.ErrNoSelection)
}

func TestStore_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	_, svc := newServices()

	proj, err := svc.projects.Create(ctx, "t1", project.CreateRequest{Name: "Privato"})
	require.NoError(t, err)

	_, err = svc.projects.Get(ctx, "t2", proj.ID)
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	list, err := svc.projects.List(ctx, "t2")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestStore_AttachUnknownDocument(t *testing.T) {
	ctx := context.Background()
	_, svc := newServices()

	proj, err := svc.projects.Create(ctx, "t1", project.CreateRequest{Name: "X"})
	require.NoError(t, err)
	_, err = svc.projects.AddDocument(ctx, "t1", proj.ID, "missing")
	require.ErrorIs(t, err, project.ErrDocumentNotFound)
}

func TestStore_ListDocumentsFilters(t *testing.T) {
	ctx := context.Background()
	_, svc := newServices()

	proj, err := svc.projects.Create(ctx, "t1", project.CreateRequest{Name: "X"})
	require.NoError(t, err)
	_, err = svc.documents.Create(ctx, "t1", document.CreateRequest{ProjectID: proj.ID, Name: "in"})
	require.NoError(t, err)
	_, err = svc.documents.Create(ctx, "t1", document.CreateRequest{Name: "out"})
	require.NoError(t, err)

	refs, err := svc.documents.List(ctx, "t1", document.ListDocumentsOptions{ProjectID: proj.ID})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.Equal(t, "in", refs[0].Name)

	refs, err = svc.documents.List(ctx, "t1", document.ListDocumentsOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, refs, 1)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store, svc := newServices()

	proj, err := svc.projects.Create(ctx, "t1", project.CreateRequest{Name: "Condiviso"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.documents.Create(ctx, "t1", document.CreateRequest{ProjectID: proj.ID, Name: fmt.Sprintf("doc-%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	state := store.Snapshot("t1")
	require.Len(t, state.Documents, 20)
	p, ok := state.Project(proj.ID)
	require.True(t, ok)
	require.Len(t, p.DocumentIDs, 20)
	// one activity entry for the project, one per document
	require.EqualValues(t, 21, state.LastActivityID)
}
