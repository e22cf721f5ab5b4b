package collection_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valislegal/valis/internal/domain/collection"
	"github.com/valislegal/valis/internal/repository"
	"github.com/valislegal/valis/internal/repository/mocks"
)

func TestCollectionService_Create(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CollectionRepository{}
	acts := &mocks.ActivityRepository{}
	repo.On("Create", ctx, "t1", mock.MatchedBy(func(c *collection.Collection) bool {
		return c.Name == "Giurisprudenza" && c.Tag == "cassazione"
	})).Return(nil)
	acts.On("Log", ctx, "t1", mock.Anything).Return(nil)

	svc := collection.NewService(repo, acts, nil)
	col, err := svc.Create(ctx, "t1", collection.CreateRequest{Name: "Giurisprudenza ", Tag: " cassazione"})
	require.NoError(t, err)
	require.NotEmpty(t, col.ID)
	require.Zero(t, col.DocumentCount)
	repo.AssertExpectations(t)
}

func TestCollectionService_Create_RequiresName(t *testing.T) {
	svc := collection.NewService(&mocks.CollectionRepository{}, nil, nil)
	_, err := svc.Create(context.Background(), "t1", collection.CreateRequest{})
	require.ErrorIs(t, err, collection.ErrInvalidInput)
}

func TestCollectionService_Update(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CollectionRepository{}
	repo.On("Get", ctx, "t1", "c1").Return(&collection.Collection{ID: "c1", Name: "A", Tag: "x"}, nil)
	repo.On("Update", ctx, "t1", mock.MatchedBy(func(c *collection.Collection) bool {
		return c.Name == "A" && c.Tag == "y"
	})).Return(nil)

	svc := collection.NewService(repo, nil, nil)
	tag := "y"
	col, err := svc.Update(ctx, "t1", collection.UpdateRequest{ID: "c1", Tag: &tag})
	require.NoError(t, err)
	require.Equal(t, "y", col.Tag)
}

func TestCollectionService_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CollectionRepository{}
	repo.On("Get", ctx, "t1", "c1").Return(nil, repository.ErrNotFound)

	svc := collection.NewService(repo, nil, nil)
	require.ErrorIs(t, svc.Delete(ctx, "t1", "c1"), collection.ErrCollectionNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestCollectionService_Delete_ActivityFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CollectionRepository{}
	acts := &mocks.ActivityRepository{}
	repo.On("Get", ctx, "t1", "c1").Return(&collection.Collection{ID: "c1", Name: "A"}, nil)
	repo.On("Delete", ctx, "t1", "c1").Return(nil)
	acts.On("Log", ctx, "t1", mock.Anything).Return(errors.New("disk full"))

	svc := collection.NewService(repo, acts, nil)
	require.NoError(t, svc.Delete(ctx, "t1", "c1"))
}
