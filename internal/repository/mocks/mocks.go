package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/domain/collection"
	"github.com/valislegal/valis/internal/domain/conversation"
	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/domain/project"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, tenantID string, proj *project.Project) error {
	args := m.Called(ctx, tenantID, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, tenantID string) ([]project.ProjectSummary, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]project.ProjectSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, tenantID string, proj *project.Project) error {
	args := m.Called(ctx, tenantID, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *ProjectRepository) AttachDocument(ctx context.Context, tenantID, projectID, documentID string) error {
	args := m.Called(ctx, tenantID, projectID, documentID)
	return args.Error(0)
}

func (m *ProjectRepository) DetachDocument(ctx context.Context, tenantID, projectID, documentID string) error {
	args := m.Called(ctx, tenantID, projectID, documentID)
	return args.Error(0)
}

func (m *ProjectRepository) SetSelected(ctx context.Context, tenantID, projectID string) error {
	args := m.Called(ctx, tenantID, projectID)
	return args.Error(0)
}

func (m *ProjectRepository) GetSelected(ctx context.Context, tenantID string) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// CollectionRepository is a mock for collection.Repository.
type CollectionRepository struct {
	mock.Mock
}

func (m *CollectionRepository) Create(ctx context.Context, tenantID string, col *collection.Collection) error {
	args := m.Called(ctx, tenantID, col)
	return args.Error(0)
}

func (m *CollectionRepository) Get(ctx context.Context, tenantID, id string) (*collection.Collection, error) {
	args := m.Called(ctx, tenantID, id)
	if col, ok := args.Get(0).(*collection.Collection); ok {
		return col, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CollectionRepository) List(ctx context.Context, tenantID string) ([]collection.Collection, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]collection.Collection); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CollectionRepository) Update(ctx context.Context, tenantID string, col *collection.Collection) error {
	args := m.Called(ctx, tenantID, col)
	return args.Error(0)
}

func (m *CollectionRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// DocumentRepository is a mock for document.Repository.
type DocumentRepository struct {
	mock.Mock
}

func (m *DocumentRepository) Create(ctx context.Context, tenantID string, doc *document.Document) error {
	args := m.Called(ctx, tenantID, doc)
	return args.Error(0)
}

func (m *DocumentRepository) Get(ctx context.Context, tenantID, id string) (*document.Document, error) {
	args := m.Called(ctx, tenantID, id)
	if doc, ok := args.Get(0).(*document.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentRepository) Update(ctx context.Context, tenantID string, doc *document.Document) error {
	args := m.Called(ctx, tenantID, doc)
	return args.Error(0)
}

func (m *DocumentRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *DocumentRepository) List(ctx context.Context, tenantID string, opts document.ListDocumentsOptions) ([]document.DocumentRef, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]document.DocumentRef); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// MessageRepository is a mock for conversation.MessageRepository.
type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) Append(ctx context.Context, tenantID string, msg *conversation.Message) error {
	args := m.Called(ctx, tenantID, msg)
	return args.Error(0)
}

func (m *MessageRepository) List(ctx context.Context, tenantID string, opts conversation.ListMessagesOptions) ([]conversation.Message, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]conversation.Message); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// DraftRepository is a mock for conversation.DraftRepository.
type DraftRepository struct {
	mock.Mock
}

func (m *DraftRepository) Get(ctx context.Context, tenantID, projectID string) (*conversation.Draft, error) {
	args := m.Called(ctx, tenantID, projectID)
	if draft, ok := args.Get(0).(*conversation.Draft); ok {
		return draft, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DraftRepository) Save(ctx context.Context, tenantID string, draft *conversation.Draft) error {
	args := m.Called(ctx, tenantID, draft)
	return args.Error(0)
}

func (m *DraftRepository) Delete(ctx context.Context, tenantID, projectID string) error {
	args := m.Called(ctx, tenantID, projectID)
	return args.Error(0)
}
