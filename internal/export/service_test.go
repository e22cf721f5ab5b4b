package export_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/domain/document"
	"github.com/valislegal/valis/internal/export"
)

type mockDocs struct{ mock.Mock }

func (m *mockDocs) Get(ctx context.Context, tenantID, id string) (*document.Document, error) {
	args := m.Called(ctx, tenantID, id)
	if doc := args.Get(0); doc != nil {
		return doc.(*document.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockActivity struct{ mock.Mock }

func (m *mockActivity) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	return m.Called(ctx, tenantID, entry).Error(0)
}

func TestService_ExportLogsActivity(t *testing.T) {
	ctx := context.Background()
	docs := &mockDocs{}
	acts := &mockActivity{}
	docs.On("Get", ctx, "t1", "d1").Return(&document.Document{ID: "d1", Name: "Diffida.html", Content: "<p>Si diffida</p>"}, nil)
	acts.On("Log", ctx, "t1", mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.Status == activity.StatusExported && e.DocumentID != nil && *e.DocumentID == "d1"
	})).Return(nil)

	svc := export.NewService(docs, nil, acts, nil)
	a, err := svc.Export(ctx, "t1", "d1", export.FormatDocx)
	require.NoError(t, err)
	require.Equal(t, "Diffida.docx", a.Filename)
	acts.AssertExpectations(t)
}

func TestService_ExportMissingDocument(t *testing.T) {
	ctx := context.Background()
	docs := &mockDocs{}
	docs.On("Get", ctx, "t1", "nope").Return(nil, document.ErrDocumentNotFound)

	svc := export.NewService(docs, nil, nil, nil)
	_, err := svc.Export(ctx, "t1", "nope", export.FormatDocx)
	require.ErrorIs(t, err, document.ErrDocumentNotFound)
}
