package document

import (
	"context"

	"github.com/valislegal/valis/internal/domain/activity"
)

// Repository provides persistence for documents. Delete also detaches the
// document from every project.
type Repository interface {
	Create(ctx context.Context, tenantID string, doc *Document) error
	Get(ctx context.Context, tenantID, id string) (*Document, error)
	Update(ctx context.Context, tenantID string, doc *Document) error
	Delete(ctx context.Context, tenantID, id string) error
	List(ctx context.Context, tenantID string, opts ListDocumentsOptions) ([]DocumentRef, error)
}

// ProjectLinker attaches documents to projects.
type ProjectLinker interface {
	AttachDocument(ctx context.Context, tenantID, projectID, documentID string) error
}

// ActivityRepository logs document activities.
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}
