package project

import (
	"context"

	"github.com/valislegal/valis/internal/domain/activity"
)

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, tenantID string, proj *Project) error
	Get(ctx context.Context, tenantID, id string) (*Project, error)
	List(ctx context.Context, tenantID string) ([]ProjectSummary, error)
	Update(ctx context.Context, tenantID string, proj *Project) error
	Delete(ctx context.Context, tenantID, id string) error
	AttachDocument(ctx context.Context, tenantID, projectID, documentID string) error
	DetachDocument(ctx context.Context, tenantID, projectID, documentID string) error
	SetSelected(ctx context.Context, tenantID, projectID string) error
	GetSelected(ctx context.Context, tenantID string) (string, error)
}

// ActivityRepository logs project activities.
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}
