package collection

import (
	"context"

	"github.com/valislegal/valis/internal/domain/activity"
)

// Repository provides persistence for collections. DocumentCount is computed
// by the repository from the documents referencing each collection.
type Repository interface {
	Create(ctx context.Context, tenantID string, col *Collection) error
	Get(ctx context.Context, tenantID, id string) (*Collection, error)
	List(ctx context.Context, tenantID string) ([]Collection, error)
	Update(ctx context.Context, tenantID string, col *Collection) error
	Delete(ctx context.Context, tenantID, id string) error
}

// ActivityRepository logs collection activities.
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}
