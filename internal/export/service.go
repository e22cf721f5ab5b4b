package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/domain/document"
)

// DocumentGetter loads documents for export.
type DocumentGetter interface {
	Get(ctx context.Context, tenantID, id string) (*document.Document, error)
}

// ActivityRepository records export activity.
type ActivityRepository interface {
	Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}

// Service exports stored documents.
type Service struct {
	docs       DocumentGetter
	exporter   *Exporter
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates an export service. activities may be nil.
func NewService(docs DocumentGetter, exporter *Exporter, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if exporter == nil {
		exporter = NewExporter(Config{Logger: logger})
	}
	return &Service{docs: docs, exporter: exporter, activities: activities, logger: logger}
}

// Export loads a document and exports it in the requested format.
func (s *Service) Export(ctx context.Context, tenantID, documentID string, format Format) (*Artifact, error) {
	doc, err := s.docs.Get(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	artifact, err := s.exporter.Export(ctx, Source{
		TenantID: tenantID,
		ID:       doc.ID,
		Name:     doc.Name,
		Content:  doc.Content,
	}, format)
	if err != nil {
		return nil, err
	}

	if s.activities != nil {
		entry := &activity.ActivityEntry{
			Status:      activity.StatusExported,
			Description: fmt.Sprintf("Documento %q esportato come %s", doc.Name, artifact.Filename),
			DocumentID:  &doc.ID,
			CreatedAt:   time.Now(),
		}
		if err := s.activities.Log(ctx, tenantID, entry); err != nil {
			s.logger.Warn("failed to log export activity", "error", err, "document_id", doc.ID)
		}
	}
	return artifact, nil
}
