package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/htmlclean"
	"github.com/valislegal/valis/internal/repository"
)

// Service handles the document registry.
type Service struct {
	docs       Repository
	projects   ProjectLinker
	activities ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new document service. projects and activities may be nil.
func NewService(docs Repository, projects ProjectLinker, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		docs:       docs,
		projects:   projects,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

// UploadRequest describes a batch upload.
type UploadRequest struct {
	ProjectID    string
	CollectionID *string
	Files        []File
}

// CreateRequest describes a generated document.
type CreateRequest struct {
	ProjectID    string
	CollectionID *string
	Name         string
	MimeType     string
	Content      string
	ReadOnly     bool
}

// UpdateRequest describes an edit. Nil fields are left alone.
type UpdateRequest struct {
	ID           string
	Name         *string
	Content      *string
	CollectionID *string
}

// Upload registers every file of the request. Text and HTML files get
// sanitized HTML content; other files are stored read-only without content.
// The batch is all or nothing: on error no document of the request remains.
func (s *Service) Upload(ctx context.Context, tenantID string, req UploadRequest) ([]*Document, error) {
	if err := ValidateUpload(req); err != nil {
		return nil, err
	}

	out := make([]*Document, 0, len(req.Files))
	for _, f := range req.Files {
		mimeType := DetectMimeType(f.Name, f.MimeType, f.Data)
		doc := &Document{
			ID:           uuid.NewString(),
			TenantID:     tenantID,
			CollectionID: req.CollectionID,
			Name:         strings.TrimSpace(f.Name),
			Size:         int64(len(f.Data)),
			MimeType:     mimeType,
			Date:         s.now(),
			IsReadOnly:   !IsEditable(mimeType),
		}
		if IsEditable(mimeType) {
			doc.Content = htmlclean.Sanitize(string(f.Data))
		}

		if err := s.store(ctx, tenantID, req.ProjectID, doc); err != nil {
			s.discard(ctx, tenantID, out...)
			return nil, err
		}
		out = append(out, doc)
	}

	for _, doc := range out {
		s.log(ctx, tenantID, req.ProjectID, doc.ID, activity.StatusUploaded, fmt.Sprintf("Documento %q caricato", doc.Name))
	}
	return out, nil
}

// Create registers a generated document.
func (s *Service) Create(ctx context.Context, tenantID string, req CreateRequest) (*Document, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = MimeHTML
	}
	content := htmlclean.Sanitize(req.Content)
	doc := &Document{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		CollectionID: req.CollectionID,
		Name:         strings.TrimSpace(req.Name),
		Size:         int64(len(content)),
		MimeType:     mimeType,
		Date:         s.now(),
		Content:      content,
		IsReadOnly:   req.ReadOnly,
	}
	if err := s.store(ctx, tenantID, req.ProjectID, doc); err != nil {
		return nil, err
	}
	s.log(ctx, tenantID, req.ProjectID, doc.ID, activity.StatusCreated, fmt.Sprintf("Documento %q creato", doc.Name))
	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Document, error) {
	doc, err := s.docs.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return doc, nil
}

// List returns document references based on options.
func (s *Service) List(ctx context.Context, tenantID string, opts ListDocumentsOptions) ([]DocumentRef, error) {
	return s.docs.List(ctx, tenantID, opts)
}

// Update saves an edit. Content edits of read-only documents are rejected.
func (s *Service) Update(ctx context.Context, tenantID string, req UpdateRequest) (*Document, error) {
	if req.ID == "" || (req.Name != nil && strings.TrimSpace(*req.Name) == "") {
		return nil, ErrInvalidInput
	}
	current, err := s.Get(ctx, tenantID, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Content != nil && current.IsReadOnly {
		return nil, ErrReadOnly
	}

	updated := *current
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Content != nil {
		updated.Content = htmlclean.Sanitize(*req.Content)
		updated.Size = int64(len(updated.Content))
	}
	if req.CollectionID != nil {
		if *req.CollectionID == "" {
			updated.CollectionID = nil
		} else {
			updated.CollectionID = req.CollectionID
		}
	}
	updated.Date = s.now()

	if err := s.docs.Update(ctx, tenantID, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("updating document: %w", err)
	}
	s.log(ctx, tenantID, "", updated.ID, activity.StatusEdited, fmt.Sprintf("Documento %q modificato", updated.Name))
	return &updated, nil
}

// Delete removes a document and detaches it from all projects.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	doc, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("deleting document: %w", err)
	}
	s.log(ctx, tenantID, "", "", activity.StatusDeleted, fmt.Sprintf("Documento %q eliminato", doc.Name))
	return nil
}

// store creates doc and attaches it to projectID. A failed attach removes the
// document again.
func (s *Service) store(ctx context.Context, tenantID, projectID string, doc *Document) error {
	if err := s.docs.Create(ctx, tenantID, doc); err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	if projectID == "" || s.projects == nil {
		return nil
	}
	if err := s.projects.AttachDocument(ctx, tenantID, projectID, doc.ID); err != nil {
		s.discard(ctx, tenantID, doc)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("attaching document: %w", err)
	}
	return nil
}

func (s *Service) discard(ctx context.Context, tenantID string, docs ...*Document) {
	for _, doc := range docs {
		if err := s.docs.Delete(context.WithoutCancel(ctx), tenantID, doc.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("failed to remove document after failed store", "error", err, "document_id", doc.ID)
		}
	}
}

func (s *Service) log(ctx context.Context, tenantID, projectID, documentID string, status activity.Status, description string) {
	if s.activities == nil {
		return
	}
	entry := &activity.ActivityEntry{
		ProjectID:   projectID,
		Status:      status,
		Description: description,
		CreatedAt:   s.now(),
	}
	if documentID != "" {
		entry.DocumentID = &documentID
	}
	if err := s.activities.Log(ctx, tenantID, entry); err != nil {
		s.logger.Warn("failed to log document activity", "error", err, "document_id", documentID)
	}
}
