package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valislegal/valis/internal/domain/activity"
	"github.com/valislegal/valis/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new project service. activities may be nil.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, activities: activities, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ID     string
	Name   string
	Client string
	Notes  string
}

// UpdateRequest changes the editable fields of a project. Nil fields are left alone.
type UpdateRequest struct {
	ID     string
	Name   *string
	Client *string
	Notes  *string
}

// Create creates a new project.
func (s *Service) Create(ctx context.Context, tenantID string, req CreateRequest) (*Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidInput
	}

	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	proj := &Project{
		ID:          id,
		TenantID:    tenantID,
		Name:        strings.TrimSpace(req.Name),
		Client:      strings.TrimSpace(req.Client),
		Notes:       req.Notes,
		CreatedAt:   time.Now(),
		DocumentIDs: []string{},
	}

	if err := s.repo.Create(ctx, tenantID, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.log(ctx, tenantID, proj.ID, activity.StatusCreated, fmt.Sprintf("Progetto %q creato", proj.Name))
	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns project summaries.
func (s *Service) List(ctx context.Context, tenantID string) ([]ProjectSummary, error) {
	return s.repo.List(ctx, tenantID)
}

// Update renames a project or edits its client and notes.
func (s *Service) Update(ctx context.Context, tenantID string, req UpdateRequest) (*Project, error) {
	if req.ID == "" {
		return nil, ErrInvalidInput
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrInvalidInput
	}

	proj, err := s.Get(ctx, tenantID, req.ID)
	if err != nil {
		return nil, err
	}

	updated := *proj
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Client != nil {
		updated.Client = strings.TrimSpace(*req.Client)
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, tenantID, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}

	s.log(ctx, tenantID, updated.ID, activity.StatusEdited, fmt.Sprintf("Progetto %q modificato", updated.Name))
	return &updated, nil
}

// Delete removes a project. Its documents are detached, not deleted.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	proj, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}

	s.log(ctx, tenantID, "", activity.StatusDeleted, fmt.Sprintf("Progetto %q eliminato", proj.Name))
	return nil
}

// Select moves the selected-project cursor. An empty id clears it.
func (s *Service) Select(ctx context.Context, tenantID, id string) error {
	if id != "" {
		if _, err := s.Get(ctx, tenantID, id); err != nil {
			return err
		}
	}
	if err := s.repo.SetSelected(ctx, tenantID, id); err != nil {
		return fmt.Errorf("selecting project: %w", err)
	}
	return nil
}

// Selected returns the currently selected project.
func (s *Service) Selected(ctx context.Context, tenantID string) (*Project, error) {
	id, err := s.repo.GetSelected(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSelection
		}
		return nil, fmt.Errorf("getting selection: %w", err)
	}
	if id == "" {
		return nil, ErrNoSelection
	}
	return s.Get(ctx, tenantID, id)
}

// AddDocument attaches an existing document to a project. Attaching twice is a no-op.
func (s *Service) AddDocument(ctx context.Context, tenantID, projectID, documentID string) (*Project, error) {
	if projectID == "" || documentID == "" {
		return nil, ErrInvalidInput
	}
	if err := s.repo.AttachDocument(ctx, tenantID, projectID, documentID); err != nil {
		return nil, s.mapAttachError(err)
	}
	return s.Get(ctx, tenantID, projectID)
}

// RemoveDocument detaches a document from a project without deleting it.
func (s *Service) RemoveDocument(ctx context.Context, tenantID, projectID, documentID string) (*Project, error) {
	if projectID == "" || documentID == "" {
		return nil, ErrInvalidInput
	}
	if err := s.repo.DetachDocument(ctx, tenantID, projectID, documentID); err != nil {
		return nil, s.mapAttachError(err)
	}
	return s.Get(ctx, tenantID, projectID)
}

func (s *Service) mapAttachError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrProjectNotFound
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return ErrDocumentNotFound
	default:
		return fmt.Errorf("updating project documents: %w", err)
	}
}

func (s *Service) log(ctx context.Context, tenantID, projectID string, status activity.Status, description string) {
	if s.activities == nil {
		return
	}
	entry := &activity.ActivityEntry{
		ProjectID:   projectID,
		Status:      status,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.activities.Log(ctx, tenantID, entry); err != nil {
		s.logger.Warn("failed to log project activity", "error", err, "project_id", projectID)
	}
}
