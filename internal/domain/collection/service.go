package collection

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

// Service handles collection operations.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new collection service. activities may be nil.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, activities: activities, logger: logger}
}

// CreateRequest defines collection creation inputs.
type CreateRequest struct {
	Name string
	Tag  string
}

// UpdateRequest edits a collection. Nil fields are left alone.
type UpdateRequest struct {
	ID   string
	Name *string
	Tag  *string
}

// Create creates a new, empty collection.
func (s *Service) Create(ctx context.Context, tenantID string, req CreateRequest) (*Collection, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidInput
	}
	col := &Collection{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Name:      strings.TrimSpace(req.Name),
		Tag:       strings.TrimSpace(req.Tag),
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, tenantID, col); err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}
	s.log(ctx, tenantID, activity.StatusCreated, fmt.Sprintf("Collezione %q creata", col.Name))
	return col, nil
}

// Get fetches a collection by ID.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Collection, error) {
	col, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("getting collection: %w", err)
	}
	return col, nil
}

// List returns all collections of a tenant.
func (s *Service) List(ctx context.Context, tenantID string) ([]Collection, error) {
	return s.repo.List(ctx, tenantID)
}

// Update renames or retags a collection.
func (s *Service) Update(ctx context.Context, tenantID string, req UpdateRequest) (*Collection, error) {
	if req.ID == "" || (req.Name != nil && strings.TrimSpace(*req.Name) == "") {
		return nil, ErrInvalidInput
	}
	col, err := s.Get(ctx, tenantID, req.ID)
	if err != nil {
		return nil, err
	}
	updated := *col
	if req.Name != nil {
		updated.Name = strings.TrimSpace(*req.Name)
	}
	if req.Tag != nil {
		updated.Tag = strings.TrimSpace(*req.Tag)
	}
	if err := s.repo.Update(ctx, tenantID, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("updating collection: %w", err)
	}
	s.log(ctx, tenantID, activity.StatusEdited, fmt.Sprintf("Collezione %q modificata", updated.Name))
	return &updated, nil
}

// Delete removes a collection. Documents referencing it are left as they are.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	col, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCollectionNotFound
		}
		return fmt.Errorf("deleting collection: %w", err)
	}
	s.log(ctx, tenantID, activity.StatusDeleted, fmt.Sprintf("Collezione %q eliminata", col.Name))
	return nil
}

func (s *Service) log(ctx context.Context, tenantID string, status activity.Status, description string) {
	if s.activities == nil {
		return
	}
	err := s.activities.Log(ctx, tenantID, &activity.ActivityEntry{
		Status:      status,
		Description: description,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to log collection activity", "error", err)
	}
}
