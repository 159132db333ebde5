package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/workhub-app/workhub-backend/internal/projects/domain"
	"github.com/workhub-app/workhub-backend/internal/utils"
)

// Repository is the persistence the project service needs.
type Repository interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error)
	ListAvailableForSeeker(ctx context.Context, seekerID string) ([]domain.Project, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo Repository
	now  func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(repo Repository) *ProjectService {
	return &ProjectService{repo: repo, now: time.Now}
}

// Create posts a new available project for the owner.
func (s *ProjectService) Create(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	title := strings.TrimSpace(req.Title)
	switch {
	case req.OwnerID == "":
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	case title == "":
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	case req.Fee < 0:
		return nil, fmt.Errorf("%w: fee must not be negative", domain.ErrInvalidInput)
	case req.Deadline.IsZero():
		return nil, fmt.Errorf("%w: deadline is required", domain.ErrInvalidInput)
	}

	p := &domain.Project{
		Title:       utils.CapitalizeWords(title),
		Description: strings.TrimSpace(req.Description),
		Deadline:    req.Deadline,
		Fee:         req.Fee,
		Status:      domain.StatusAvailable,
		OwnerID:     req.OwnerID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns one project.
func (s *ProjectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return s.repo.GetByID(ctx, id)
}

// GetOwned returns the project only when ownerID posted it.
func (s *ProjectService) GetOwned(ctx context.Context, id int64, ownerID string) (*domain.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, domain.ErrNotOwner
	}
	return p, nil
}

// ListByOwner returns all projects for an owner, newest first.
func (s *ProjectService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Search returns the projects a seeker can still apply to.
func (s *ProjectService) Search(ctx context.Context, seekerID string) ([]domain.Project, error) {
	return s.repo.ListAvailableForSeeker(ctx, seekerID)
}

// UpdateStatus changes a project's availability.
func (s *ProjectService) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
