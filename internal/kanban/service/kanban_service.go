package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/workhub-app/workhub-backend/internal/kanban/domain"
	"github.com/workhub-app/workhub-backend/internal/utils"
	wsdomain "github.com/workhub-app/workhub-backend/internal/workspaces/domain"
)

type BoardStore interface {
	Create(ctx context.Context, b *domain.Board) error
	GetByID(ctx context.Context, id int64) (*domain.Board, error)
	ListByWorkspace(ctx context.Context, workspaceID int64) ([]domain.Board, error)
	Delete(ctx context.Context, id int64) error
}

type ActivityStore interface {
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id int64) (*domain.Activity, error)
	Update(ctx context.Context, a *domain.Activity) error
	Delete(ctx context.Context, id int64) error
	ListByBoard(ctx context.Context, boardID int64) ([]domain.Activity, error)
	ListByBoardAndStatus(ctx context.Context, boardID int64, status domain.Status) ([]domain.Activity, error)
}

type WorkspaceLookup interface {
	GetByID(ctx context.Context, id int64) (*wsdomain.Workspace, error)
}

// Service manages boards and activities for workspace members.
type Service struct {
	boards     BoardStore
	activities ActivityStore
	workspaces WorkspaceLookup
}

func New(boards BoardStore, activities ActivityStore, workspaces WorkspaceLookup) *Service {
	return &Service{boards: boards, activities: activities, workspaces: workspaces}
}

func (s *Service) authorizeWorkspace(ctx context.Context, userID string, workspaceID int64) error {
	w, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return err
	}
	if !w.HasMember(userID) {
		return domain.ErrForbidden
	}
	return nil
}

func (s *Service) authorizeBoard(ctx context.Context, userID string, boardID int64) (*domain.Board, error) {
	b, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeWorkspace(ctx, userID, b.WorkspaceID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) authorizeActivity(ctx context.Context, userID string, id int64) (*domain.Activity, error) {
	a, err := s.activities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeBoard(ctx, userID, a.BoardID); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateBoard adds a board to a workspace the user belongs to.
func (s *Service) CreateBoard(ctx context.Context, userID string, workspaceID int64, title string) (*domain.Board, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: board title is required", domain.ErrInvalidInput)
	}
	if err := s.authorizeWorkspace(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	b := &domain.Board{Title: utils.CapitalizeWords(title), WorkspaceID: workspaceID}
	if err := s.boards.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListBoards(ctx context.Context, userID string, workspaceID int64) ([]domain.Board, error) {
	if err := s.authorizeWorkspace(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	return s.boards.ListByWorkspace(ctx, workspaceID)
}

func (s *Service) DeleteBoard(ctx context.Context, userID string, boardID int64) error {
	if _, err := s.authorizeBoard(ctx, userID, boardID); err != nil {
		return err
	}
	return s.boards.Delete(ctx, boardID)
}

// CreateActivity adds a card to a board. New cards default to todo.
func (s *Service) CreateActivity(ctx context.Context, userID string, a domain.Activity) (*domain.Activity, error) {
	if a.Status == "" {
		a.Status = domain.StatusTodo
	}
	a.Name = strings.TrimSpace(a.Name)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.authorizeBoard(ctx, userID, a.BoardID); err != nil {
		return nil, err
	}
	if err := s.activities.Create(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateActivity edits a card. Changing the status moves it to another column.
func (s *Service) UpdateActivity(ctx context.Context, userID string, id int64, patch domain.ActivityPatch) (*domain.Activity, error) {
	current, err := s.authorizeActivity(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	next := patch.Apply(*current)
	next.Name = strings.TrimSpace(next.Name)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := s.activities.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *Service) DeleteActivity(ctx context.Context, userID string, id int64) error {
	if _, err := s.authorizeActivity(ctx, userID, id); err != nil {
		return err
	}
	return s.activities.Delete(ctx, id)
}

// ListActivities returns a board's activities in retrieval order.
func (s *Service) ListActivities(ctx context.Context, userID string, boardID int64) ([]domain.Activity, error) {
	if _, err := s.authorizeBoard(ctx, userID, boardID); err != nil {
		return nil, err
	}
	return s.activities.ListByBoard(ctx, boardID)
}

// Group fetches a board's activities once and partitions them in memory.
func (s *Service) Group(ctx context.Context, userID string, boardID int64) (domain.Columns, error) {
	items, err := s.ListActivities(ctx, userID, boardID)
	if err != nil {
		return domain.Columns{}, err
	}
	return domain.Partition(items)
}

// Columns loads the kanban view with one query per status column.
func (s *Service) Columns(ctx context.Context, userID string, boardID int64) (domain.Columns, error) {
	if _, err := s.authorizeBoard(ctx, userID, boardID); err != nil {
		return domain.Columns{}, err
	}
	var cols domain.Columns
	for _, status := range domain.Statuses {
		items, err := s.activities.ListByBoardAndStatus(ctx, boardID, status)
		if err != nil {
			return domain.Columns{}, fmt.Errorf("load %s column: %w", status, err)
		}
		*cols.Bucket(status) = items
	}
	return cols, nil
}
