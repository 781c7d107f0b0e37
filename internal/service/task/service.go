// Package task implements the task management use cases: listing with
// filters and sorting, CRUD, and collaborator assignment. Every method
// takes the acting user's ID explicitly; there is no ambient caller state.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rcavanagh/taskboard-api/internal/domain"
	"github.com/rcavanagh/taskboard-api/internal/platform/logger"
	"github.com/rcavanagh/taskboard-api/internal/store"
)

// CreateInput holds the fields for creating a task. The creator is always
// the acting user; a client-supplied creator is ignored by the boundary
// before it gets here.
type CreateInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// Service orchestrates the task repository and the authorization gate.
type Service struct {
	tasks  store.TaskStore
	users  store.UserStore
	authz  *Authorizer
	logger *slog.Logger
}

// NewService creates a task Service with the given dependencies.
// If logger is nil, the default logger is used.
func NewService(tasks store.TaskStore, users store.UserStore, authz *Authorizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tasks:  tasks,
		users:  users,
		authz:  authz,
		logger: logger.With(slog.String("component", "task_service")),
	}
}

// List returns the page of tasks visible to the user, narrowed by the
// filter and ordered by the sort keys. Pages start at 1; out-of-range
// page numbers yield an empty page with intact metadata.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter, sort []store.SortKey, page int) (*store.TaskPage, error) {
	if page < 1 {
		page = 1
	}
	if len(sort) == 0 {
		sort = []store.SortKey{{Field: store.SortByCreatedAt, Descending: true}}
	}

	result, err := s.tasks.List(ctx, userID, filter, sort, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return result, nil
}

// Create validates the input and stores a new task created by the user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	newTask, err := domain.NewTask(userID, input.Title, input.Description, input.Status, input.Priority, input.DueDate)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, newTask); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	log.Info("task created",
		slog.String("task_id", newTask.ID.String()),
		slog.String("creator_id", userID.String()))
	return newTask, nil
}

// Get retrieves a single task. Returns store.ErrTaskNotFound when no task
// with that ID exists, and ErrForbidden when the task exists but the user
// is neither its creator nor an assignee. An unviewable task yields 403 at
// the boundary, not 404.
func (s *Service) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	found, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !s.authz.CanView(userID, found) {
		return nil, ErrForbidden
	}

	return found, nil
}

// Update applies a partial update to the task's whitelisted fields.
// Returns store.ErrTaskNotFound or ErrForbidden following the mutation
// policy; the creator can never be changed.
func (s *Service) Update(ctx context.Context, userID, taskID uuid.UUID, update domain.TaskUpdate) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	found, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !s.authz.CanMutate(userID, found) {
		return nil, ErrForbidden
	}

	if err := update.Apply(found); err != nil {
		return nil, err
	}

	if err := s.tasks.Update(ctx, found); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return found, nil
}

// Delete removes the task. Assignment rows go with it via the database
// cascade; other tasks and the users themselves are untouched.
func (s *Service) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	found, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if !s.authz.CanMutate(userID, found) {
		return ErrForbidden
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// Assign adds the target user to the task's assignee set. The target must
// exist (ErrAssigneeNotFound otherwise); assigning an existing assignee is
// a no-op that still succeeds.
func (s *Service) Assign(ctx context.Context, userID, taskID, targetUserID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	found, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if !s.authz.CanAssign(userID, found) {
		return ErrForbidden
	}

	exists, err := s.users.Exists(ctx, targetUserID)
	if err != nil {
		return fmt.Errorf("failed to check assignee existence: %w", err)
	}
	if !exists {
		return ErrAssigneeNotFound
	}

	if err := s.tasks.AddAssignee(ctx, taskID, targetUserID); err != nil {
		return fmt.Errorf("failed to assign user to task: %w", err)
	}

	log.Info("user assigned to task",
		slog.String("task_id", taskID.String()),
		slog.String("assignee_id", targetUserID.String()),
		slog.String("assigned_by", userID.String()))
	return nil
}
