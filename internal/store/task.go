package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rcavanagh/taskboard-api/internal/domain"
)

// TasksPerPage is the fixed page size for task listings.
const TasksPerPage = 10

// TaskFilter holds the optional listing filters. Zero values mean
// "not filtered"; each set field is applied as an additional conjunct.
type TaskFilter struct {
	Status   domain.TaskStatus
	Priority domain.TaskPriority
	// DueDate filters on the calendar day only; any time component of the
	// stored due date is ignored.
	DueDate *time.Time
}

// SortField identifies a column tasks can be sorted by.
type SortField string

// Recognized sort fields. Anything else in a sort expression is ignored.
const (
	SortByDueDate   SortField = "due_date"
	SortByCreatedAt SortField = "created_at"
)

// SortKey is a single ordering term of a composite sort.
type SortKey struct {
	Field      SortField
	Descending bool
}

// TaskPage is one page of a task listing plus pagination metadata,
// mirroring the shape the HTTP boundary exposes.
type TaskPage struct {
	Tasks       []*domain.Task
	Total       int
	CurrentPage int
	LastPage    int
	PerPage     int
}

// TaskStore defines the interface for task data persistence, including the
// filtered, sorted and paginated listing query.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	// Returns ErrInvalidEntity if the creator does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID, including its assignee set.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists the mutable fields of an existing task
	// (title, description, status, priority, due date). The creator
	// column is never written.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by its ID. Assignment rows referencing the
	// task are removed by the database's cascade rule.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddAssignee inserts the (task, user) pair into the assignment set.
	// The insert is idempotent: assigning an already-assigned user is a
	// no-op, not an error.
	// Returns ErrTaskNotFound or ErrUserNotFound when either side of the
	// pair does not exist.
	AddAssignee(ctx context.Context, taskID, userID uuid.UUID) error

	// List returns the page of tasks visible to the given user: tasks they
	// created or were assigned to, narrowed by the filter, ordered by the
	// sort keys (default created_at descending) with a stable id tiebreak,
	// ten per page.
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter, sort []SortKey, page int) (*TaskPage, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
