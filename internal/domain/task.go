package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Common task validation errors
var (
	ErrEmptyTaskID    = errors.New("task ID cannot be empty")
	ErrEmptyCreatorID = errors.New("task creator ID cannot be empty")
	ErrEmptyTitle     = errors.New("task title cannot be empty")
	ErrTitleTooLong   = errors.New("task title must be at most 255 characters long")
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// Valid task statuses. Lowercase hyphenated form is canonical; parsing
// accepts legacy mixed-case spellings such as "Todo" and "In Progress".
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

// Valid task priorities.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// ParseTaskStatus normalizes a status string to its canonical form.
// Matching is case-insensitive; spaces and underscores are treated as
// hyphens so "In Progress" and "in_progress" both parse.
// Returns ErrInvalidStatus for unrecognized values.
func ParseTaskStatus(s string) (TaskStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "-", "_", "-").Replace(normalized)

	switch TaskStatus(normalized) {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return TaskStatus(normalized), nil
	default:
		return "", ErrInvalidStatus
	}
}

// ParseTaskPriority normalizes a priority string to its canonical form.
// Matching is case-insensitive. Returns ErrInvalidPriority for
// unrecognized values.
func ParseTaskPriority(s string) (TaskPriority, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	switch TaskPriority(normalized) {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return TaskPriority(normalized), nil
	default:
		return "", ErrInvalidPriority
	}
}

// Task represents a unit of work created by a user.
//
// CreatorID is set once at creation from the authenticated caller and is
// never changed by updates. AssigneeIDs is the set of collaborators the
// creator has assigned; it carries no ordering or role semantics.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	CreatorID   uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	AssigneeIDs []uuid.UUID  `json:"assignee_ids,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new Task owned by the given creator.
// Status and priority default to "todo" and "medium" when empty.
// Returns an error if validation fails.
func NewTask(creatorID uuid.UUID, title, description string, status TaskStatus, priority TaskPriority, dueDate *time.Time) (*Task, error) {
	if status == "" {
		status = TaskStatusTodo
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.CreatorID == uuid.Nil {
		return ErrEmptyCreatorID
	}

	if t.Title == "" {
		return ErrEmptyTitle
	}
	// Counted in runes to match the request-level max=255 rule, which also
	// counts characters rather than bytes.
	if utf8.RuneCountInString(t.Title) > 255 {
		return ErrTitleTooLong
	}

	if _, err := ParseTaskStatus(string(t.Status)); err != nil {
		return err
	}
	if _, err := ParseTaskPriority(string(t.Priority)); err != nil {
		return err
	}

	return nil
}

// HasAssignee reports whether the given user is in the task's assignee set.
func (t *Task) HasAssignee(userID uuid.UUID) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// TaskUpdate describes a partial update to a task. Only non-nil fields are
// applied; the creator can never be changed through an update.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     *time.Time
	// ClearDueDate removes the due date when true. Distinct from DueDate
	// being nil, which means "leave unchanged".
	ClearDueDate bool
}

// Apply copies the update's populated fields onto the task and refreshes
// the update timestamp. Returns an error if the result fails validation;
// the task is left unmodified in that case.
func (u *TaskUpdate) Apply(t *Task) error {
	updated := *t

	if u.Title != nil {
		updated.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		updated.Description = *u.Description
	}
	if u.Status != nil {
		updated.Status = *u.Status
	}
	if u.Priority != nil {
		updated.Priority = *u.Priority
	}
	if u.DueDate != nil {
		updated.DueDate = u.DueDate
	} else if u.ClearDueDate {
		updated.DueDate = nil
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := updated.Validate(); err != nil {
		return err
	}

	*t = updated
	return nil
}
