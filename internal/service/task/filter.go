package task

import (
	"time"

	"github.com/rcavanagh/taskboard-api/internal/domain"
	"github.com/rcavanagh/taskboard-api/internal/store"
)

// dueDateLayout is the calendar-date format accepted by the due_date filter.
const dueDateLayout = "2006-01-02"

// ParseFilter converts the raw listing query parameters into a TaskFilter.
// Empty parameters are skipped; present ones must parse, otherwise a
// field-level validation error is returned.
func ParseFilter(status, priority, dueDate string) (store.TaskFilter, error) {
	var filter store.TaskFilter

	if status != "" {
		parsed, err := domain.ParseTaskStatus(status)
		if err != nil {
			return store.TaskFilter{}, domain.NewValidationError("status", "is not a valid status", err)
		}
		filter.Status = parsed
	}

	if priority != "" {
		parsed, err := domain.ParseTaskPriority(priority)
		if err != nil {
			return store.TaskFilter{}, domain.NewValidationError("priority", "is not a valid priority", err)
		}
		filter.Priority = parsed
	}

	if dueDate != "" {
		parsed, err := time.Parse(dueDateLayout, dueDate)
		if err != nil {
			return store.TaskFilter{}, domain.NewValidationError("due_date", "must be a date in YYYY-MM-DD format", domain.ErrValidation)
		}
		filter.DueDate = &parsed
	}

	return filter, nil
}
