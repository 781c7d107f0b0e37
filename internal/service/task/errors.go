package task

import "errors"

// Common task service errors
var (
	// ErrForbidden indicates the acting user is not allowed to perform the
	// operation on the task. Deliberately carries no detail about why.
	ErrForbidden = errors.New("forbidden")

	// ErrAssigneeNotFound indicates an assignment referenced a user that
	// does not exist. Surfaced to the boundary as a validation failure on
	// the user_id field, not as a 404.
	ErrAssigneeNotFound = errors.New("assignee user does not exist")
)
