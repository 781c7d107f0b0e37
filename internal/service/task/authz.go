package task

import (
	"github.com/google/uuid"

	"github.com/rcavanagh/taskboard-api/internal/domain"
)

// MutationScope controls who may update or delete a task.
type MutationScope string

const (
	// ScopeCreator restricts mutation to the task's creator. This is the
	// default policy.
	ScopeCreator MutationScope = "creator"

	// ScopeCollaborators extends mutation to assignees as well as the
	// creator. Assignment itself stays creator-only under either scope.
	ScopeCollaborators MutationScope = "collaborators"
)

// Authorizer decides whether a user may view, mutate or assign a given
// task. All predicates are pure: they never error and never touch storage,
// so the caller must supply a task with its assignee set loaded.
type Authorizer struct {
	scope MutationScope
}

// NewAuthorizer creates an Authorizer with the given mutation scope.
// An unrecognized scope falls back to creator-only.
func NewAuthorizer(scope MutationScope) *Authorizer {
	if scope != ScopeCollaborators {
		scope = ScopeCreator
	}
	return &Authorizer{scope: scope}
}

// CanView reports whether the user may read the task: true for the
// creator and for any assignee.
func (a *Authorizer) CanView(userID uuid.UUID, t *domain.Task) bool {
	return t.CreatorID == userID || t.HasAssignee(userID)
}

// CanMutate reports whether the user may update or delete the task.
// Under ScopeCreator only the creator may; under ScopeCollaborators
// assignees may as well.
func (a *Authorizer) CanMutate(userID uuid.UUID, t *domain.Task) bool {
	if t.CreatorID == userID {
		return true
	}
	return a.scope == ScopeCollaborators && t.HasAssignee(userID)
}

// CanAssign reports whether the user may assign collaborators to the task.
// Always creator-only, regardless of mutation scope.
func (a *Authorizer) CanAssign(userID uuid.UUID, t *domain.Task) bool {
	return t.CreatorID == userID
}
