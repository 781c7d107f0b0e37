package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rcavanagh/taskboard-api/internal/store"
)

// listQuery holds the pair of statements a task listing needs: a COUNT for
// the pagination total and the page query itself. Both share the same WHERE
// clause and arguments; the page query adds LIMIT/OFFSET.
type listQuery struct {
	countSQL  string
	dataSQL   string
	countArgs []any
	dataArgs  []any
}

// buildListQuery assembles the listing SQL for the given user, filter, sort
// keys and page. Kept as a pure function so the generated predicate and
// ordering are unit-testable without a database.
//
// The base predicate always restricts visibility to tasks the user created
// or was assigned to; each present filter adds one AND conjunct. The
// due_date filter compares calendar days only. Ordering appends "id ASC"
// after the requested keys so rows with equal sort values keep a stable,
// reproducible order across pages.
func buildListQuery(userID uuid.UUID, filter store.TaskFilter, sort []store.SortKey, page int) listQuery {
	var where strings.Builder
	args := []any{userID}

	// Visibility: creator or assignee.
	where.WriteString(`(t.user_id = $1 OR EXISTS (
		SELECT 1 FROM task_user tu WHERE tu.task_id = t.id AND tu.user_id = $1
	))`)

	if filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&where, " AND t.status = $%d", len(args))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		fmt.Fprintf(&where, " AND t.priority = $%d", len(args))
	}
	if filter.DueDate != nil {
		args = append(args, *filter.DueDate)
		fmt.Fprintf(&where, " AND t.due_date = ($%d)::date", len(args))
	}

	countSQL := "SELECT COUNT(*) FROM tasks t WHERE " + where.String()

	if len(sort) == 0 {
		sort = []store.SortKey{{Field: store.SortByCreatedAt, Descending: true}}
	}

	var order strings.Builder
	for i, key := range sort {
		if i > 0 {
			order.WriteString(", ")
		}
		// key.Field is one of the SortField constants, never client input.
		order.WriteString("t." + string(key.Field))
		if key.Descending {
			order.WriteString(" DESC")
		} else {
			order.WriteString(" ASC")
		}
	}
	order.WriteString(", t.id ASC")

	dataArgs := append(append([]any{}, args...),
		store.TasksPerPage, (page-1)*store.TasksPerPage)
	dataSQL := fmt.Sprintf(
		"SELECT "+taskColumns+" FROM tasks t WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		where.String(), order.String(), len(args)+1, len(args)+2)

	return listQuery{
		countSQL:  countSQL,
		dataSQL:   dataSQL,
		countArgs: args,
		dataArgs:  dataArgs,
	}
}
