package task

import (
	"strings"

	"github.com/rcavanagh/taskboard-api/internal/store"
)

// ParseSort parses a comma-separated sort expression into ordered sort keys.
// A leading "-" on a key means descending; otherwise ascending. Only
// due_date and created_at are recognized -- anything else is silently
// dropped, not an error. An expression with no recognized keys (including
// the empty string) yields the default order: created_at descending.
func ParseSort(expr string) []store.SortKey {
	var keys []store.SortKey

	for _, raw := range strings.Split(expr, ",") {
		field := strings.TrimSpace(raw)
		descending := false
		if strings.HasPrefix(field, "-") {
			field = strings.TrimPrefix(field, "-")
			descending = true
		}

		switch store.SortField(field) {
		case store.SortByDueDate, store.SortByCreatedAt:
			keys = append(keys, store.SortKey{
				Field:      store.SortField(field),
				Descending: descending,
			})
		}
	}

	if len(keys) == 0 {
		keys = []store.SortKey{{Field: store.SortByCreatedAt, Descending: true}}
	}

	return keys
}
