package taskquery

import (
	"strings"

	"github.com/phrazzld/taskhub/internal/domain"
)

// Filter reports whether a task should be selected.
type Filter func(t *domain.Task) bool

// ByOwner matches tasks owned by userID.
func ByOwner(userID int64) Filter {
	return func(t *domain.Task) bool { return t.UserID == userID }
}

// ByStatus matches tasks in the given status.
func ByStatus(status domain.TaskStatus) Filter {
	return func(t *domain.Task) bool { return t.Status == status }
}

// ByPriority matches tasks with the given priority.
func ByPriority(priority domain.Priority) Filter {
	return func(t *domain.Task) bool { return t.Priority == priority }
}

// ByOwnerAndStatus matches tasks owned by userID in the given status.
func ByOwnerAndStatus(userID int64, status domain.TaskStatus) Filter {
	return And(ByOwner(userID), ByStatus(status))
}

// ByOwnerAndPriority matches tasks owned by userID with the given priority.
func ByOwnerAndPriority(userID int64, priority domain.Priority) Filter {
	return And(ByOwner(userID), ByPriority(priority))
}

// TitleContains matches tasks whose title contains fragment, ignoring case.
// An empty fragment matches every task.
func TitleContains(fragment string) Filter {
	needle := strings.ToLower(fragment)
	return func(t *domain.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), needle)
	}
}

// CompletedByOwner matches userID's tasks in status COMPLETED.
func CompletedByOwner(userID int64) Filter {
	return ByOwnerAndStatus(userID, domain.TaskStatusCompleted)
}

// PendingByOwner matches userID's tasks that are TODO or IN_PROGRESS.
func PendingByOwner(userID int64) Filter {
	return And(ByOwner(userID), func(t *domain.Task) bool { return t.Status.Pending() })
}

// HighPriorityByOwner matches userID's tasks with priority HIGH.
func HighPriorityByOwner(userID int64) Filter {
	return ByOwnerAndPriority(userID, domain.PriorityHigh)
}

// And matches tasks satisfying every filter. With no filters it matches all.
func And(filters ...Filter) Filter {
	return func(t *domain.Task) bool {
		for _, f := range filters {
			if !f(t) {
				return false
			}
		}
		return true
	}
}

// Apply returns the tasks matched by f, preserving input order.
func Apply(tasks []*domain.Task, f Filter) []*domain.Task {
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if f(t) {
			out = append(out, t)
		}
	}
	return out
}

// Criteria is an optional owner/status/priority selection. Unset fields
// place no constraint; set fields are intersected.
type Criteria struct {
	UserID   *int64
	Status   *domain.TaskStatus
	Priority *domain.Priority
}

// Filter builds the conjunction of the set fields.
func (c Criteria) Filter() Filter {
	var filters []Filter
	if c.UserID != nil {
		filters = append(filters, ByOwner(*c.UserID))
	}
	if c.Status != nil {
		filters = append(filters, ByStatus(*c.Status))
	}
	if c.Priority != nil {
		filters = append(filters, ByPriority(*c.Priority))
	}
	return And(filters...)
}

// IsEmpty reports whether no field is set.
func (c Criteria) IsEmpty() bool {
	return c.UserID == nil && c.Status == nil && c.Priority == nil
}
