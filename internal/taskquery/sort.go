package taskquery

import (
	"slices"

	"github.com/phrazzld/taskhub/internal/domain"
)

// SortByRecency orders tasks newest first by CreatedAt. Tasks without a
// creation time sort last; ties are broken by ascending ID.
// The slice is sorted in place and returned.
func SortByRecency(tasks []*domain.Task) []*domain.Task {
	slices.SortStableFunc(tasks, func(a, b *domain.Task) int {
		az, bz := a.CreatedAt.IsZero(), b.CreatedAt.IsZero()
		switch {
		case az && !bz:
			return 1
		case !az && bz:
			return -1
		case !az && !bz:
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
		}
		return compareID(a, b)
	})
	return tasks
}

// SortByPriority orders tasks by descending priority rank (HIGH, MEDIUM,
// LOW, then unknown values); ties are broken by ascending ID.
// The slice is sorted in place and returned.
func SortByPriority(tasks []*domain.Task) []*domain.Task {
	slices.SortStableFunc(tasks, func(a, b *domain.Task) int {
		if d := b.Priority.Rank() - a.Priority.Rank(); d != 0 {
			return d
		}
		return compareID(a, b)
	})
	return tasks
}

func compareID(a, b *domain.Task) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}
