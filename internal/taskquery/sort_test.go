package taskquery

import (
	"testing"
	"time"

	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSortByRecency(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tasks := []*domain.Task{
		{ID: 1, CreatedAt: base},
		{ID: 2},
		{ID: 3, CreatedAt: base.Add(time.Hour)},
		{ID: 4, CreatedAt: base},
		{ID: 5},
		{ID: 6, CreatedAt: base.Add(-time.Hour)},
	}

	got := SortByRecency(tasks)

	assert.Equal(t, []int64{3, 1, 4, 6, 2, 5}, ids(got))
}

func TestSortByRecency_TieBreakIgnoresInputOrder(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tasks := []*domain.Task{
		{ID: 9, CreatedAt: at},
		{ID: 2, CreatedAt: at},
		{ID: 5, CreatedAt: at},
	}

	assert.Equal(t, []int64{2, 5, 9}, ids(SortByRecency(tasks)))
}

func TestSortByPriority(t *testing.T) {
	tasks := []*domain.Task{
		{ID: 4, Priority: domain.PriorityLow},
		{ID: 1, Priority: domain.PriorityMedium},
		{ID: 7, Priority: domain.PriorityHigh},
		{ID: 2, Priority: domain.PriorityHigh},
		{ID: 3, Priority: "URGENT"},
		{ID: 5, Priority: domain.PriorityLow},
	}

	got := SortByPriority(tasks)

	assert.Equal(t, []int64{2, 7, 1, 4, 5, 3}, ids(got))
}

func TestSortEmpty(t *testing.T) {
	assert.Empty(t, SortByRecency(nil))
	assert.Empty(t, SortByPriority([]*domain.Task{}))
}
