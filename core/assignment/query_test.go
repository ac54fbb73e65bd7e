package assignment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/studyflow/core/course"
)

var (
	base    = time.Date(2024, 10, 14, 12, 0, 0, 0, time.UTC)
	courses = []course.Course{{ID: 1, Name: "Organic Chemistry"}, {ID: 2, Name: "calculus II"}}
)

func fixture() []Assignment {
	return []Assignment{
		{ID: 1, CourseID: 1, Title: "Lab report", DueDate: base.AddDate(0, 0, 2), Priority: PriorityMedium, Status: StatusPending},
		{ID: 2, CourseID: 2, Title: "Problem set 4", DueDate: base.AddDate(0, 0, 1), Priority: PriorityHigh, Status: StatusCompleted},
		{ID: 3, CourseID: 9, Title: "essay draft", DueDate: base.AddDate(0, 0, 1), Priority: PriorityLow, Status: StatusInProgress},
		{ID: 4, CourseID: 1, Title: "Midterm review", DueDate: base, Priority: PriorityHigh, Status: StatusPending},
	}
}

func ids(list []Assignment) []int {
	res := make([]int, 0, len(list))
	for _, a := range list {
		res = append(res, a.ID)
	}
	return res
}

func TestFilterAssignments(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{name: "empty filter", want: []int{1, 2, 3, 4}},
		{name: "all", filter: Filter{Status: FilterAll, Priority: FilterAll}, want: []int{1, 2, 3, 4}},
		{name: "status", filter: Filter{Status: StatusPending}, want: []int{1, 4}},
		{name: "priority", filter: Filter{Priority: PriorityHigh}, want: []int{2, 4}},
		{name: "status & priority", filter: Filter{Status: StatusPending, Priority: PriorityHigh}, want: []int{4}},
		{name: "title search ignores case", filter: Filter{Search: "PROBLEM"}, want: []int{2}},
		{name: "course name search", filter: Filter{Search: "chem"}, want: []int{1, 4}},
		{name: "unknown course name", filter: Filter{Search: "unknown"}, want: []int{3}},
		{name: "no match", filter: Filter{Search: "zzz"}, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterAssignments(fixture(), tt.filter, courses)))
		})
	}
}

func TestSortAssignments(t *testing.T) {
	tests := []struct {
		key  string
		want []int
	}{
		{key: SortDueDate, want: []int{4, 2, 3, 1}},
		{key: SortPriority, want: []int{2, 4, 1, 3}},
		{key: SortCourse, want: []int{2, 1, 4, 3}},
		{key: SortTitle, want: []int{3, 1, 4, 2}},
		{key: "color", want: []int{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			input := fixture()
			sorted := SortAssignments(input, tt.key, courses)
			assert.Equal(t, tt.want, ids(sorted))
			assert.Equal(t, []int{1, 2, 3, 4}, ids(input), "input left untouched")
			assert.Equal(t, tt.want, ids(SortAssignments(sorted, tt.key, courses)), "sorting is idempotent")
		})
	}
}

func TestIsSortKey(t *testing.T) {
	for _, key := range []string{SortDueDate, SortPriority, SortCourse, SortTitle} {
		assert.True(t, IsSortKey(key), key)
	}
	for _, key := range []string{"", "color", "DueDate", "-dueDate"} {
		assert.False(t, IsSortKey(key), key)
	}
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, PriorityRank(PriorityHigh), PriorityRank(PriorityMedium))
	assert.Greater(t, PriorityRank(PriorityMedium), PriorityRank(PriorityLow))
	assert.Greater(t, PriorityRank(PriorityLow), PriorityRank("urgent"))
}

func TestToggled(t *testing.T) {
	assert.Equal(t, StatusPending, Toggled(StatusCompleted))
	assert.Equal(t, StatusCompleted, Toggled(StatusPending))
	assert.Equal(t, StatusCompleted, Toggled(StatusInProgress))
}
