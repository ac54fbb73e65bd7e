package assignment

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/trezcool/studyflow/core/course"
)

// Sort keys
const (
	SortDueDate  = "dueDate"
	SortPriority = "priority"
	SortCourse   = "course"
	SortTitle    = "title"
)

var priorityRanks = map[string]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

// PriorityRank orders priorities; unknown priorities rank lowest.
func PriorityRank(priority string) int {
	return priorityRanks[priority]
}

// Filter selects assignments; empty or "all" fields match everything.
type Filter struct {
	// Search is matched case-insensitively against the title and the course name.
	Search   string
	Status   string
	Priority string
}

func (f Filter) matchesStatus(a Assignment) bool {
	return f.Status == "" || f.Status == FilterAll || a.Status == f.Status
}

func (f Filter) matchesPriority(a Assignment) bool {
	return f.Priority == "" || f.Priority == FilterAll || a.Priority == f.Priority
}

func (f Filter) matchesSearch(a Assignment, courses []course.Course) bool {
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(a.Title), term) {
		return true
	}
	return strings.Contains(strings.ToLower(course.Resolve(a.CourseID, courses).Name), term)
}

// FilterAssignments returns the assignments matching every criterion of `f`, in input order.
func FilterAssignments(assignments []Assignment, f Filter, courses []course.Course) []Assignment {
	filtered := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if f.matchesStatus(a) && f.matchesPriority(a) && f.matchesSearch(a, courses) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// IsSortKey reports whether SortAssignments knows `key`.
func IsSortKey(key string) bool {
	switch key {
	case SortDueDate, SortPriority, SortCourse, SortTitle:
		return true
	}
	return false
}

// SortAssignments returns a stably sorted copy of `assignments`.
// An unknown key keeps the input order.
func SortAssignments(assignments []Assignment, key string, courses []course.Course) []Assignment {
	sorted := make([]Assignment, len(assignments))
	copy(sorted, assignments)

	var less func(i, j int) bool
	switch key {
	case SortDueDate:
		less = func(i, j int) bool { return sorted[i].DueDate.Before(sorted[j].DueDate) }
	case SortPriority:
		less = func(i, j int) bool { return PriorityRank(sorted[i].Priority) > PriorityRank(sorted[j].Priority) }
	case SortCourse:
		coll := collate.New(language.English)
		names := make(map[int]string, len(courses))
		for _, a := range sorted {
			if _, ok := names[a.CourseID]; !ok {
				names[a.CourseID] = course.Resolve(a.CourseID, courses).Name
			}
		}
		less = func(i, j int) bool {
			return coll.CompareString(names[sorted[i].CourseID], names[sorted[j].CourseID]) < 0
		}
	case SortTitle:
		coll := collate.New(language.English)
		less = func(i, j int) bool { return coll.CompareString(sorted[i].Title, sorted[j].Title) < 0 }
	default:
		return sorted
	}

	sort.SliceStable(sorted, less)
	return sorted
}
