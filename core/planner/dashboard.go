// Package planner builds the dashboard & calendar views from the working set of courses & assignments.
package planner

import (
	"sort"
	"time"

	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	"github.com/trezcool/studyflow/core/due"
	"github.com/trezcool/studyflow/core/grade"
)

const (
	upcomingWindowDays = 7
	upcomingLimit      = 5
)

// Item is an assignment decorated for display.
type Item struct {
	assignment.Assignment
	Course  course.Display `json:"course"`
	Urgency due.Urgency    `json:"urgency"`
}

// NewItem decorates `a` with its course display & urgency.
func NewItem(a assignment.Assignment, courses []course.Course, now time.Time, vocab due.Vocabulary) Item {
	return Item{
		Assignment: a,
		Course:     course.Resolve(a.CourseID, courses),
		Urgency:    due.Classify(a.DueDate, now, vocab),
	}
}

// Items decorates every assignment of `list`.
func Items(list []assignment.Assignment, courses []course.Course, now time.Time, vocab due.Vocabulary) []Item {
	items := make([]Item, 0, len(list))
	for _, a := range list {
		items = append(items, NewItem(a, courses, now, vocab))
	}
	return items
}

type Dashboard struct {
	TotalAssignments     int     `json:"totalAssignments"`
	CompletedAssignments int     `json:"completedAssignments"`
	PendingAssignments   int     `json:"pendingAssignments"`
	CompletionRate       float64 `json:"completionRate"` // percentage
	ActiveCourses        int     `json:"activeCourses"`
	OverallGPA           float64 `json:"overallGPA"`
	Letter               string  `json:"letter"`
	Upcoming             []Item  `json:"upcoming"`
	Overdue              []Item  `json:"overdue"`
}

// NewDashboard computes the dashboard statistics at `now`.
func NewDashboard(courses []course.Course, assignments []assignment.Assignment, now time.Time) Dashboard {
	dash := Dashboard{
		TotalAssignments: len(assignments),
		ActiveCourses:    len(courses),
		OverallGPA:       grade.OverallGPA(courses, assignments),
	}
	dash.Letter = grade.LetterFor(dash.OverallGPA).Letter

	windowEnd := now.AddDate(0, 0, upcomingWindowDays)
	var upcoming, overdue []assignment.Assignment
	for _, a := range assignments {
		if a.IsCompleted() {
			dash.CompletedAssignments++
			continue
		}
		if a.DueDate.After(now) && a.DueDate.Before(windowEnd) {
			upcoming = append(upcoming, a)
		} else if a.DueDate.Before(now) {
			overdue = append(overdue, a)
		}
	}
	dash.PendingAssignments = dash.TotalAssignments - dash.CompletedAssignments
	if dash.TotalAssignments > 0 {
		dash.CompletionRate = float64(dash.CompletedAssignments) / float64(dash.TotalAssignments) * 100
	}

	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].DueDate.Before(upcoming[j].DueDate) })
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}

	dash.Upcoming = Items(upcoming, courses, now, due.Dashboard)
	dash.Overdue = Items(overdue, courses, now, due.Dashboard)
	return dash
}
