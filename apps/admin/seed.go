package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
)

type seedAssignment struct {
	course   int // index in seedCourses
	title    string
	dueIn    time.Duration
	priority string
	status   string
	category string
	grade    null.Float64
	hours    null.Float64
}

var (
	seedCourses = []course.NewCourse{
		{
			Name:      "Calculus II",
			Professor: "Dr. Sarah Chen",
			Credits:   4,
			Color:     course.Palette[0].Value,
			Schedule:  []course.ScheduleSlot{{Days: []string{course.Monday, course.Wednesday, course.Friday}, Time: "10:00 AM"}},
		},
		{
			Name:      "Organic Chemistry",
			Professor: "Dr. Michael Torres",
			Credits:   4,
			Color:     course.Palette[1].Value,
			Schedule:  []course.ScheduleSlot{{Days: []string{course.Tuesday, course.Thursday}, Time: "1:30 PM"}},
			GradeCategories: []course.GradeCategory{
				{Name: "Homework", Weight: 15},
				{Name: "Labs", Weight: 25},
				{Name: "Midterm", Weight: 25},
				{Name: "Final", Weight: 35},
			},
		},
		{
			Name:      "World History",
			Professor: "Prof. Emily Davis",
			Credits:   3,
			Color:     course.Palette[2].Value,
			Schedule:  []course.ScheduleSlot{{Days: []string{course.Tuesday, course.Thursday}, Time: "9:00 AM"}},
		},
	}

	day             = 24 * time.Hour
	seedAssignments = []seedAssignment{
		{course: 0, title: "Problem Set 5", dueIn: -2 * day, priority: assignment.PriorityHigh, status: assignment.StatusCompleted, category: "Homework", grade: null.Float64From(92), hours: null.Float64From(3)},
		{course: 0, title: "Problem Set 6", dueIn: 12 * time.Hour, priority: assignment.PriorityHigh, status: assignment.StatusInProgress, category: "Homework", hours: null.Float64From(3)},
		{course: 0, title: "Midterm Exam", dueIn: 9 * day, priority: assignment.PriorityHigh, status: assignment.StatusPending, category: "Midterm"},
		{course: 1, title: "Lab Report 3", dueIn: -1 * day, priority: assignment.PriorityMedium, status: assignment.StatusPending, category: "Labs", hours: null.Float64From(4)},
		{course: 1, title: "Reaction Mechanisms Quiz Prep", dueIn: 2 * day, priority: assignment.PriorityMedium, status: assignment.StatusPending, category: "Homework"},
		{course: 1, title: "Lab Report 2", dueIn: -8 * day, priority: assignment.PriorityMedium, status: assignment.StatusCompleted, category: "Labs", grade: null.Float64From(85)},
		{course: 2, title: "Essay: Industrial Revolution", dueIn: 5 * day, priority: assignment.PriorityLow, status: assignment.StatusPending, category: "Homework", hours: null.Float64From(6)},
		{course: 2, title: "Quiz 4", dueIn: -5 * day, priority: assignment.PriorityLow, status: assignment.StatusCompleted, category: "Quizzes", grade: null.Float64From(78)},
	}
)

// seed creates the sample data. Idempotency keys make reruns against a persistent store no-ops.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	now := cli.now()

	created := make([]course.Course, 0, len(seedCourses))
	for i, nc := range seedCourses {
		nc := nc
		nc.Schedule = append([]course.ScheduleSlot(nil), nc.Schedule...)
		if err := nc.Validate(cli.validate); err != nil {
			return errors.Wrapf(err, "validating course %q", nc.Name)
		}
		c, err := cli.courseSvc.Create(ctx, nc, fmt.Sprintf("seed-course-%d", i))
		if err != nil {
			return errors.Wrapf(err, "creating course %q", nc.Name)
		}
		created = append(created, c)
	}

	for i, sa := range seedAssignments {
		na := assignment.NewAssignment{
			CourseID:      created[sa.course].ID,
			Title:         sa.title,
			DueDate:       now.Add(sa.dueIn).Truncate(time.Minute),
			Priority:      sa.priority,
			Status:        sa.status,
			Grade:         sa.grade,
			Category:      sa.category,
			EstimatedTime: sa.hours,
		}
		if err := na.Validate(cli.validate, created); err != nil {
			return errors.Wrapf(err, "validating assignment %q", sa.title)
		}
		if _, err := cli.asgSvc.Create(ctx, na, fmt.Sprintf("seed-assignment-%d", i)); err != nil {
			return errors.Wrapf(err, "creating assignment %q", sa.title)
		}
	}

	fmt.Fprintf(cli.out, "seeded %d courses and %d assignments\n", len(created), len(seedAssignments))
	return nil
}
