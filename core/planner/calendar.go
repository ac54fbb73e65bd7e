package planner

import (
	"sort"
	"time"

	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	"github.com/trezcool/studyflow/core/due"
)

const dayLayout = "2006-01-02"

// Calendar views
const (
	ViewMonth = "month"
	ViewWeek  = "week"
	ViewDay   = "day"
)

type Day struct {
	Date    string `json:"date"`
	InMonth bool   `json:"inMonth"`
	Today   bool   `json:"today"`
	Items   []Item `json:"assignments"`
}

type Calendar struct {
	View  string  `json:"view"`
	Title string  `json:"title"`
	From  string  `json:"from"`
	To    string  `json:"to"`
	Weeks [][]Day `json:"weeks"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Sunday starting the week of `t`.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// OnDay returns the assignments due on the calendar day of `date`, sorted by due date.
func OnDay(date time.Time, assignments []assignment.Assignment) []assignment.Assignment {
	list := make([]assignment.Assignment, 0)
	for _, a := range assignments {
		if sameDay(a.DueDate.In(date.Location()), date) {
			list = append(list, a)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].DueDate.Before(list[j].DueDate) })
	return list
}

type builder struct {
	courses     []course.Course
	assignments []assignment.Assignment
	now         time.Time
	month       time.Month
}

func (b builder) day(date time.Time) Day {
	return Day{
		Date:    date.Format(dayLayout),
		InMonth: date.Month() == b.month,
		Today:   sameDay(date, b.now),
		Items:   Items(OnDay(date, b.assignments), b.courses, b.now, due.List),
	}
}

func (b builder) weeks(from, to time.Time) [][]Day {
	weeks := make([][]Day, 0, 6)
	for wk := from; !wk.After(to); wk = wk.AddDate(0, 0, 7) {
		week := make([]Day, 0, 7)
		for i := 0; i < 7; i++ {
			week = append(week, b.day(wk.AddDate(0, 0, i)))
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// Month returns the Sunday-start weeks covering the month of `date`.
func Month(date time.Time, courses []course.Course, assignments []assignment.Assignment, now time.Time) Calendar {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	last := first.AddDate(0, 1, -1)
	from := startOfWeek(first)
	to := startOfWeek(last).AddDate(0, 0, 6)

	b := builder{courses: courses, assignments: assignments, now: now, month: first.Month()}
	return Calendar{
		View:  ViewMonth,
		Title: first.Format("January 2006"),
		From:  from.Format(dayLayout),
		To:    to.Format(dayLayout),
		Weeks: b.weeks(from, to),
	}
}

// Week returns the Sunday-start week containing `date`.
func Week(date time.Time, courses []course.Course, assignments []assignment.Assignment, now time.Time) Calendar {
	from := startOfWeek(date)
	to := from.AddDate(0, 0, 6)

	b := builder{courses: courses, assignments: assignments, now: now, month: date.Month()}
	return Calendar{
		View:  ViewWeek,
		Title: from.Format("Jan 2") + " - " + to.Format("Jan 2, 2006"),
		From:  from.Format(dayLayout),
		To:    to.Format(dayLayout),
		Weeks: b.weeks(from, from),
	}
}

// SingleDay returns the calendar day of `date`.
func SingleDay(date time.Time, courses []course.Course, assignments []assignment.Assignment, now time.Time) Calendar {
	day := startOfDay(date)
	b := builder{courses: courses, assignments: assignments, now: now, month: day.Month()}
	return Calendar{
		View:  ViewDay,
		Title: day.Format("Monday, January 2, 2006"),
		From:  day.Format(dayLayout),
		To:    day.Format(dayLayout),
		Weeks: [][]Day{{b.day(day)}},
	}
}
