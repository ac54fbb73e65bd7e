// Package grade computes course grades from weighted categories, what-if projections
// and credit-weighted GPAs. Every function is pure and never fails: malformed numbers count as 0.
package grade

import (
	"math"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
)

type Letter struct {
	Letter string  `json:"letter"`
	Point  float64 `json:"point"`
}

// letter scale, ordered by inclusive lower bound
var scale = []struct {
	min float64
	Letter
}{
	{97, Letter{"A+", 4.0}},
	{93, Letter{"A", 4.0}},
	{90, Letter{"A-", 3.7}},
	{87, Letter{"B+", 3.3}},
	{83, Letter{"B", 3.0}},
	{80, Letter{"B-", 2.7}},
	{77, Letter{"C+", 2.3}},
	{73, Letter{"C", 2.0}},
	{70, Letter{"C-", 1.7}},
	{67, Letter{"D+", 1.3}},
	{65, Letter{"D", 1.0}},
}

var letterF = Letter{"F", 0.0}

// LetterFor maps a percentage to its letter grade & grade point.
func LetterFor(percentage float64) Letter {
	for _, s := range scale {
		if percentage >= s.min {
			return s.Letter
		}
	}
	return letterF
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// categoryAverage returns the mean grade of the graded assignments of `category`.
func categoryAverage(category string, assignments []assignment.Assignment) (avg float64, count int) {
	var sum float64
	for _, a := range assignments {
		if a.Category == category && a.Grade.Valid {
			sum += finite(a.Grade.Float64)
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return sum / float64(count), count
}

// CourseGrade returns the grade so far of a course: the sum of each graded category's
// average weighted by weight/100. Categories without graded work contribute nothing,
// and the sum is not rescaled by the weight of the graded categories.
func CourseGrade(c course.Course, assignments []assignment.Assignment) float64 {
	var weightedSum, totalWeight float64
	for _, cat := range c.GradeCategories {
		avg, count := categoryAverage(cat.Name, assignments)
		if count == 0 {
			continue
		}
		weight := finite(cat.Weight) / 100
		weightedSum += avg * weight
		totalWeight += weight
	}
	if totalWeight > 0 {
		return weightedSum
	}
	return 0
}

// WhatIf projects a course grade where `overrides` (category name -> percentage) stand in
// for the category averages. Categories with neither an override nor graded work count as 0,
// and every category adds its weight to the total.
func WhatIf(c course.Course, assignments []assignment.Assignment, overrides map[string]float64) float64 {
	var weightedSum, totalWeight float64
	for _, cat := range c.GradeCategories {
		var avg float64
		if override, ok := overrides[cat.Name]; ok {
			avg = finite(override)
		} else {
			avg, _ = categoryAverage(cat.Name, assignments)
		}
		weight := finite(cat.Weight) / 100
		weightedSum += avg * weight
		totalWeight += weight
	}
	if totalWeight > 0 {
		return weightedSum
	}
	return 0
}

// ForCourse returns the assignments of `courseID`.
func ForCourse(courseID int, assignments []assignment.Assignment) []assignment.Assignment {
	list := make([]assignment.Assignment, 0)
	for _, a := range assignments {
		if a.CourseID == courseID {
			list = append(list, a)
		}
	}
	return list
}

func credits(c course.Course) float64 {
	if c.Credits < 0 {
		return 0
	}
	return float64(c.Credits)
}

// OverallGPA returns the credit-weighted mean of the course grades (a percentage).
func OverallGPA(courses []course.Course, assignments []assignment.Assignment) float64 {
	var weighted, totalCredits float64
	for _, c := range courses {
		cr := credits(c)
		weighted += CourseGrade(c, ForCourse(c.ID, assignments)) * cr
		totalCredits += cr
	}
	if totalCredits == 0 {
		return 0
	}
	return weighted / totalCredits
}

// GradePointAverage returns the credit-weighted mean of the course grade points (4.0 scale).
func GradePointAverage(courses []course.Course, assignments []assignment.Assignment) float64 {
	var weighted, totalCredits float64
	for _, c := range courses {
		cr := credits(c)
		weighted += LetterFor(CourseGrade(c, ForCourse(c.ID, assignments))).Point * cr
		totalCredits += cr
	}
	if totalCredits == 0 {
		return 0
	}
	return weighted / totalCredits
}

// CategoryResult is one row of a course grade breakdown.
type CategoryResult struct {
	Name         string       `json:"name"`
	Weight       float64      `json:"weight"`
	Average      null.Float64 `json:"average"` // null without graded work
	GradedCount  int          `json:"gradedCount"`
	Contribution float64      `json:"contribution"`
}

// Breakdown details how each grade category contributes to CourseGrade.
func Breakdown(c course.Course, assignments []assignment.Assignment) []CategoryResult {
	results := make([]CategoryResult, 0, len(c.GradeCategories))
	for _, cat := range c.GradeCategories {
		res := CategoryResult{Name: cat.Name, Weight: finite(cat.Weight)}
		avg, count := categoryAverage(cat.Name, assignments)
		if count > 0 {
			res.Average = null.Float64From(avg)
			res.GradedCount = count
			res.Contribution = avg * res.Weight / 100
		}
		results = append(results, res)
	}
	return results
}
