package grade

import (
	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
)

type CourseResult struct {
	CourseID   int     `json:"courseId"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Credits    int     `json:"credits"`
	Percentage float64 `json:"percentage"`
	Letter
}

type Report struct {
	OverallGPA        float64        `json:"overallGPA"` // credit-weighted percentage
	GradePointAverage float64        `json:"gradePointAverage"`
	Letter            string         `json:"letter"`
	TotalCredits      int            `json:"totalCredits"`
	Courses           []CourseResult `json:"courses"`
}

// NewReport builds the GPA report of every course.
func NewReport(courses []course.Course, assignments []assignment.Assignment) Report {
	rep := Report{
		OverallGPA:        OverallGPA(courses, assignments),
		GradePointAverage: GradePointAverage(courses, assignments),
		Courses:           make([]CourseResult, 0, len(courses)),
	}
	rep.Letter = LetterFor(rep.OverallGPA).Letter

	for _, c := range courses {
		pct := CourseGrade(c, ForCourse(c.ID, assignments))
		rep.Courses = append(rep.Courses, CourseResult{
			CourseID:   c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Credits:    c.Credits,
			Percentage: pct,
			Letter:     LetterFor(pct),
		})
		if c.Credits > 0 {
			rep.TotalCredits += c.Credits
		}
	}
	return rep
}

// WithCurrentGrades returns a copy of `courses` whose CurrentGrade is recomputed from `assignments`.
func WithCurrentGrades(courses []course.Course, assignments []assignment.Assignment) []course.Course {
	updated := make([]course.Course, 0, len(courses))
	for _, c := range courses {
		c.CurrentGrade = CourseGrade(c, ForCourse(c.ID, assignments))
		updated = append(updated, c)
	}
	return updated
}
