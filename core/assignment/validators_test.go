package assignment_test

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	testutil "github.com/trezcool/studyflow/tests"
)

var courses = []course.Course{
	{ID: 1, Name: "Calculus II", GradeCategories: course.DefaultGradeCategories()},
	{ID: 2, Name: "Reading Club"},
}

func fieldErr(t *testing.T, err error) core.FieldError {
	t.Helper()
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	return verr.Fields[0]
}

func TestNewAssignment_Validate(t *testing.T) {
	validate := testutil.NewValidator()
	due := time.Date(2024, 10, 20, 23, 59, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		na := assignment.NewAssignment{CourseID: 1, Title: "  Problem set  ", DueDate: due, Category: "Homework"}
		require.NoError(t, na.Validate(validate, courses))
		assert.Equal(t, "Problem set", na.Title)
		assert.Equal(t, assignment.PriorityMedium, na.Priority)
		assert.Equal(t, assignment.StatusPending, na.Status)
	})

	t.Run("course without categories accepts any category", func(t *testing.T) {
		na := assignment.NewAssignment{CourseID: 2, Title: "Chapter 3", DueDate: due, Category: "Whatever"}
		assert.NoError(t, na.Validate(validate, courses))
	})

	t.Run("missing fields", func(t *testing.T) {
		na := assignment.NewAssignment{Priority: "urgent"}
		err := na.Validate(validate, courses)
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		assert.ElementsMatch(t, []string{"courseId", "title", "dueDate", "priority"}, fields)
	})

	t.Run("grade range", func(t *testing.T) {
		for _, tt := range []struct {
			grade null.Float64
			ok    bool
		}{
			{null.Float64{}, true},
			{null.Float64From(0), true},
			{null.Float64From(150), true},
			{null.Float64From(-1), false},
			{null.Float64From(150.5), false},
		} {
			na := assignment.NewAssignment{CourseID: 1, Title: "Quiz", DueDate: due, Category: "Quizzes", Grade: tt.grade}
			err := na.Validate(validate, courses)
			if tt.ok {
				assert.NoError(t, err, "grade %v", tt.grade)
			} else {
				assert.Error(t, err, "grade %v", tt.grade)
			}
		}
	})

	t.Run("course not found", func(t *testing.T) {
		na := assignment.NewAssignment{CourseID: 42, Title: "Quiz", DueDate: due}
		assert.Equal(t, core.FieldError{Field: "courseId", Error: "course not found"}, fieldErr(t, na.Validate(validate, courses)))
	})

	t.Run("unknown category suggests the closest one", func(t *testing.T) {
		na := assignment.NewAssignment{CourseID: 1, Title: "Quiz", DueDate: due, Category: "quizes"}
		fe := fieldErr(t, na.Validate(validate, courses))
		assert.Equal(t, "category", fe.Field)
		assert.Contains(t, fe.Error, `did you mean "Quizzes"?`)
	})

	t.Run("unknown category without suggestion", func(t *testing.T) {
		na := assignment.NewAssignment{CourseID: 1, Title: "Quiz", DueDate: due, Category: "xyz"}
		fe := fieldErr(t, na.Validate(validate, courses))
		assert.Equal(t, `"xyz" is not a grade category of Calculus II`, fe.Error)
	})
}

func TestUpdateAssignment_Validate(t *testing.T) {
	validate := testutil.NewValidator()
	orig := assignment.Assignment{
		ID:            7,
		CourseID:      1,
		Title:         "Problem set",
		DueDate:       time.Date(2024, 10, 20, 23, 59, 0, 0, time.UTC),
		Priority:      assignment.PriorityLow,
		Status:        assignment.StatusPending,
		Grade:         null.Float64From(80),
		Category:      "Homework",
		EstimatedTime: null.Float64From(2),
		Notes:         "pages 10-12",
	}

	t.Run("empty fields keep original values", func(t *testing.T) {
		ua := assignment.UpdateAssignment{Status: assignment.StatusCompleted, Grade: null.Float64From(95)}
		merged, err := ua.Validate(orig, validate, courses)
		require.NoError(t, err)
		assert.Equal(t, orig.Title, merged.Title)
		assert.Equal(t, orig.Category, merged.Category)
		assert.Equal(t, orig.Notes, merged.Notes)
		assert.Equal(t, assignment.StatusCompleted, merged.Status)
		assert.Equal(t, null.Float64From(95), merged.Grade)
		assert.False(t, merged.EstimatedTime.Valid, "estimated time replaced as given")
	})

	t.Run("moving to another course checks the category", func(t *testing.T) {
		category := "Homework"
		ua := assignment.UpdateAssignment{CourseID: 2, Category: &category}
		_, err := ua.Validate(orig, validate, courses)
		assert.NoError(t, err)

		ua = assignment.UpdateAssignment{CourseID: 42}
		_, err = ua.Validate(orig, validate, courses)
		assert.Equal(t, "courseId", fieldErr(t, err).Field)
	})
}

func TestUpdateStatus_Validate(t *testing.T) {
	validate := testutil.NewValidator()

	us := assignment.UpdateStatus{Status: " Completed "}
	require.NoError(t, us.Validate(validate))
	assert.Equal(t, assignment.StatusCompleted, us.Status)

	us = assignment.UpdateStatus{Status: "done"}
	assert.Error(t, us.Validate(validate))
}
