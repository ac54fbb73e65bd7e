package records_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	"github.com/trezcool/studyflow/storage/records"
	testutil "github.com/trezcool/studyflow/tests"
)

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStack(t)

	c := course.Course{Name: "Calculus II", Credits: 4, Color: course.DefaultColor, GradeCategories: course.DefaultGradeCategories()}
	first, err := s.CourseRepo.CreateCourse(ctx, c, "create-calc")
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, []course.ScheduleSlot{}, first.Schedule)

	replay, err := s.CourseRepo.CreateCourse(ctx, c, "create-calc")
	require.NoError(t, err)
	assert.Equal(t, first, replay)

	second := testutil.CreateCourse(t, s.CourseRepo, "World History", 3)
	assert.Equal(t, 2, second.ID)

	all, err := s.CourseRepo.QueryAllCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []course.Course{first, second}, all)

	first.CurrentGrade = 91.5
	updated, err := s.CourseRepo.UpdateCourse(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first, updated)

	got, err := s.CourseRepo.GetCourseByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 91.5, got.CurrentGrade)

	require.NoError(t, s.CourseRepo.DeleteCoursesByID(ctx, first.ID, 42))
	_, err = s.CourseRepo.GetCourseByID(ctx, first.ID)
	assert.Equal(t, course.ErrNotFound, err)
	_, err = s.CourseRepo.UpdateCourse(ctx, first)
	assert.Equal(t, course.ErrNotFound, err)
	assert.NoError(t, s.CourseRepo.DeleteCoursesByID(ctx))
}

func TestAssignmentRepository(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStack(t)
	calc := testutil.CreateCourse(t, s.CourseRepo, "Calculus II", 4)
	hist := testutil.CreateCourse(t, s.CourseRepo, "World History", 3)
	due := time.Now().Truncate(time.Second)

	ps := testutil.CreateAssignment(t, s.AssignRepo, calc.ID, "Problem set", "Homework", due, 88)
	essay := testutil.CreateAssignment(t, s.AssignRepo, hist.ID, "Essay", "Final", due.Add(time.Hour), -1)
	assert.Equal(t, null.Float64From(88), ps.Grade)
	assert.False(t, essay.Grade.Valid)
	assert.True(t, due.Equal(ps.DueDate))

	all, err := s.AssignRepo.QueryAssignments(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []assignment.Assignment{ps, essay}, all)

	byCourse, err := s.AssignRepo.QueryAssignments(ctx, hist.ID)
	require.NoError(t, err)
	assert.Equal(t, []assignment.Assignment{essay}, byCourse)

	essay.Status = assignment.StatusCompleted
	essay.Grade = null.Float64From(93)
	updated, err := s.AssignRepo.UpdateAssignment(ctx, essay)
	require.NoError(t, err)
	assert.Equal(t, essay, updated)

	// clearing a grade is persisted
	updated.Grade = null.Float64{}
	updated, err = s.AssignRepo.UpdateAssignment(ctx, updated)
	require.NoError(t, err)
	got, err := s.AssignRepo.GetAssignmentByID(ctx, essay.ID)
	require.NoError(t, err)
	assert.False(t, got.Grade.Valid)

	require.NoError(t, s.AssignRepo.DeleteAssignmentsByID(ctx, ps.ID))
	_, err = s.AssignRepo.GetAssignmentByID(ctx, ps.ID)
	assert.Equal(t, assignment.ErrNotFound, err)
}

func TestRepository_storeClosed(t *testing.T) {
	s := testutil.NewStack(t)
	require.NoError(t, s.DB.Close())

	_, err := s.CourseRepo.QueryAllCourses(context.Background())
	assert.Error(t, err)
	_, err = s.AssignRepo.GetAssignmentByID(context.Background(), 1)
	assert.Error(t, err)
	_, ok := err.(*records.BackendError)
	assert.False(t, ok, "transport failures are not backend errors")
}
