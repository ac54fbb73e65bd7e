package course

import (
	"context"
	"errors"
)

var (
	// errors
	ErrNotFound = errors.New("course not found")
)

type (
	Repository interface {
		// CreateCourse stores a new course. Replaying the same idempotencyKey returns the course
		// created by the first call instead of creating another one.
		CreateCourse(ctx context.Context, c Course, idempotencyKey string) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a validated NewCourse. The cached grade starts at 0.
func (svc *Service) Create(ctx context.Context, nc NewCourse, idempotencyKey string) (Course, error) {
	c := Course{
		Name:            nc.Name,
		Professor:       nc.Professor,
		Description:     nc.Description,
		Credits:         nc.Credits,
		Color:           nc.Color,
		Semester:        nc.Semester,
		Schedule:        nc.Schedule,
		GradeCategories: nc.GradeCategories,
		CurrentGrade:    0,
	}
	return svc.repo.CreateCourse(ctx, c, idempotencyKey)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

// Update replaces `orig` with the merged & validated `nc`.
func (svc *Service) Update(ctx context.Context, orig Course, nc NewCourse) (Course, error) {
	c := Course{
		ID:              orig.ID,
		Name:            nc.Name,
		Professor:       nc.Professor,
		Description:     nc.Description,
		Credits:         nc.Credits,
		Color:           nc.Color,
		Semester:        nc.Semester,
		Schedule:        nc.Schedule,
		GradeCategories: nc.GradeCategories,
		CurrentGrade:    orig.CurrentGrade,
	}
	return svc.repo.UpdateCourse(ctx, c)
}

// SetCurrentGrade refreshes the cached grade of a course.
func (svc *Service) SetCurrentGrade(ctx context.Context, c Course, grade float64) (Course, error) {
	if c.CurrentGrade == grade {
		return c, nil
	}
	c.CurrentGrade = grade
	return svc.repo.UpdateCourse(ctx, c)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}
