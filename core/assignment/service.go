package assignment

import (
	"context"
	"errors"

	"github.com/trezcool/studyflow/core/course"
)

var (
	// errors
	ErrNotFound = errors.New("assignment not found")
)

type (
	Repository interface {
		// CreateAssignment stores a new assignment. Replaying the same idempotencyKey returns the
		// assignment created by the first call instead of creating another one.
		CreateAssignment(ctx context.Context, a Assignment, idempotencyKey string) (Assignment, error)
		// QueryAssignments returns every assignment, or only those of `courseID` when non-zero.
		QueryAssignments(ctx context.Context, courseID int) ([]Assignment, error)
		GetAssignmentByID(ctx context.Context, id int) (Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		DeleteAssignmentsByID(ctx context.Context, ids ...int) error
	}

	CourseLister interface {
		QueryAll(ctx context.Context) ([]course.Course, error)
	}

	Service struct {
		repo    Repository
		courses CourseLister
	}
)

func NewService(repo Repository, courses CourseLister) *Service {
	return &Service{repo: repo, courses: courses}
}

func (svc *Service) fromNew(id int, na NewAssignment) Assignment {
	return Assignment{
		ID:            id,
		CourseID:      na.CourseID,
		Title:         na.Title,
		DueDate:       na.DueDate.UTC(),
		Priority:      na.Priority,
		Status:        na.Status,
		Grade:         na.Grade,
		Category:      na.Category,
		EstimatedTime: na.EstimatedTime,
		Notes:         na.Notes,
	}
}

func (svc *Service) Create(ctx context.Context, na NewAssignment, idempotencyKey string) (Assignment, error) {
	return svc.repo.CreateAssignment(ctx, svc.fromNew(0, na), idempotencyKey)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, 0)
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID int) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, courseID)
}

// Query filters & sorts the assignments. The course filter runs in the backend,
// the rest runs over the fetched working set.
func (svc *Service) Query(ctx context.Context, filter QueryFilter, sortKey string) ([]Assignment, []course.Course, error) {
	courses, err := svc.courses.QueryAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	list, err := svc.repo.QueryAssignments(ctx, filter.CourseID)
	if err != nil {
		return nil, nil, err
	}
	list = FilterAssignments(list, filter.Filter(), courses)
	if sortKey != "" {
		list = SortAssignments(list, sortKey, courses)
	}
	return list, courses, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

// Update replaces `orig` with the merged & validated `na`.
func (svc *Service) Update(ctx context.Context, orig Assignment, na NewAssignment) (Assignment, error) {
	return svc.repo.UpdateAssignment(ctx, svc.fromNew(orig.ID, na))
}

// SetStatus changes the status of `a` only.
func (svc *Service) SetStatus(ctx context.Context, a Assignment, status string) (Assignment, error) {
	if a.Status == status {
		return a, nil
	}
	a.Status = status
	return svc.repo.UpdateAssignment(ctx, a)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteAssignmentsByID(ctx, ids...)
}
