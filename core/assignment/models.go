package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/course"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// FilterAll disables a status or priority filter.
const FilterAll = "all"

var (
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
	Statuses   = []string{StatusPending, StatusInProgress, StatusCompleted}
)

type Assignment struct {
	ID            int          `json:"Id"`
	CourseID      int          `json:"courseId"`
	Title         string       `json:"title"`
	DueDate       time.Time    `json:"dueDate"`
	Priority      string       `json:"priority"`
	Status        string       `json:"status"`
	Grade         null.Float64 `json:"grade"` // percentage; null when ungraded
	Category      string       `json:"category"`
	EstimatedTime null.Float64 `json:"estimatedTime"` // hours
	Notes         string       `json:"notes"`
}

func (a Assignment) IsCompleted() bool { return a.Status == StatusCompleted }
func (a Assignment) IsGraded() bool    { return a.Grade.Valid }

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	CourseID      int          `json:"courseId" validate:"required"`
	Title         string       `json:"title" validate:"required"`
	DueDate       time.Time    `json:"dueDate" validate:"required"`
	Priority      string       `json:"priority" validate:"oneof=low medium high"`
	Status        string       `json:"status" validate:"oneof=pending in-progress completed"`
	Grade         null.Float64 `json:"grade" validate:"omitempty,gte=0,lte=150"`
	Category      string       `json:"category"`
	EstimatedTime null.Float64 `json:"estimatedTime" validate:"omitempty,gt=0"`
	Notes         string       `json:"notes"`
}

func (na *NewAssignment) clean() {
	na.Title = core.CleanString(na.Title)
	na.Priority = core.CleanString(na.Priority, true /* lower */)
	na.Status = core.CleanString(na.Status, true /* lower */)
	na.Category = core.CleanString(na.Category)
	na.Notes = core.CleanString(na.Notes)
}

// Validate applies the create defaults then checks the assignment against its course.
func (na *NewAssignment) Validate(validate *validator.Validate, courses []course.Course) error {
	na.clean()
	if na.Priority == "" {
		na.Priority = PriorityMedium
	}
	if na.Status == "" {
		na.Status = StatusPending
	}
	if err := validate.Struct(na); err != nil {
		return err
	}
	return validateCourseAndCategory(na.CourseID, na.Category, courses)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
// Fields left empty keep their original value; `grade` & `estimatedTime` are replaced as given.
type UpdateAssignment struct {
	CourseID      int          `json:"courseId"`
	Title         string       `json:"title"`
	DueDate       time.Time    `json:"dueDate"`
	Priority      string       `json:"priority"`
	Status        string       `json:"status"`
	Grade         null.Float64 `json:"grade"`
	Category      *string      `json:"category"`
	EstimatedTime null.Float64 `json:"estimatedTime"`
	Notes         *string      `json:"notes"`
}

// Validate merges `ua` over `orig` and checks the result as a NewAssignment would be.
func (ua *UpdateAssignment) Validate(orig Assignment, validate *validator.Validate, courses []course.Course) (NewAssignment, error) {
	merged := NewAssignment{
		CourseID:      orig.CourseID,
		Title:         orig.Title,
		DueDate:       orig.DueDate,
		Priority:      orig.Priority,
		Status:        orig.Status,
		Grade:         ua.Grade,
		Category:      orig.Category,
		EstimatedTime: ua.EstimatedTime,
		Notes:         orig.Notes,
	}
	if ua.CourseID != 0 {
		merged.CourseID = ua.CourseID
	}
	if title := core.CleanString(ua.Title); title != "" {
		merged.Title = title
	}
	if !ua.DueDate.IsZero() {
		merged.DueDate = ua.DueDate
	}
	if ua.Priority != "" {
		merged.Priority = ua.Priority
	}
	if ua.Status != "" {
		merged.Status = ua.Status
	}
	if ua.Category != nil {
		merged.Category = *ua.Category
	}
	if ua.Notes != nil {
		merged.Notes = *ua.Notes
	}

	if err := merged.Validate(validate, courses); err != nil {
		return NewAssignment{}, err
	}
	return merged, nil
}

// UpdateStatus is the payload of a status toggle.
type UpdateStatus struct {
	Status string `json:"status" validate:"required,oneof=pending in-progress completed"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

// Toggled returns the status a completion checkbox switches to.
func Toggled(status string) string {
	if status == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// QueryFilter holds the assignment list query parameters.
type QueryFilter struct {
	CourseID int    `query:"course_id"`
	Search   string `query:"search"`
	Status   string `query:"status"`
	Priority string `query:"priority"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Priority = core.CleanString(qf.Priority, true /* lower */)
}

func (qf QueryFilter) Filter() Filter {
	return Filter{Search: qf.Search, Status: qf.Status, Priority: qf.Priority}
}
