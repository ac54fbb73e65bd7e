package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studyflow/core"
)

// Weekday codes used in schedules.
const (
	Monday    = "M"
	Tuesday   = "T"
	Wednesday = "W"
	Thursday  = "Th"
	Friday    = "F"
	Saturday  = "Sa"
	Sunday    = "Su"
)

// Defaults applied on create when a field is left empty.
const (
	DefaultCredits  = 3
	DefaultColor    = "#0ea5e9"
	DefaultSemester = "Fall 2024"
)

var (
	Weekdays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

	// Palette holds the course colors offered by the UI.
	Palette = []Color{
		{Name: "Blue", Value: "#0ea5e9"},
		{Name: "Green", Value: "#10b981"},
		{Name: "Purple", Value: "#8b5cf6"},
		{Name: "Pink", Value: "#ec4899"},
		{Name: "Orange", Value: "#f97316"},
		{Name: "Red", Value: "#ef4444"},
		{Name: "Indigo", Value: "#6366f1"},
		{Name: "Teal", Value: "#14b8a6"},
	}
)

// DefaultGradeCategories returns a fresh copy of the categories a new course starts with.
func DefaultGradeCategories() []GradeCategory {
	return []GradeCategory{
		{Name: "Homework", Weight: 20},
		{Name: "Quizzes", Weight: 15},
		{Name: "Midterm", Weight: 25},
		{Name: "Final", Weight: 40},
	}
}

type Color struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ScheduleSlot struct {
	Days []string `json:"days" validate:"dive,weekday"`
	Time string   `json:"time"`
}

type GradeCategory struct {
	Name   string  `json:"name" validate:"required"`
	Weight float64 `json:"weight" validate:"gte=0,lte=100"`
}

type Course struct {
	ID              int             `json:"Id"`
	Name            string          `json:"name"`
	Professor       string          `json:"professor"`
	Description     string          `json:"description"`
	Credits         int             `json:"credits"`
	Color           string          `json:"color"`
	Semester        string          `json:"semester"`
	Schedule        []ScheduleSlot  `json:"schedule"`
	GradeCategories []GradeCategory `json:"gradeCategories"`
	CurrentGrade    float64         `json:"currentGrade"` // advisory; the grade engine is authoritative
}

// CategoryNames returns the names of the course's grade categories, in order.
func (c Course) CategoryNames() []string {
	names := make([]string, 0, len(c.GradeCategories))
	for _, cat := range c.GradeCategories {
		names = append(names, cat.Name)
	}
	return names
}

// HasCategory reports whether `name` is one of the course's grade categories.
func (c Course) HasCategory(name string) bool {
	for _, cat := range c.GradeCategories {
		if cat.Name == name {
			return true
		}
	}
	return false
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name            string          `json:"name" validate:"required"`
	Professor       string          `json:"professor"`
	Description     string          `json:"description"`
	Credits         int             `json:"credits" validate:"min=1,max=12"`
	Color           string          `json:"color" validate:"hexcolor"`
	Semester        string          `json:"semester" validate:"required"`
	Schedule        []ScheduleSlot  `json:"schedule" validate:"dive"`
	GradeCategories []GradeCategory `json:"gradeCategories" validate:"dive"`
}

func (nc *NewCourse) clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Professor = core.CleanString(nc.Professor)
	nc.Description = core.CleanString(nc.Description)
	nc.Color = core.CleanString(nc.Color, true /* lower */)
	nc.Semester = core.CleanString(nc.Semester)
	for i := range nc.GradeCategories {
		nc.GradeCategories[i].Name = core.CleanString(nc.GradeCategories[i].Name)
	}
	for i := range nc.Schedule {
		nc.Schedule[i].Time = core.CleanString(nc.Schedule[i].Time)
	}
}

// Validate applies the create defaults then checks the course.
func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.clean()
	if nc.Credits == 0 {
		nc.Credits = DefaultCredits
	}
	if nc.Color == "" {
		nc.Color = DefaultColor
	}
	if nc.Semester == "" {
		nc.Semester = DefaultSemester
	}
	if nc.GradeCategories == nil {
		nc.GradeCategories = DefaultGradeCategories()
	}
	if nc.Schedule == nil {
		nc.Schedule = []ScheduleSlot{}
	}
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Fields left empty keep their original value.
type UpdateCourse struct {
	Name            string          `json:"name"`
	Professor       *string         `json:"professor"`
	Description     *string         `json:"description"`
	Credits         int             `json:"credits"`
	Color           string          `json:"color"`
	Semester        string          `json:"semester"`
	Schedule        []ScheduleSlot  `json:"schedule"`
	GradeCategories []GradeCategory `json:"gradeCategories"`
}

// Validate merges `uc` over `orig` and checks the result as a NewCourse would be.
func (uc *UpdateCourse) Validate(orig Course, validate *validator.Validate) (NewCourse, error) {
	merged := NewCourse{
		Name:            orig.Name,
		Professor:       orig.Professor,
		Description:     orig.Description,
		Credits:         orig.Credits,
		Color:           orig.Color,
		Semester:        orig.Semester,
		Schedule:        append([]ScheduleSlot(nil), orig.Schedule...),
		GradeCategories: append([]GradeCategory(nil), orig.GradeCategories...),
	}
	if name := core.CleanString(uc.Name); name != "" {
		merged.Name = name
	}
	if uc.Professor != nil {
		merged.Professor = *uc.Professor
	}
	if uc.Description != nil {
		merged.Description = *uc.Description
	}
	if uc.Credits != 0 {
		merged.Credits = uc.Credits
	}
	if color := core.CleanString(uc.Color); color != "" {
		merged.Color = color
	}
	if semester := core.CleanString(uc.Semester); semester != "" {
		merged.Semester = semester
	}
	if uc.Schedule != nil {
		merged.Schedule = uc.Schedule
	}
	if uc.GradeCategories != nil {
		merged.GradeCategories = uc.GradeCategories
	}

	merged.clean()
	if merged.Schedule == nil {
		merged.Schedule = []ScheduleSlot{}
	}
	if err := validate.Struct(&merged); err != nil {
		return NewCourse{}, err
	}
	return merged, nil
}
