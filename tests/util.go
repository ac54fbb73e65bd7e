package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	logsvc "github.com/trezcool/studyflow/services/logger"
	"github.com/trezcool/studyflow/storage/records"
	"github.com/trezcool/studyflow/storage/records/memstore"
)

// Stack is the memory-backed service graph used by tests.
type Stack struct {
	Conf          *core.Config
	Logger        core.Logger
	DB            *memstore.DB
	CourseRepo    course.Repository
	AssignRepo    assignment.Repository
	CourseSvc     *course.Service
	AssignmentSvc *assignment.Service
	Validate      *validator.Validate
	Translator    ut.Translator
}

func NewConfig() *core.Config {
	return &core.Config{
		AppName:  "StudyFlow",
		Env:      "TEST",
		TestMode: true,
		Server:   core.ServerConfig{DisableReqLogs: true},
		Store:    core.StoreConfig{Engine: core.StoreMemory},
	}
}

// NewLogger returns a logger that prints nothing & reports nowhere.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

func NewValidator() *validator.Validate {
	validate, _ := NewTranslatedValidator()
	return validate
}

// NewTranslatedValidator returns a validator along with the translator of its messages.
func NewTranslatedValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	assignment.InitValidators(validate, translator)
	return validate, translator
}

// NewStack opens a fresh memory store, closed when the test ends.
func NewStack(t *testing.T) *Stack {
	t.Helper()
	db, err := memstore.Open()
	if err != nil {
		t.Fatalf("memstore.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	conf := NewConfig()
	logger := NewLogger(conf)
	s := &Stack{
		Conf:       conf,
		Logger:     logger,
		DB:         db,
		CourseRepo: records.NewCourseRepository(db, logger),
		AssignRepo: records.NewAssignmentRepository(db, logger),
	}
	s.Validate, s.Translator = NewTranslatedValidator()
	s.CourseSvc = course.NewService(s.CourseRepo)
	s.AssignmentSvc = assignment.NewService(s.AssignRepo, s.CourseSvc)
	return s
}

// CreateCourse stores a course with the default categories unless some are given.
func CreateCourse(t *testing.T, repo course.Repository, name string, credits int, categories ...course.GradeCategory) course.Course {
	t.Helper()
	if len(categories) == 0 {
		categories = course.DefaultGradeCategories()
	}
	c := course.Course{
		Name:            name,
		Credits:         credits,
		Color:           course.DefaultColor,
		Semester:        course.DefaultSemester,
		Schedule:        []course.ScheduleSlot{},
		GradeCategories: categories,
	}
	c, err := repo.CreateCourse(context.Background(), c, "")
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

// CreateAssignment stores a pending, medium priority assignment; pass a negative grade for ungraded work.
func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	courseID int,
	title, category string,
	due time.Time,
	grade float64,
	status ...string,
) assignment.Assignment {
	t.Helper()
	a := assignment.Assignment{
		CourseID: courseID,
		Title:    title,
		DueDate:  due.UTC(),
		Priority: assignment.PriorityMedium,
		Status:   assignment.StatusPending,
		Category: category,
	}
	if grade >= 0 {
		a.Grade = null.Float64From(grade)
	}
	if len(status) > 0 {
		a.Status = status[0]
	}
	a, err := repo.CreateAssignment(context.Background(), a, "")
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return a
}
