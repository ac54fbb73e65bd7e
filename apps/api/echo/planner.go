package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	"github.com/trezcool/studyflow/core/grade"
	"github.com/trezcool/studyflow/core/planner"
)

const dateLayout = "2006-01-02"

type plannerApi struct {
	courseSvc *course.Service
	asgSvc    *assignment.Service
	now       func() time.Time
}

func registerPlannerAPI(g *echo.Group, deps ServerDeps) {
	api := plannerApi{
		courseSvc: deps.CourseSvc,
		asgSvc:    deps.AssignmentSvc,
		now:       deps.Now,
	}

	g.GET("/grades", api.grades)
	g.GET("/dashboard", api.dashboard)
	g.GET("/calendar", api.calendar)
}

type CalendarQuery struct {
	View string `query:"view"`
	Date string `query:"date"`
}

// workingSet loads every course & assignment.
func (api *plannerApi) workingSet(ctx context.Context) ([]course.Course, []assignment.Assignment, error) {
	courses, err := api.courseSvc.QueryAll(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying courses")
	}
	list, err := api.asgSvc.QueryAll(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying assignments")
	}
	return courses, list, nil
}

// Handlers

func (api *plannerApi) grades(ctx echo.Context) error {
	courses, list, err := api.workingSet(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grade.NewReport(courses, list))
}

func (api *plannerApi) dashboard(ctx echo.Context) error {
	courses, list, err := api.workingSet(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, planner.NewDashboard(courses, list, api.now()))
}

func (api *plannerApi) calendar(ctx echo.Context) error {
	var query CalendarQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to CalendarQuery")
	}

	now := api.now()
	date := now
	if query.Date != "" {
		d, err := time.ParseInLocation(dateLayout, query.Date, now.Location())
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "date must be formatted as YYYY-MM-DD"})
		}
		date = d
	}

	var build func(time.Time, []course.Course, []assignment.Assignment, time.Time) planner.Calendar
	switch query.View {
	case "", planner.ViewMonth:
		build = planner.Month
	case planner.ViewWeek:
		build = planner.Week
	case planner.ViewDay:
		build = planner.SingleDay
	default:
		return core.NewValidationError(nil, core.FieldError{Field: "view", Error: "view must be one of [month week day]"})
	}

	courses, list, err := api.workingSet(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, build(date, courses, list, now))
}
