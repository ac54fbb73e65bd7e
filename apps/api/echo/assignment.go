package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	"github.com/trezcool/studyflow/core/due"
	"github.com/trezcool/studyflow/core/grade"
	"github.com/trezcool/studyflow/core/planner"
)

type assignmentApi struct {
	svc       *assignment.Service
	courseSvc *course.Service
	validate  *validator.Validate
	logger    core.Logger
	now       func() time.Time
}

func registerAssignmentAPI(g *echo.Group, deps ServerDeps) {
	api := assignmentApi{
		svc:       deps.AssignmentSvc,
		courseSvc: deps.CourseSvc,
		validate:  deps.Validate,
		logger:    deps.Logger,
		now:       deps.Now,
	}

	ag := g.Group("/assignments")
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.DELETE("", api.destroyMultiple)

	// detail endpoints
	dg := ag.Group("/:id", assignmentMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.PATCH("/status", api.setStatus)
}

// refreshCourseGrades rewrites the cached grade of every course in `courseIDs`.
// Failures are logged only: the engine recomputes grades on every read.
func (api *assignmentApi) refreshCourseGrades(ctx echo.Context, courseIDs ...int) {
	reqCtx := ctx.Request().Context()
	seen := make(map[int]bool, len(courseIDs))
	for _, id := range courseIDs {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true

		c, err := api.courseSvc.GetByID(reqCtx, id)
		if err != nil {
			if errors.Cause(err) != course.ErrNotFound {
				api.logger.Warn("refreshing course grade: "+err.Error(), err)
			}
			continue
		}
		list, err := api.svc.QueryByCourse(reqCtx, id)
		if err != nil {
			api.logger.Warn("refreshing course grade: "+err.Error(), err)
			continue
		}
		if _, err = api.courseSvc.SetCurrentGrade(reqCtx, c, grade.CourseGrade(c, list)); err != nil {
			api.logger.Warn("refreshing course grade: "+err.Error(), err)
		}
	}
}

func (api *assignmentApi) item(ctx echo.Context, a assignment.Assignment) (planner.Item, error) {
	courses, err := api.courseSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return planner.Item{}, errors.Wrap(err, "querying courses")
	}
	return planner.NewItem(a, courses, api.now(), due.List), nil
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	courses, err := api.courseSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if err = data.Validate(api.validate, courses); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), data, idempotencyKey(ctx))
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	api.refreshCourseGrades(ctx, a.CourseID)
	return ctx.JSON(http.StatusCreated, planner.NewItem(a, courses, api.now(), due.List))
}

func (api *assignmentApi) query(ctx echo.Context) error {
	filter := new(assignment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []planner.Item{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	var sortKey string
	ord, sorted := ordering.First()
	if sorted && assignment.IsSortKey(ord.Field) {
		sortKey = ord.Field
	} else {
		sorted = false
	}

	list, courses, err := api.svc.Query(ctx.Request().Context(), *filter, sortKey)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if sorted && !ord.Ascending {
		for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
			list[i], list[j] = list[j], list[i]
		}
	}
	return ctx.JSON(http.StatusOK, planner.Items(list, courses, api.now(), due.List))
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	a, err := contextAssignment(ctx)
	if err != nil {
		return err
	}
	item, err := api.item(ctx, a)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	orig, err := contextAssignment(ctx)
	if err != nil {
		return err
	}

	var data assignment.UpdateAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	courses, err := api.courseSvc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	na, err := data.Validate(orig, api.validate, courses)
	if err != nil {
		return err
	}

	a, err := api.svc.Update(ctx.Request().Context(), orig, na)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	api.refreshCourseGrades(ctx, orig.CourseID, a.CourseID)
	return ctx.JSON(http.StatusOK, planner.NewItem(a, courses, api.now(), due.List))
}

// setStatus sets the given status; without one it toggles completion.
func (api *assignmentApi) setStatus(ctx echo.Context) error {
	orig, err := contextAssignment(ctx)
	if err != nil {
		return err
	}

	var data assignment.UpdateStatus
	if ctx.Request().ContentLength != 0 {
		if err = ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to UpdateStatus")
		}
	}
	if data.Status == "" {
		data.Status = assignment.Toggled(orig.Status)
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.SetStatus(ctx.Request().Context(), orig, data.Status)
	if err != nil {
		return errors.Wrap(err, "setting assignment status")
	}
	item, err := api.item(ctx, a)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	a, err := contextAssignment(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), a.ID); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	api.refreshCourseGrades(ctx, a.CourseID)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assignmentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting assignments")
	}
	return ctx.NoContent(http.StatusNoContent)
}
