package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	"github.com/trezcool/studyflow/core/grade"
)

type courseApi struct {
	svc      *course.Service
	asgSvc   *assignment.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, deps ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		asgSvc:   deps.AssignmentSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.DELETE("", api.destroyMultiple)

	// detail endpoints
	dg := cg.Group("/:id", courseMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/grade", api.grade)
	dg.POST("/what-if", api.whatIf)
}

type (
	GradeResponse struct {
		CourseID   int                    `json:"courseId"`
		Percentage float64                `json:"percentage"`
		Categories []grade.CategoryResult `json:"categories,omitempty"`
		grade.Letter
	}

	WhatIfRequest struct {
		// {category name: projected percentage}
		Overrides map[string]float64 `json:"overrides" validate:"dive,keys,required,endkeys,gte=0,lte=150"`
	}
)

// withGrade recomputes the grade of `c` from its assignments.
func (api *courseApi) withGrade(ctx echo.Context, c course.Course) (course.Course, error) {
	list, err := api.asgSvc.QueryByCourse(ctx.Request().Context(), c.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "querying course assignments")
	}
	c.CurrentGrade = grade.CourseGrade(c, list)
	return c, nil
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data, idempotencyKey(ctx))
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) query(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	courses, err := api.svc.QueryAll(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	list, err := api.asgSvc.QueryAll(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, grade.WithCurrentGrades(courses, list))
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	if c, err = api.withGrade(ctx, c); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) update(ctx echo.Context) error {
	orig, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	nc, err := data.Validate(orig, api.validate)
	if err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), orig, nc)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	if c, err = api.withGrade(ctx, c); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) grade(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	list, err := api.asgSvc.QueryByCourse(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "querying course assignments")
	}

	pct := grade.CourseGrade(c, list)
	return ctx.JSON(http.StatusOK, GradeResponse{
		CourseID:   c.ID,
		Percentage: pct,
		Categories: grade.Breakdown(c, list),
		Letter:     grade.LetterFor(pct),
	})
}

func (api *courseApi) whatIf(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	var data WhatIfRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to WhatIfRequest")
	}
	if err = api.validate.Struct(&data); err != nil {
		return err
	}

	list, err := api.asgSvc.QueryByCourse(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "querying course assignments")
	}
	pct := grade.WhatIf(c, list, data.Overrides)
	return ctx.JSON(http.StatusOK, GradeResponse{
		CourseID:   c.ID,
		Percentage: pct,
		Letter:     grade.LetterFor(pct),
	})
}
