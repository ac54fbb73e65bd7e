package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
)

const objectKey = "object"

var errObjNotFoundInCtx = errors.New("object not found in echo.Context")

func paramID(ctx echo.Context) (int, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	return id, err == nil && id > 0
}

// courseMiddleware loads the course of the `:id` path param into the context.
func courseMiddleware(svc *course.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, ok := paramID(ctx)
			if !ok {
				return errHttpNotFound
			}
			c, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				return errors.Wrap(err, "finding course by ID")
			}
			ctx.Set(objectKey, c)
			return next(ctx)
		}
	}
}

// assignmentMiddleware loads the assignment of the `:id` path param into the context.
func assignmentMiddleware(svc *assignment.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, ok := paramID(ctx)
			if !ok {
				return errHttpNotFound
			}
			a, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				return errors.Wrap(err, "finding assignment by ID")
			}
			ctx.Set(objectKey, a)
			return next(ctx)
		}
	}
}

func contextCourse(ctx echo.Context) (course.Course, error) {
	c, ok := ctx.Get(objectKey).(course.Course)
	if !ok {
		return course.Course{}, errors.Wrap(errObjNotFoundInCtx, "retrieving course from context")
	}
	return c, nil
}

func contextAssignment(ctx echo.Context) (assignment.Assignment, error) {
	a, ok := ctx.Get(objectKey).(assignment.Assignment)
	if !ok {
		return assignment.Assignment{}, errors.Wrap(errObjNotFoundInCtx, "retrieving assignment from context")
	}
	return a, nil
}
