package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core/enrollment"
)

type enrollmentApi struct {
	svc      *enrollment.Service
	validate *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, jwt, teacher echo.MiddlewareFunc, opts *Options) {
	api := enrollmentApi{svc: opts.EnrollmentSvc, validate: opts.Validate}

	eg := g.Group("/enrollments", jwt, teacher)
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.GET("/slug/:slug", api.retrieveBySlug)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update)
	eg.DELETE("/:id", api.destroy)

	eg.GET("/:id/assignments", api.queryAssignments)
	eg.POST("/assignments", api.assign)
	eg.DELETE("/assignments/:assignmentId", api.unassign)
}

func (api *enrollmentApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.ByTeacher(contextTeacherID(ctx)))
}

func (api *enrollmentApi) create(ctx echo.Context) error {
	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	enr, err := api.svc.Create(contextTeacherID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating enrollment")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollmentApi) retrieve(ctx echo.Context) error {
	enr, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return enrollmentErr(err, "finding enrollment by ID")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) retrieveBySlug(ctx echo.Context) error {
	enr, err := api.svc.GetBySlug(ctx.Param("slug"))
	if err != nil {
		return enrollmentErr(err, "finding enrollment by slug")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) update(ctx echo.Context) error {
	var data enrollment.UpdateEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEnrollment")
	}
	enr, err := api.svc.Update(contextTeacherID(ctx), ctx.Param("id"), data)
	if err != nil {
		return enrollmentErr(err, "updating enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(contextTeacherID(ctx), ctx.Param("id")); err != nil {
		return enrollmentErr(err, "deleting enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *enrollmentApi) queryAssignments(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Assignments(ctx.Param("id")))
}

func (api *enrollmentApi) assign(ctx echo.Context) error {
	var data enrollment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	asg, err := api.svc.Assign(contextTeacherID(ctx), data)
	if err != nil {
		return enrollmentErr(err, "creating module assignment")
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *enrollmentApi) unassign(ctx echo.Context) error {
	if err := api.svc.Unassign(contextTeacherID(ctx), ctx.Param("assignmentId")); err != nil {
		return enrollmentErr(err, "deleting module assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func enrollmentErr(err error, msg string) error {
	switch errors.Cause(err) {
	case enrollment.ErrNotFound, enrollment.ErrAssignmentNotFound:
		return errHttpNotFound
	case enrollment.ErrPermissionDenied:
		return errHttpForbidden
	}
	return errors.Wrap(err, msg)
}
