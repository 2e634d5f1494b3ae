package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core/lesson"
)

type lessonApi struct {
	svc      *lesson.Service
	validate *validator.Validate
}

func registerLessonAPI(g *echo.Group, jwt, teacher echo.MiddlewareFunc, opts *Options) {
	api := lessonApi{svc: opts.LessonSvc, validate: opts.Validate}

	lg := g.Group("/lessons", jwt, teacher)
	lg.GET("", api.query)
	lg.POST("", api.create)
	lg.GET("/slug/:slug", api.retrieveBySlug)
	lg.GET("/:id", api.retrieve)
	lg.PUT("/:id", api.update)
	lg.DELETE("/:id", api.destroy)
}

func (api *lessonApi) query(ctx echo.Context) error {
	if ctx.QueryParam("mine") != "" {
		return ctx.JSON(http.StatusOK, api.svc.ByTeacher(contextTeacherID(ctx)))
	}
	return ctx.JSON(http.StatusOK, api.svc.QueryAll())
}

func (api *lessonApi) create(ctx echo.Context) error {
	var data lesson.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	lsn, err := api.svc.Create(contextTeacherID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}
	return ctx.JSON(http.StatusCreated, lsn)
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	lsn, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return lessonErr(err, "finding lesson by ID")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) retrieveBySlug(ctx echo.Context) error {
	lsn, err := api.svc.GetBySlug(ctx.Param("slug"))
	if err != nil {
		return lessonErr(err, "finding lesson by slug")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return lessonErr(err, "finding lesson by ID")
	}

	var data lesson.UpdateLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	if err := data.Validate(api.validate, orig); err != nil {
		return err
	}
	lsn, err := api.svc.Update(contextTeacherID(ctx), orig.ID, data)
	if err != nil {
		return lessonErr(err, "updating lesson")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(contextTeacherID(ctx), ctx.Param("id")); err != nil {
		return lessonErr(err, "deleting lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func lessonErr(err error, msg string) error {
	switch errors.Cause(err) {
	case lesson.ErrNotFound:
		return errHttpNotFound
	case lesson.ErrPermissionDenied:
		return errHttpForbidden
	}
	return errors.Wrap(err, msg)
}
