package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core/schedule"
)

type scheduleApi struct {
	svc      *schedule.Service
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, jwt, teacher echo.MiddlewareFunc, opts *Options) {
	api := scheduleApi{svc: opts.ScheduleSvc, validate: opts.Validate}

	sg := g.Group("/schedule", jwt, teacher)
	sg.GET("", api.query)
	sg.POST("", api.apply)
	sg.GET("/unlectured", api.queryUnlectured)
	sg.GET("/today", api.queryToday)
	sg.GET("/active", api.queryActive)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// ApplyRequest schedules an unlectured lesson on a given day at a wall-clock
// time.
type ApplyRequest struct {
	EnrollmentSlug string    `json:"enrollmentSlug" validate:"required"`
	ModuleID       string    `json:"moduleId" validate:"required"`
	ClassID        string    `json:"classId" validate:"required"`
	LessonID       string    `json:"lessonId" validate:"required"`
	Day            time.Time `json:"day" validate:"required"`
	StartTime      string    `json:"startTime" validate:"required,clock"`
}

type RescheduleRequest struct {
	Day       time.Time `json:"day" validate:"required"`
	StartTime string    `json:"startTime" validate:"required,clock"`
}

func (api *scheduleApi) query(ctx echo.Context) error {
	slug := ctx.QueryParam("enrollment")
	moduleID := ctx.QueryParam("module")
	if slug != "" && moduleID != "" {
		return ctx.JSON(http.StatusOK, api.svc.Scheduled(slug, moduleID, contextTeacherID(ctx)))
	}
	return ctx.JSON(http.StatusOK, api.svc.ByTeacher(contextTeacherID(ctx)))
}

func (api *scheduleApi) apply(ctx echo.Context) error {
	var data ApplyRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ApplyRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	entry, err := api.svc.Apply(contextTeacherID(ctx),
		data.EnrollmentSlug, data.ModuleID, data.ClassID, data.LessonID, data.Day, data.StartTime)
	if err != nil {
		return scheduleErr(err, "scheduling lesson")
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *scheduleApi) queryUnlectured(ctx echo.Context) error {
	slug := ctx.QueryParam("enrollment")
	if moduleID := ctx.QueryParam("module"); moduleID != "" {
		return ctx.JSON(http.StatusOK, api.svc.UnlecturedModuleLessons(slug, moduleID))
	}
	return ctx.JSON(http.StatusOK, api.svc.UnlecturedForEnrollment(slug))
}

func (api *scheduleApi) queryToday(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Todays(contextTeacherID(ctx)))
}

func (api *scheduleApi) queryActive(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Active())
}

func (api *scheduleApi) update(ctx echo.Context) error {
	var data RescheduleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RescheduleRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	entry, err := api.svc.UpdateEntry(contextTeacherID(ctx), ctx.Param("id"), data.Day, data.StartTime)
	if err != nil {
		return scheduleErr(err, "rescheduling lesson")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteEntry(contextTeacherID(ctx), ctx.Param("id")); err != nil {
		return scheduleErr(err, "unscheduling lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func scheduleErr(err error, msg string) error {
	switch errors.Cause(err) {
	case schedule.ErrNotFound, schedule.ErrEntryNotFound, schedule.ErrEnrollmentNotFound:
		return errHttpNotFound
	case schedule.ErrPermissionDenied:
		return errHttpForbidden
	}
	return errors.Wrap(err, msg)
}
