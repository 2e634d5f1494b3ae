package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core/course"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt, teacher echo.MiddlewareFunc, opts *Options) {
	api := courseApi{svc: opts.CourseSvc, validate: opts.Validate}

	cg := g.Group("/courses", jwt, teacher)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/categories", api.queryCategories)
	cg.GET("/slug/:slug", api.retrieveBySlug)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.GET("/:id/modules", api.queryModules)
	cg.PUT("/:id/modules", api.setModules)
	cg.POST("/:id/modules/:moduleId", api.addModule)
	cg.DELETE("/:id/modules/:moduleId", api.removeModule)
}

func (api *courseApi) query(ctx echo.Context) error {
	if cat := ctx.QueryParam("category"); cat != "" {
		return ctx.JSON(http.StatusOK, api.svc.ByCategory(cat))
	}
	if ctx.QueryParam("mine") != "" {
		return ctx.JSON(http.StatusOK, api.svc.ByTeacher(contextTeacherID(ctx)))
	}
	return ctx.JSON(http.StatusOK, api.svc.QueryAll())
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	crs, err := api.svc.Create(contextTeacherID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.WithModules(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) retrieveBySlug(ctx echo.Context) error {
	crs, err := api.svc.GetBySlug(ctx.Param("slug"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by slug")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	crs, err := api.svc.Update(contextTeacherID(ctx), ctx.Param("id"), data)
	if err != nil {
		return courseErr(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(contextTeacherID(ctx), ctx.Param("id")); err != nil {
		return courseErr(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryCategories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Categories())
}

func (api *courseApi) queryModules(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.ModulesForCourse(ctx.Param("id")))
}

func (api *courseApi) setModules(ctx echo.Context) error {
	var data struct {
		ModuleIDs []string `json:"moduleIds"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding module ids")
	}
	if err := api.svc.SetModules(contextTeacherID(ctx), ctx.Param("id"), data.ModuleIDs); err != nil {
		return courseErr(err, "setting course modules")
	}
	return ctx.JSON(http.StatusOK, api.svc.ModulesForCourse(ctx.Param("id")))
}

func (api *courseApi) addModule(ctx echo.Context) error {
	link, err := api.svc.AddModule(contextTeacherID(ctx), ctx.Param("id"), ctx.Param("moduleId"))
	if err != nil {
		return courseErr(err, "adding module to course")
	}
	return ctx.JSON(http.StatusCreated, link)
}

func (api *courseApi) removeModule(ctx echo.Context) error {
	if err := api.svc.RemoveModule(contextTeacherID(ctx), ctx.Param("id"), ctx.Param("moduleId")); err != nil {
		return courseErr(err, "removing module from course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func courseErr(err error, msg string) error {
	switch errors.Cause(err) {
	case course.ErrNotFound, course.ErrLinkNotFound:
		return errHttpNotFound
	case course.ErrPermissionDenied, course.ErrNotEditable:
		return errHttpForbidden
	}
	return errors.Wrap(err, msg)
}
