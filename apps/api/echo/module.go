package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core/module"
)

type moduleApi struct {
	svc      *module.Service
	validate *validator.Validate
}

func registerModuleAPI(g *echo.Group, jwt, teacher echo.MiddlewareFunc, opts *Options) {
	api := moduleApi{svc: opts.ModuleSvc, validate: opts.Validate}

	mg := g.Group("/modules", jwt, teacher)
	mg.GET("", api.query)
	mg.POST("", api.create)
	mg.GET("/categories", api.queryCategories)
	mg.GET("/slug/:slug", api.retrieveBySlug)
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id", api.update)
	mg.DELETE("/:id", api.destroy)

	mg.GET("/:id/lessons", api.queryLessons)
	mg.POST("/:id/lessons/:lessonId", api.addLesson)
	mg.DELETE("/:id/lessons/:lessonId", api.removeLesson)
	mg.PUT("/:id/lessons/:lessonId/lectured", api.setLectured)
	mg.PUT("/:id/lessons/order", api.reorderLessons)

	mg.GET("/:id/topics", api.queryTopics)
	mg.POST("/:id/topics/:topicId", api.addTopic)
	mg.DELETE("/:id/topics/:topicId", api.removeTopic)
}

func (api *moduleApi) query(ctx echo.Context) error {
	if cat := ctx.QueryParam("category"); cat != "" {
		mods := []module.Module{}
		for _, mod := range api.svc.QueryAll() {
			if mod.Category == cat {
				mods = append(mods, mod)
			}
		}
		return ctx.JSON(http.StatusOK, mods)
	}
	if ctx.QueryParam("mine") != "" {
		return ctx.JSON(http.StatusOK, api.svc.ByTeacher(contextTeacherID(ctx)))
	}
	return ctx.JSON(http.StatusOK, api.svc.QueryAll())
}

func (api *moduleApi) create(ctx echo.Context) error {
	var data module.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	mod, err := api.svc.Create(contextTeacherID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating module")
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *moduleApi) retrieve(ctx echo.Context) error {
	mod, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return moduleErr(err, "finding module by ID")
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *moduleApi) retrieveBySlug(ctx echo.Context) error {
	mod, err := api.svc.GetBySlug(ctx.Param("slug"))
	if err != nil {
		return moduleErr(err, "finding module by slug")
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *moduleApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return moduleErr(err, "finding module by ID")
	}

	var data module.UpdateModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateModule")
	}
	if err := data.Validate(api.validate, orig); err != nil {
		return err
	}
	mod, err := api.svc.Update(contextTeacherID(ctx), orig.ID, data)
	if err != nil {
		return moduleErr(err, "updating module")
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *moduleApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(contextTeacherID(ctx), ctx.Param("id")); err != nil {
		return moduleErr(err, "deleting module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *moduleApi) queryCategories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Categories())
}

func (api *moduleApi) queryLessons(ctx echo.Context) error {
	lessons := api.svc.LessonsForModule(ctx.Param("id"))
	if ctx.QueryParam("sorted") != "" {
		lessons = module.SortedByOrder(lessons)
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *moduleApi) addLesson(ctx echo.Context) error {
	link, err := api.svc.AddLesson(contextTeacherID(ctx), ctx.Param("id"), ctx.Param("lessonId"))
	if err != nil {
		return moduleErr(err, "adding lesson to module")
	}
	return ctx.JSON(http.StatusCreated, link)
}

func (api *moduleApi) removeLesson(ctx echo.Context) error {
	if err := api.svc.RemoveLesson(contextTeacherID(ctx), ctx.Param("id"), ctx.Param("lessonId")); err != nil {
		return moduleErr(err, "removing lesson from module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *moduleApi) setLectured(ctx echo.Context) error {
	var data struct {
		Lectured bool `json:"lectured"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding lectured flag")
	}
	if err := api.svc.SetLectured(contextTeacherID(ctx), ctx.Param("id"), ctx.Param("lessonId"), data.Lectured); err != nil {
		return moduleErr(err, "setting lectured flag")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *moduleApi) reorderLessons(ctx echo.Context) error {
	var data struct {
		LessonIDs []string `json:"lessonIds"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding lesson order")
	}
	if err := api.svc.ReorderLessons(contextTeacherID(ctx), ctx.Param("id"), data.LessonIDs); err != nil {
		return moduleErr(err, "reordering lessons")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *moduleApi) queryTopics(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.TopicsForModule(ctx.Param("id")))
}

func (api *moduleApi) addTopic(ctx echo.Context) error {
	link, err := api.svc.AddTopic(contextTeacherID(ctx), ctx.Param("id"), ctx.Param("topicId"))
	if err != nil {
		return moduleErr(err, "adding topic to module")
	}
	return ctx.JSON(http.StatusCreated, link)
}

func (api *moduleApi) removeTopic(ctx echo.Context) error {
	if err := api.svc.RemoveTopic(contextTeacherID(ctx), ctx.Param("id"), ctx.Param("topicId")); err != nil {
		return moduleErr(err, "removing topic from module")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func moduleErr(err error, msg string) error {
	switch errors.Cause(err) {
	case module.ErrNotFound, module.ErrLinkNotFound:
		return errHttpNotFound
	case module.ErrPermissionDenied, module.ErrNotEditable:
		return errHttpForbidden
	}
	return errors.Wrap(err, msg)
}
