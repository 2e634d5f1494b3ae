package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core/topic"
)

type topicApi struct {
	svc      *topic.Service
	validate *validator.Validate
}

func registerTopicAPI(g *echo.Group, jwt, teacher echo.MiddlewareFunc, opts *Options) {
	api := topicApi{svc: opts.TopicSvc, validate: opts.Validate}

	tg := g.Group("/topics", jwt, teacher)
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/categories", api.queryCategories)
	tg.GET("/slug/:slug", api.retrieveBySlug)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
	tg.POST("/:id/objectives", api.addObjective)
	tg.DELETE("/:id/objectives/:objectiveId", api.removeObjective)
}

func (api *topicApi) query(ctx echo.Context) error {
	if ctx.QueryParam("mine") != "" {
		return ctx.JSON(http.StatusOK, api.svc.ByTeacher(contextTeacherID(ctx)))
	}
	return ctx.JSON(http.StatusOK, api.svc.QueryAll())
}

func (api *topicApi) create(ctx echo.Context) error {
	var data topic.NewTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTopic")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	tpc, err := api.svc.Create(contextTeacherID(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating topic")
	}
	return ctx.JSON(http.StatusCreated, tpc)
}

func (api *topicApi) retrieve(ctx echo.Context) error {
	tpc, err := api.svc.GetByID(ctx.Param("id"))
	if err != nil {
		return topicErr(err, "finding topic by ID")
	}
	return ctx.JSON(http.StatusOK, tpc)
}

func (api *topicApi) retrieveBySlug(ctx echo.Context) error {
	tpc, err := api.svc.GetBySlug(ctx.Param("slug"))
	if err != nil {
		return topicErr(err, "finding topic by slug")
	}
	return ctx.JSON(http.StatusOK, tpc)
}

func (api *topicApi) update(ctx echo.Context) error {
	var data topic.UpdateTopic
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTopic")
	}
	tpc, err := api.svc.Update(contextTeacherID(ctx), ctx.Param("id"), data)
	if err != nil {
		return topicErr(err, "updating topic")
	}
	return ctx.JSON(http.StatusOK, tpc)
}

func (api *topicApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(contextTeacherID(ctx), ctx.Param("id")); err != nil {
		return topicErr(err, "deleting topic")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *topicApi) queryCategories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Categories())
}

func (api *topicApi) addObjective(ctx echo.Context) error {
	var data struct {
		Description string `json:"description" validate:"required"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding objective")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	tpc, err := api.svc.AddObjective(contextTeacherID(ctx), ctx.Param("id"), data.Description)
	if err != nil {
		return topicErr(err, "adding objective")
	}
	return ctx.JSON(http.StatusCreated, tpc)
}

func (api *topicApi) removeObjective(ctx echo.Context) error {
	tpc, err := api.svc.RemoveObjective(contextTeacherID(ctx), ctx.Param("id"), ctx.Param("objectiveId"))
	if err != nil {
		return topicErr(err, "removing objective")
	}
	return ctx.JSON(http.StatusOK, tpc)
}

func topicErr(err error, msg string) error {
	switch errors.Cause(err) {
	case topic.ErrNotFound:
		return errHttpNotFound
	case topic.ErrPermissionDenied, topic.ErrNotEditable:
		return errHttpForbidden
	}
	return errors.Wrap(err, msg)
}
