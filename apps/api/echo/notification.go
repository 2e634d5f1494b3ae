package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := notificationApi{svc: opts.NotificationSvc}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.query)
	ng.GET("/unread-count", api.unreadCount)
	ng.POST("/mark-all-read", api.markAllRead)
}

func (api *notificationApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.All())
}

func (api *notificationApi) unreadCount(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"count": api.svc.UnreadCount()})
}

func (api *notificationApi) markAllRead(ctx echo.Context) error {
	if err := api.svc.MarkAllRead(); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return ctx.NoContent(http.StatusNoContent)
}
