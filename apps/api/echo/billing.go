package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/billing"
)

type billingApi struct {
	svc *billing.Service
}

func registerBillingAPI(g *echo.Group, jwt, teacher echo.MiddlewareFunc, opts *Options) {
	api := billingApi{svc: opts.BillingSvc}

	bg := g.Group("/billing", jwt, teacher)
	bg.GET("/tickets", api.query)
	bg.GET("/tickets/preview", api.preview)
	bg.POST("/tickets", api.create)
	bg.POST("/tickets/:id/pay", api.pay)
	bg.POST("/tickets/:id/email", api.email)
}

func (api *billingApi) period(ctx echo.Context) (time.Month, int, error) {
	now := core.NowFunc()
	month, year := now.Month(), now.Year()
	if m := ctx.QueryParam("month"); m != "" {
		v, err := strconv.Atoi(m)
		if err != nil || v < 1 || v > 12 {
			return 0, 0, core.NewValidationError(nil, core.FieldError{Field: "month", Error: "must be 1-12"})
		}
		month = time.Month(v)
	}
	if y := ctx.QueryParam("year"); y != "" {
		v, err := strconv.Atoi(y)
		if err != nil {
			return 0, 0, core.NewValidationError(nil, core.FieldError{Field: "year", Error: "must be a year"})
		}
		year = v
	}
	return month, year, nil
}

func (api *billingApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.ByTeacher(contextTeacherID(ctx)))
}

func (api *billingApi) preview(ctx echo.Context) error {
	month, year, err := api.period(ctx)
	if err != nil {
		return err
	}
	ticket, err := api.svc.CalculateTicket(contextTeacherID(ctx), month, year)
	if err != nil {
		return billingErr(err, "calculating payment ticket")
	}
	return ctx.JSON(http.StatusOK, ticket)
}

func (api *billingApi) create(ctx echo.Context) error {
	month, year, err := api.period(ctx)
	if err != nil {
		return err
	}
	ticket, err := api.svc.CalculateTicket(contextTeacherID(ctx), month, year)
	if err != nil {
		return billingErr(err, "calculating payment ticket")
	}
	ticket, err = api.svc.SaveTicket(ticket)
	if err != nil {
		return billingErr(err, "saving payment ticket")
	}
	return ctx.JSON(http.StatusCreated, ticket)
}

func (api *billingApi) pay(ctx echo.Context) error {
	ticket, err := api.svc.MarkPaid(ctx.Param("id"))
	if err != nil {
		return billingErr(err, "settling payment ticket")
	}
	return ctx.JSON(http.StatusOK, ticket)
}

func (api *billingApi) email(ctx echo.Context) error {
	if err := api.svc.EmailTicket(ctx.Param("id")); err != nil {
		return billingErr(err, "emailing payment ticket")
	}
	return ctx.NoContent(http.StatusAccepted)
}

func billingErr(err error, msg string) error {
	if errors.Cause(err) == billing.ErrNotFound {
		return errHttpNotFound
	}
	return errors.Wrap(err, msg)
}
