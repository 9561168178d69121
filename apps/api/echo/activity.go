package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agora/core"
	"github.com/trezcool/agora/core/activity"
	"github.com/trezcool/agora/core/user"
)

type activityApi struct {
	svc    activity.Service
	usrSvc user.Service
}

func registerActivityAPI(g *echo.Group, jwt, optJWT echo.MiddlewareFunc, svc activity.Service, usrSvc user.Service) {
	api := activityApi{svc: svc, usrSvc: usrSvc}

	ag := g.Group("/activities")

	// public endpoints; the listing and detail views personalize
	// when a token is supplied
	ag.GET("", api.query, optJWT)
	ag.GET("/:id", api.retrieve, optJWT)

	// authed endpoints
	ag.POST("", api.create, jwt)
	ag.POST("/:id", api.register, jwt)
}

// Handlers

func (api *activityApi) query(ctx echo.Context) error {
	filter := new(ActivityFilter)
	filter.Bind(ctx)
	viewer := getContextViewer(ctx, api.usrSvc)

	page, err := api.svc.Upcoming(ctx.Request().Context(), viewer, filter.QueryFilter)
	if err != nil {
		return errors.Wrap(err, "querying upcoming activities")
	}
	if page.Items == nil {
		page.Items = []activity.Activity{}
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *activityApi) retrieve(ctx echo.Context) error {
	viewer := getContextViewer(ctx, api.usrSvc)

	detail, err := api.svc.Detail(ctx.Request().Context(), viewer, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == activity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "retrieving activity")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *activityApi) create(ctx echo.Context) error {
	var data activity.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}

	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	act, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, act)
}

func (api *activityApi) register(ctx echo.Context) error {
	var data RegisterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	detail, err := api.svc.Register(ctx.Request().Context(), actor, ctx.Param("id"), data.Action)
	if err != nil {
		if errors.Cause(err) == activity.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "registering attendance")
	}
	return ctx.JSON(http.StatusOK, detail)
}

type RegisterRequest struct {
	Action string `json:"action" validate:"required"`
}

func (rr *RegisterRequest) Validate() error {
	rr.Action = core.CleanString(rr.Action, true /* lower */)
	return core.Validate.Struct(rr)
}
