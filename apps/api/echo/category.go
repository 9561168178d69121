package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/agora/core/category"
)

type categoryApi struct {
	svc category.Service
}

func registerCategoryAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc category.Service) {
	api := categoryApi{svc: svc}

	cg := g.Group("/categories")

	// the listing feeds the public filter dropdown
	cg.GET("", api.query)

	// admin endpoints
	admin := adminMiddleware()
	cg.POST("", api.create, jwt, admin)
	cg.DELETE("/:id", api.destroy, jwt, admin)
}

// Handlers

func (api *categoryApi) query(ctx echo.Context) error {
	cats, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if cats == nil {
		cats = []category.Category{}
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *categoryApi) create(ctx echo.Context) error {
	var data category.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	cat, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *categoryApi) destroy(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	if _, err := api.svc.GetByID(reqCtx, ctx.Param("id")); err != nil {
		if errors.Cause(err) == category.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding category by ID")
	}

	if err := api.svc.Delete(reqCtx, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting category")
	}
	return ctx.NoContent(http.StatusNoContent)
}
