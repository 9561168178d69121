package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/agora/core/activity"
)

// ActivityFilter binds the listing query string by hand so malformed
// values degrade to defaults instead of failing the request.
type ActivityFilter struct {
	activity.QueryFilter
}

func (f *ActivityFilter) Bind(ctx echo.Context) {
	params := ctx.QueryParams()
	f.View = params.Get("view")
	f.CategoryID = params.Get("category")
	if page, err := strconv.Atoi(params.Get("page")); err == nil {
		f.Page = page
	}
}
