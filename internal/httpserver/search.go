package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (search.Result, error)
}

type SearchHTTP struct {
	Search Searcher
}

func (h *SearchHTTP) Handler(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return fail(l, "search_error", invalid("q is required"))
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	res, err := h.Search.Search(ctx, q, from, size)
	if err != nil {
		return fail(l, "search_error", err)
	}
	return c.JSON(http.StatusOK, transport.SearchResult(res))
}
