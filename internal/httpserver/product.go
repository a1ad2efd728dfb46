package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	mw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.ProductService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	var callerID *uuid.UUID
	if id, ok := mw.UserID(c); ok {
		callerID = &id
	}
	spec, err := productSpec(c, callerID)
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	res, err := h.Svc.Query(ctx, spec)
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	l.Debug("get_products_success", "total", res.TotalCount, "page", res.Page)
	return c.JSON(http.StatusOK, transport.PagedProducts(res))
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, transport.Product(*p))
}

func (h *CatalogHTTP) productInput(c echo.Context) (service.ProductInput, error) {
	var form transport.ProductForm
	if err := bind(c, &form); err != nil {
		return service.ProductInput{}, err
	}
	return form.ProductInput()
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	in, err := h.productInput(c)
	if err != nil {
		return fail(l, "create_product_error", err)
	}
	upload, closeUpload, err := formImage(c)
	if err != nil {
		return fail(l, "create_product_error", err)
	}
	defer closeUpload()

	p, err := h.Svc.CreateProduct(ctx, in, upload)
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, transport.Product(*p))
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "update_product_error", err)
	}
	in, err := h.productInput(c)
	if err != nil {
		return fail(l, "update_product_error", err)
	}
	upload, closeUpload, err := formImage(c)
	if err != nil {
		return fail(l, "update_product_error", err)
	}
	defer closeUpload()

	p, err := h.Svc.UpdateProduct(ctx, id, in, upload)
	if err != nil {
		return fail(l, "update_product_error", err)
	}

	l.Info("update_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, transport.Product(*p))
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "delete_product_error", err)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, models.CategoryValues())
}

func (h *CatalogHTTP) Sizes(c echo.Context) error {
	return c.JSON(http.StatusOK, models.SizeValues())
}

func (h *CatalogHTTP) Colors(c echo.Context) error {
	return c.JSON(http.StatusOK, models.ColorValues())
}
