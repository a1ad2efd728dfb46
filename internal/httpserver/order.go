package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	who, err := caller(c)
	if err != nil {
		return fail(l, "create_order_error", err)
	}
	var req transport.OrderRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "create_order_error", err)
	}

	order, err := h.Svc.CreateOrder(ctx, who.ID, req.OrderInput())
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, transport.Order(order))
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	who, err := caller(c)
	if err != nil {
		return fail(l, "get_orders_error", err)
	}
	orders, err := h.Svc.ListOrders(ctx, who)
	if err != nil {
		return fail(l, "get_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.Orders(orders))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	who, err := caller(c)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	order, err := h.Svc.GetOrder(ctx, id, who)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.Order(order))
}

func (h *OrderHTTP) GetOrdersByUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders_by_user")

	who, err := caller(c)
	if err != nil {
		return fail(l, "get_orders_by_user_error", err)
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		return fail(l, "get_orders_by_user_error", err)
	}
	orders, err := h.Svc.ListOrdersByUser(ctx, userID, who)
	if err != nil {
		return fail(l, "get_orders_by_user_error", err)
	}
	return c.JSON(http.StatusOK, transport.Orders(orders))
}
