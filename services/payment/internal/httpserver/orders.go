package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	middleware "github.com/Skotchmaster/kicks_premium/pkg/middleware/auth"
	"github.com/Skotchmaster/kicks_premium/pkg/util"
)

func (h *PaymentHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	userID, err := middleware.UserID(c)
	if err != nil {
		l.Warn("list_orders_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	res, err := h.Svc.ListOrders(ctx, userID, offset, limit)
	if err != nil {
		return mapError(l, "list_orders_error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": res.Items,
		"meta": util.Meta(page, limit, res.Total, offset),
	})
}

func (h *PaymentHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	userID, err := middleware.UserID(c)
	if err != nil {
		l.Warn("get_order_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_order_error", "status", 404, "reason", "bad id", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	order, err := h.Svc.GetOrder(ctx, userID, id)
	if err != nil {
		return mapError(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}
