package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/services/cart/internal/models"
	"github.com/Skotchmaster/kicks_premium/services/cart/internal/service"
)

type CartHTTP struct{}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Brand     string `json:"brand"`
	Price     int64  `json:"price"`
	Image     string `json:"image"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHTTP) cart(c echo.Context) *service.Cart {
	return service.NewCart(NewCookieStorage(c))
}

func render(c echo.Context, code int, cart *service.Cart) error {
	return c.JSON(code, echo.Map{
		"items":  cart.Items(),
		"isOpen": cart.IsOpen(),
		"total":  cart.Total(),
		"count":  cart.ItemCount(),
	})
}

func saveError(l *slog.Logger, event string, err error) error {
	if errors.Is(err, service.ErrTooLarge) {
		l.Warn(event, "status", 413, "reason", "cart full", "error", err)
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "cart is full, remove an item before adding another")
	}
	l.Error(event, "status", 500, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "cannot save cart")
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	return render(c, http.StatusOK, h.cart(c))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		l.Warn("add_to_cart_error", "status", 400, "reason", "product_id required")
		return echo.NewHTTPError(http.StatusBadRequest, "product_id required")
	}

	cart := h.cart(c)
	item := models.CartItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		Brand:     req.Brand,
		Price:     req.Price,
		Image:     req.Image,
	}
	if err := cart.Add(item, req.Quantity, req.Size); err != nil {
		return saveError(l, "add_to_cart_error", err)
	}
	return render(c, http.StatusOK, cart)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id required")
	}

	cart := h.cart(c)
	if err := cart.UpdateQuantity(req.ProductID, req.Size, req.Quantity); err != nil {
		return saveError(l, "update_cart_error", err)
	}
	return render(c, http.StatusOK, cart)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	productID := c.QueryParam("product_id")
	if productID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id required")
	}

	cart := h.cart(c)
	if err := cart.Remove(productID, c.QueryParam("size")); err != nil {
		return saveError(l, "remove_from_cart_error", err)
	}
	return render(c, http.StatusOK, cart)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.clear")

	cart := h.cart(c)
	if err := cart.Clear(); err != nil {
		return saveError(l, "clear_cart_error", err)
	}
	return render(c, http.StatusOK, cart)
}

func (h *CartHTTP) Toggle(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.toggle")

	cart := h.cart(c)
	if err := cart.Toggle(); err != nil {
		return saveError(l, "toggle_cart_error", err)
	}
	return render(c, http.StatusOK, cart)
}
