package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/pkg/util"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/transport"
)

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	featured, _ := strconv.ParseBool(c.QueryParam("featured"))

	res, err := h.Svc.ListProducts(ctx, offset, limit, c.QueryParam("category"), featured)
	if err != nil {
		return mapError(l, "get_products_error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": res.Items,
		"meta": util.Meta(page, limit, res.Total, offset),
	})
}

func (h *CatalogHTTP) GetProductBySlug(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_by_slug")

	product, err := h.Svc.ProductBySlug(ctx, c.Param("slug"))
	if err != nil {
		return mapError(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return mapError(l, "search_products_error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": res.Items,
		"meta": util.Meta(page, limit, res.Total, offset),
	})
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	items, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return mapError(l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": items})
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("category_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, err := h.Svc.CreateCategory(ctx, req.Name)
	if err != nil {
		return mapError(l, "category_create_error", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "category": cat})
}
