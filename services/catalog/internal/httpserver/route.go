package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/kicks_premium/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	JWTSecret      []byte
	Refresher      middleware.Refresher
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.Refresher)

	products := e.Group("/api/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:slug", d.CatalogHandler.GetProductBySlug)

	admin := e.Group("/api/admin", authMW.RequireAdmin)
	admin.GET("/products", d.CatalogHandler.AdminListProducts)
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.GET("/products/:id", d.CatalogHandler.GetProduct)
	admin.PUT("/products/:id", d.CatalogHandler.UpdateProduct)
	admin.DELETE("/products/:id", d.CatalogHandler.DeleteProduct)
	admin.GET("/categories", d.CatalogHandler.ListCategories)
	admin.POST("/categories", d.CatalogHandler.CreateCategory)
}
