package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/kicks_premium/pkg/middleware/auth"
)

type Deps struct {
	NewsletterHandler *NewsletterHTTP
	JWTSecret         []byte
	Refresher         middleware.Refresher
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.Refresher)

	public := e.Group("/api/newsletter")
	public.POST("/subscribe", d.NewsletterHandler.Subscribe)
	public.POST("/unsubscribe", d.NewsletterHandler.Unsubscribe)

	admin := e.Group("/api/admin/newsletter", authMW.RequireAdmin)
	admin.GET("", d.NewsletterHandler.AdminList)
	admin.DELETE("", d.NewsletterHandler.AdminDelete)
}
