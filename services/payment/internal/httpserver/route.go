package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/kicks_premium/pkg/middleware/auth"
)

type Deps struct {
	PaymentHandler *PaymentHTTP
	JWTSecret      []byte
	Refresher      middleware.Refresher
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.Refresher)

	e.POST("/api/webhooks/stripe", d.PaymentHandler.StripeWebhook)

	e.POST("/api/checkout/create-session", d.PaymentHandler.CreateCheckoutSession, authMW.RequireAuth)
	e.POST("/api/sync/stripe-orders", d.PaymentHandler.SyncStripeOrders, authMW.RequireAdmin)

	orders := e.Group("/api/orders", authMW.RequireAuth)
	orders.GET("", d.PaymentHandler.ListOrders)
	orders.GET("/:id", d.PaymentHandler.GetOrder)
}
