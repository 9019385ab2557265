package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	middleware "github.com/Skotchmaster/kicks_premium/pkg/middleware/auth"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/service"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/transport"
)

type PaymentHTTP struct {
	Svc *service.PaymentService
	// WebhookSecret is the Stripe endpoint secret. Empty disables
	// signature checks and is meant for local development only.
	WebhookSecret string
}

func (h *PaymentHTTP) CreateCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create_checkout_session")

	userID, err := middleware.UserID(c)
	if err != nil {
		l.Warn("create_checkout_session_error", "status", 401, "reason", "no user", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_checkout_session_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sess, err := h.Svc.CreateCheckoutSession(ctx, service.Customer{ID: userID, Email: middleware.Email(c)}, req.Items)
	if err != nil {
		return mapError(l, "create_checkout_session_error", err)
	}

	l.Info("create_checkout_session_success", "session_id", sess.ID)
	return c.JSON(http.StatusOK, transport.CheckoutResponse{SessionID: sess.ID, URL: sess.URL})
}

func (h *PaymentHTTP) SyncStripeOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.sync_stripe_orders")

	var req transport.SyncRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("sync_stripe_orders_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	report, err := h.Svc.SyncOrders(ctx, req.Limit)
	if err != nil {
		return mapError(l, "sync_stripe_orders_error", err)
	}

	return c.JSON(http.StatusOK, transport.SyncResponse{
		Success:        true,
		Message:        report.Message(),
		Synced:         report.Synced,
		Skipped:        report.Skipped,
		Errors:         report.Errors,
		TotalProcessed: report.TotalProcessed,
	})
}
