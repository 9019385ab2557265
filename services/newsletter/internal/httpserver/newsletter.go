package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/pkg/util"
	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/service"
	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/transport"
)

type NewsletterHTTP struct {
	Svc *service.NewsletterService
}

func (h *NewsletterHTTP) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "newsletter.subscribe")

	var req transport.EmailRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("subscribe_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sub, created, err := h.Svc.Subscribe(ctx, req.Email)
	if err != nil {
		return mapError(l, "subscribe_error", err)
	}
	if !created {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "already subscribed"})
	}

	l.Info("subscribe_success")
	return c.JSON(http.StatusCreated, echo.Map{
		"success":    true,
		"message":    "Thanks for subscribing!",
		"subscriber": sub,
	})
}

func (h *NewsletterHTTP) Unsubscribe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "newsletter.unsubscribe")

	var req transport.EmailRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("unsubscribe_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	removed, err := h.Svc.Unsubscribe(ctx, req.Email)
	if err != nil {
		return mapError(l, "unsubscribe_error", err)
	}

	msg := "unsubscribed"
	if !removed {
		msg = "not subscribed"
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": msg})
}

func (h *NewsletterHTTP) AdminList(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "newsletter.admin_list")

	var verified *bool
	if v := c.QueryParam("verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			l.Warn("admin_list_error", "status", 400, "reason", "bad verified", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "verified must be true or false")
		}
		verified = &b
	}
	limit := util.ParseIntDefault(c.QueryParam("limit"), service.DefaultListLimit)

	res, err := h.Svc.List(ctx, verified, limit)
	if err != nil {
		return mapError(l, "admin_list_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"subscribers": res.Subscribers,
		"stats":       res.Stats,
	})
}

func (h *NewsletterHTTP) AdminDelete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "newsletter.admin_delete")

	if err := h.Svc.Delete(ctx, c.QueryParam("email")); err != nil {
		return mapError(l, "admin_delete_error", err)
	}

	l.Info("admin_delete_success")
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
