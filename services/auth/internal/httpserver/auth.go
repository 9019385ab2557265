package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	jwthelp "github.com/Skotchmaster/kicks_premium/pkg/jwt"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	authmw "github.com/Skotchmaster/kicks_premium/pkg/middleware/auth"
	"github.com/Skotchmaster/kicks_premium/pkg/tokens"
	"github.com/Skotchmaster/kicks_premium/services/auth/internal/service"
	"github.com/Skotchmaster/kicks_premium/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		return mapError(l, "register_error", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user": transport.NewUserResponse(user),
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return mapError(l, "login_failed", err)
	}

	setSession(c, res.Tokens)
	l.Info("login_successful", "user_id", res.User.ID)

	return c.JSON(http.StatusOK, transport.LoginResponse{
		User:        transport.NewUserResponse(res.User),
		IsAdmin:     res.Tokens.IsAdmin,
		AccessToken: res.Tokens.AccessToken,
		ExpiresAt:   res.Tokens.AccessExp,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	cookie, err := c.Cookie(jwthelp.RefreshCookie)
	if err != nil || cookie.Value == "" {
		l.Warn("refresh_error", "status", 401, "reason", "no refresh cookie")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	pair, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			clearSession(c)
		}
		return mapError(l, "refresh_error", err)
	}

	setSession(c, pair)
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if cookie, err := c.Cookie(jwthelp.RefreshCookie); err == nil {
		if err := h.Svc.LogOut(ctx, cookie.Value); err != nil {
			clearSession(c)
			l.Error("logout_failed", "status", 500, "reason", "cannot revoke refreshToken", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
		}
	}

	clearSession(c)
	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out",
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_me")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.Svc.Me(ctx, userID)
	if err != nil {
		return mapError(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": transport.NewUserResponse(user),
	})
}

func setSession(c echo.Context, pair *tokens.Pair) {
	for _, ck := range jwthelp.SessionCookies(pair.AccessToken, pair.AccessExpTime(), pair.RefreshToken, pair.RefreshExpTime()) {
		c.SetCookie(ck)
	}
}

func clearSession(c echo.Context) {
	for _, ck := range jwthelp.ClearSessionCookies() {
		c.SetCookie(ck)
	}
}
