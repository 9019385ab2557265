package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	jwthelp "github.com/Skotchmaster/kicks_premium/pkg/jwt"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxEmail  = "email"
)

var (
	errMissingCredentials = errors.New("missing credentials")
	errInvalidCredentials = errors.New("invalid credentials")
)

// Refresher exchanges a refresh token for a fresh pair.
type Refresher interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*tokens.Pair, error)
}

type AutoRefreshMiddleware struct {
	JWTSecret []byte
	Refresher Refresher
}

func NewAutoRefreshMiddleware(secret []byte, refresher Refresher) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret: secret,
		Refresher: refresher,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if !claims.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.authenticate(c)
		if err != nil {
			if errors.Is(err, errMissingCredentials) {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
		}

		if validator != nil {
			if validationErr := validator(claims); validationErr != nil {
				return validationErr
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}

// PageGate guards page routes. Failures redirect instead of returning JSON:
// anonymous and broken sessions go to loginPath with a return path, signed-in
// non-admins go to publicPath.
func (m *AutoRefreshMiddleware) PageGate(loginPath, publicPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "page_gate")

			claims, err := m.authenticate(c)
			if err != nil {
				l.Info("page_gate_redirect", "reason", err.Error())
				return c.Redirect(http.StatusFound, loginRedirect(loginPath, c.Request().URL.RequestURI()))
			}
			if !claims.IsAdmin() {
				l.Info("page_gate_redirect", "reason", "not admin", "user_id", claims.Subject)
				return c.Redirect(http.StatusFound, publicPath)
			}

			setUserContext(c, claims)
			return next(c)
		}
	}
}

func (m *AutoRefreshMiddleware) authenticate(c echo.Context) (*tokens.AccessClaims, error) {
	raw := bearerToken(c.Request())
	if raw == "" {
		if ck, err := c.Cookie(jwthelp.AccessCookie); err == nil {
			raw = ck.Value
		}
	}

	if raw == "" {
		// Browsers drop the access cookie once it expires, so a lone refresh
		// cookie still counts as a session.
		if refreshCookieValue(c) == "" {
			return nil, errMissingCredentials
		}
		return m.refresh(c)
	}

	claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
	if err == nil && claims.Subject != "" {
		return claims, nil
	}

	if err != nil && errors.Is(err, jwt.ErrTokenExpired) {
		return m.refresh(c)
	}

	clearAuthCookies(c)
	return nil, errInvalidCredentials
}

func (m *AutoRefreshMiddleware) refresh(c echo.Context) (*tokens.AccessClaims, error) {
	l := logging.FromContext(c.Request().Context()).With("middleware", "auto_refresh")

	refreshToken := refreshCookieValue(c)
	if refreshToken == "" || m.Refresher == nil {
		clearAuthCookies(c)
		return nil, errInvalidCredentials
	}

	pair, err := m.Refresher.RefreshTokens(c.Request().Context(), refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "error", err)
		clearAuthCookies(c)
		return nil, errInvalidCredentials
	}

	claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, m.JWTSecret)
	if err != nil || claims.Subject == "" {
		l.Warn("refresh_failed", "reason", "new access token invalid", "error", err)
		clearAuthCookies(c)
		return nil, errInvalidCredentials
	}

	for _, ck := range jwthelp.SessionCookies(pair.AccessToken, pair.AccessExpTime(), pair.RefreshToken, pair.RefreshExpTime()) {
		c.SetCookie(ck)
	}
	l.Info("session_refreshed", "user_id", claims.Subject)
	return claims, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func refreshCookieValue(c echo.Context) string {
	ck, err := c.Cookie(jwthelp.RefreshCookie)
	if err != nil {
		return ""
	}
	return ck.Value
}

func loginRedirect(loginPath, returnTo string) string {
	return loginPath + "?redirect=" + url.QueryEscape(returnTo)
}

func clearAuthCookies(c echo.Context) {
	for _, ck := range jwthelp.ClearSessionCookies() {
		c.SetCookie(ck)
	}
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxEmail, claims.Email)
}
