package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/kicks_premium/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/kicks_premium/pkg/middleware/logging"
)

func Common(logger *slog.Logger, siteURL string) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		loggingmw.RequestLogger(logger),
		ecM.Secure(),
	}
	if siteURL != "" {
		mws = append(mws, ecM.CORSWithConfig(ecM.CORSConfig{
			AllowOrigins:     []string{siteURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, csrf.DefaultConfig().HeaderName},
			ExposeHeaders:    []string{csrf.DefaultConfig().HeaderName},
			AllowCredentials: true,
		}))
	}
	return mws
}

// CSRF returns the double-submit config for the edge. Session entry points
// and the Stripe webhook are exempt. siteURL is the storefront origin CORS
// admits, so it passes the origin check too.
func CSRF(secure bool, siteURL string) csrf.Config {
	cfg := csrf.DefaultConfig()
	cfg.Secure = secure
	if siteURL != "" {
		cfg.AllowedOrigins = []string{siteURL}
	}
	cfg.SkipPaths = []string{
		"/health/live",
		"/health/ready",
		"/api/auth/login",
		"/api/auth/register",
		"/api/auth/refresh",
	}
	cfg.SkipPrefixes = []string{"/api/webhooks/"}
	return cfg
}
