package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/kicks_premium/gateway/internal/middleware"
	authmw "github.com/Skotchmaster/kicks_premium/pkg/middleware/auth"
	"github.com/Skotchmaster/kicks_premium/pkg/middleware/csrf"
	"github.com/Skotchmaster/kicks_premium/pkg/ratelimit"
)

const (
	adminLoginPath  = "/admin/login"
	adminAssetsPath = "/admin/assets"
	publicHomePath  = "/"
)

type Deps struct {
	AuthURL       string
	CatalogURL    string
	CartURL       string
	PaymentURL    string
	NewsletterURL string

	Logger     *slog.Logger
	SiteURL    string
	CSRFConfig csrf.Config

	Limiter    ratelimit.Allower
	RateLimit  int
	RateWindow time.Duration

	JWTSecret      []byte
	Refresher      authmw.Refresher
	AdminStaticDir string

	// Transport is shared by all upstream proxies. Nil uses a pooled default.
	Transport http.RoundTripper
}

type route struct {
	name     string
	target   string
	prefixes []string
}

func Register(e *echo.Echo, d *Deps) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for _, m := range middleware.Common(logger, d.SiteURL) {
		e.Use(m)
	}
	e.Use(csrf.Middleware(d.CSRFConfig))

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	transport := d.Transport
	if transport == nil {
		transport = newTransport()
	}

	routes := []route{
		{name: "auth", target: d.AuthURL, prefixes: []string{"/api/auth"}},
		{name: "catalog", target: d.CatalogURL, prefixes: []string{"/api/products", "/api/admin/products", "/api/admin/categories"}},
		{name: "cart", target: d.CartURL, prefixes: []string{"/api/cart"}},
		{name: "payment", target: d.PaymentURL, prefixes: []string{"/api/checkout", "/api/webhooks", "/api/sync", "/api/orders"}},
		{name: "newsletter", target: d.NewsletterURL, prefixes: []string{"/api/newsletter", "/api/admin/newsletter"}},
	}

	proxies := make(map[string]echo.HandlerFunc, len(routes))
	for _, r := range routes {
		h, err := newProxy(r.name, r.target, transport)
		if err != nil {
			return err
		}
		proxies[r.name] = h
		for _, prefix := range r.prefixes {
			e.Any(prefix, h)
			e.Any(prefix+"/*", h)
		}
	}

	limit := d.RateLimit
	if limit <= 0 {
		limit = 10
	}
	window := d.RateWindow
	if window <= 0 {
		window = time.Minute
	}
	limited := ratelimit.Middleware(d.Limiter, limit, window)
	e.POST("/api/auth/login", proxies["auth"], limited)
	e.POST("/api/auth/register", proxies["auth"], limited)
	e.POST("/api/newsletter/subscribe", proxies["newsletter"], limited)

	if d.AdminStaticDir != "" {
		gate := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.Refresher).PageGate(adminLoginPath, publicHomePath)
		admin := e.Group("/admin", middleware.ExceptPaths(gate, adminLoginPath, adminAssetsPath))
		admin.Use(ecM.StaticWithConfig(ecM.StaticConfig{
			Root:  d.AdminStaticDir,
			HTML5: true,
		}))
	}

	return nil
}
