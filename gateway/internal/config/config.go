package config

import (
	"strings"
	"time"

	pkgcfg "github.com/Skotchmaster/kicks_premium/pkg/config"
)

type Config struct {
	pkgcfg.Config

	CatalogURL    string
	CartURL       string
	PaymentURL    string
	NewsletterURL string

	AdminStaticDir string
	CookieSecure   bool

	RateLimit  int
	RateWindow time.Duration
}

func Load() Config {
	cfg := pkgcfg.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "gateway"
	}
	pkgcfg.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	pkgcfg.MustNonEmpty(cfg.AuthHTTPURL, "AUTH_URL")

	out := Config{
		Config:         cfg,
		CatalogURL:     upstream("CATALOG_URL"),
		CartURL:        upstream("CART_URL"),
		PaymentURL:     upstream("PAYMENT_URL"),
		NewsletterURL:  upstream("NEWSLETTER_URL"),
		AdminStaticDir: pkgcfg.EnvDefault("ADMIN_STATIC_DIR", ""),
		CookieSecure:   pkgcfg.EnvBoolDefault("COOKIE_SECURE", true),
		RateLimit:      pkgcfg.EnvIntDefault("RATE_LIMIT", 10),
		RateWindow:     pkgcfg.EnvDurationDefault("RATE_LIMIT_WINDOW", time.Minute),
	}
	return out
}

func upstream(env string) string {
	v := strings.TrimRight(pkgcfg.EnvDefault(env, ""), "/")
	pkgcfg.MustNonEmpty(v, env)
	return v
}
