package config

import pkgcfg "github.com/Skotchmaster/kicks_premium/pkg/config"

type Config struct {
	pkgcfg.Config
}

func Load() Config {
	cfg := LoadWorker()

	pkgcfg.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	pkgcfg.MustNonEmpty(cfg.AuthHTTPURL, "AUTH_URL")

	return cfg
}

// LoadWorker is the subset needed by the ordersync command, which has no
// HTTP surface.
func LoadWorker() Config {
	cfg := pkgcfg.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "payment"
	}

	pkgcfg.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgcfg.MustNonEmpty(cfg.Stripe.SecretKey, "STRIPE_SECRET_KEY")

	return Config{Config: cfg}
}
