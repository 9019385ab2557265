package config

import (
	"time"

	pkgcfg "github.com/Skotchmaster/kicks_premium/pkg/config"
)

type Config struct {
	pkgcfg.Config
	CacheTTL time.Duration
}

func Load() Config {
	cfg := pkgcfg.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "catalog"
	}
	pkgcfg.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgcfg.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	pkgcfg.MustNonEmpty(cfg.AuthHTTPURL, "AUTH_URL")

	return Config{
		Config:   cfg,
		CacheTTL: pkgcfg.EnvDurationDefault("CATALOG_CACHE_TTL", 5*time.Minute),
	}
}
