package config

import (
	"time"

	pkgcfg "github.com/Skotchmaster/kicks_premium/pkg/config"
)

type Config struct {
	pkgcfg.Config

	ConsumerGroup string
	BatchSize     int
	BatchDelay    time.Duration
}

func Load() Config {
	cfg := pkgcfg.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "newsletter"
	}
	pkgcfg.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgcfg.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	pkgcfg.MustNonEmpty(cfg.AuthHTTPURL, "AUTH_URL")

	return Config{
		Config:        cfg,
		ConsumerGroup: pkgcfg.EnvDefault("NEWSLETTER_CONSUMER_GROUP", "newsletter"),
		BatchSize:     pkgcfg.EnvIntDefault("NEWSLETTER_BATCH_SIZE", 10),
		BatchDelay:    pkgcfg.EnvDurationDefault("NEWSLETTER_BATCH_DELAY", time.Second),
	}
}
