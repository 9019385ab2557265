package config

import (
	pkgcfg "github.com/Skotchmaster/kicks_premium/pkg/config"
)

func Load() pkgcfg.Config {
	cfg := pkgcfg.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "cart"
	}
	return cfg
}
