package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/kicks_premium/gateway/internal/config"
	"github.com/Skotchmaster/kicks_premium/gateway/internal/httpserver"
	"github.com/Skotchmaster/kicks_premium/gateway/internal/middleware"
	"github.com/Skotchmaster/kicks_premium/pkg/authclient"
	"github.com/Skotchmaster/kicks_premium/pkg/cache"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/pkg/ratelimit"
)

func main() {
	if err := godotenv.Load("gateway/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	deps := &httpserver.Deps{
		AuthURL:        cfg.AuthHTTPURL,
		CatalogURL:     cfg.CatalogURL,
		CartURL:        cfg.CartURL,
		PaymentURL:     cfg.PaymentURL,
		NewsletterURL:  cfg.NewsletterURL,
		Logger:         logger,
		SiteURL:        cfg.PublicSiteURL,
		CSRFConfig:     middleware.CSRF(cfg.CookieSecure, cfg.PublicSiteURL),
		RateLimit:      cfg.RateLimit,
		RateWindow:     cfg.RateWindow,
		JWTSecret:      cfg.JWTAccessSecret,
		Refresher:      authclient.NewClient(cfg.AuthHTTPURL),
		AdminStaticDir: cfg.AdminStaticDir,
	}

	redisClient := cache.NewClient(cfg.Redis)
	if redisClient != nil {
		deps.Limiter = ratelimit.NewLimiter(redisClient, "ratelimit:")
	} else {
		logger.Warn("rate_limit_disabled", "reason", "REDIS_ADDR not set")
	}

	e := echo.New()
	if err := httpserver.Register(e, deps); err != nil {
		log.Fatalf("routes: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("gateway listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Println("gateway stopped")
}
