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
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/kicks_premium/pkg/authclient"
	pkgdb "github.com/Skotchmaster/kicks_premium/pkg/db"
	"github.com/Skotchmaster/kicks_premium/pkg/events"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/pkg/mail"
	loggingmw "github.com/Skotchmaster/kicks_premium/pkg/middleware/logging"

	paymentcfg "github.com/Skotchmaster/kicks_premium/services/payment/internal/config"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/httpserver"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/repo"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/service"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/stripegw"
)

func main() {
	if err := godotenv.Load("services/payment/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := paymentcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: db}
	if err := gormRepo.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	if cfg.Stripe.WebhookSecret == "" {
		logger.Warn("stripe_webhook_unverified", "reason", "STRIPE_WEBHOOK_SECRET not set")
	}

	svc := &service.PaymentService{
		Repo:   gormRepo,
		Stripe: stripegw.New(cfg.Stripe.SecretKey),
		Mail:   mail.New(cfg.Mail, logger),
		Events: events.NewPublisher(cfg.KafkaBrokers),
		Settings: service.Settings{
			SiteURL:          cfg.PublicSiteURL,
			Currency:         cfg.Stripe.Currency,
			AllowedCountries: cfg.Stripe.AllowedCountries,
			AdminEmail:       cfg.Mail.AdminEmail,
		},
	}
	handler := &httpserver.PaymentHTTP{Svc: svc, WebhookSecret: cfg.Stripe.WebhookSecret}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		PaymentHandler: handler,
		JWTSecret:      cfg.JWTAccessSecret,
		Refresher:      authclient.NewClient(cfg.AuthHTTPURL),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("payment listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if err := svc.Events.Close(); err != nil {
		log.Printf("kafka close: %v", err)
	}
	pkgdb.Close(db)

	log.Println("payment stopped")
}
