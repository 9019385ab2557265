// Command ordersync backfills orders for paid Stripe checkout sessions that
// the webhook never recorded. It is meant to run from cron.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	pkgdb "github.com/Skotchmaster/kicks_premium/pkg/db"
	"github.com/Skotchmaster/kicks_premium/pkg/events"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	"github.com/Skotchmaster/kicks_premium/pkg/mail"

	paymentcfg "github.com/Skotchmaster/kicks_premium/services/payment/internal/config"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/repo"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/service"
	"github.com/Skotchmaster/kicks_premium/services/payment/internal/stripegw"
)

func main() {
	os.Exit(run())
}

func run() int {
	limit := flag.Int("limit", service.DefaultSyncLimit, "number of recent checkout sessions to inspect (1-100)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	if err := godotenv.Load("services/payment/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := paymentcfg.LoadWorker()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "job", "ordersync")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	ctx = logging.IntoContext(ctx, logger)

	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer pkgdb.Close(db)

	gormRepo := &repo.GormRepo{DB: db}
	if err := gormRepo.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers)
	defer publisher.Close()

	svc := &service.PaymentService{
		Repo:   gormRepo,
		Stripe: stripegw.New(cfg.Stripe.SecretKey),
		Mail:   mail.New(cfg.Mail, logger),
		Events: publisher,
		Settings: service.Settings{
			SiteURL:    cfg.PublicSiteURL,
			Currency:   cfg.Stripe.Currency,
			AdminEmail: cfg.Mail.AdminEmail,
		},
	}

	report, err := svc.SyncOrders(ctx, *limit)
	if err != nil {
		logger.Error("ordersync_failed", "error", err)
		return 1
	}

	fmt.Println(report.Message())
	for _, e := range report.Errors {
		fmt.Println("error:", e)
	}
	if len(report.Errors) > 0 {
		return 2
	}
	return 0
}
