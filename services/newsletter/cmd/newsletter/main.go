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

	newslettercfg "github.com/Skotchmaster/kicks_premium/services/newsletter/internal/config"
	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/httpserver"
	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/repo"
	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/service"
	"github.com/Skotchmaster/kicks_premium/services/newsletter/internal/worker"
)

func main() {
	if err := godotenv.Load("services/newsletter/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := newslettercfg.Load()

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

	mailer := mail.New(cfg.Mail, logger)
	svc := &service.NewsletterService{Repo: gormRepo, Mail: mailer, SiteURL: cfg.PublicSiteURL}

	workerCtx, stopWorker := context.WithCancel(logging.IntoContext(context.Background(), logger))
	workerDone := make(chan struct{})
	var consumer *events.Consumer
	if worker.Enabled(logger, cfg.KafkaBrokers) {
		consumer = events.NewConsumer(cfg.KafkaBrokers, events.TopicProducts, cfg.ConsumerGroup, logger)
		w := &worker.Worker{
			Consumer: consumer,
			Notifier: &service.Notifier{
				Repo:       gormRepo,
				Mail:       mailer,
				SiteURL:    cfg.PublicSiteURL,
				BatchSize:  cfg.BatchSize,
				BatchDelay: cfg.BatchDelay,
			},
		}
		go func() {
			defer close(workerDone)
			if err := w.Run(workerCtx); err != nil {
				logger.Error("newsletter_worker_stopped", "error", err)
			}
		}()
	} else {
		close(workerDone)
	}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		NewsletterHandler: &httpserver.NewsletterHTTP{Svc: svc},
		JWTSecret:         cfg.JWTAccessSecret,
		Refresher:         authclient.NewClient(cfg.AuthHTTPURL),
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("newsletter listening on %s", srv.Addr)
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

	stopWorker()
	<-workerDone
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Printf("kafka close: %v", err)
		}
	}
	pkgdb.Close(db)

	log.Println("newsletter stopped")
}
