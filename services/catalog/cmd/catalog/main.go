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
	"github.com/Skotchmaster/kicks_premium/pkg/cache"
	pkgdb "github.com/Skotchmaster/kicks_premium/pkg/db"
	"github.com/Skotchmaster/kicks_premium/pkg/events"
	"github.com/Skotchmaster/kicks_premium/pkg/logging"
	loggingmw "github.com/Skotchmaster/kicks_premium/pkg/middleware/logging"

	catalogcfg "github.com/Skotchmaster/kicks_premium/services/catalog/internal/config"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/httpserver"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/repo"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/search"
	"github.com/Skotchmaster/kicks_premium/services/catalog/internal/service"
)

func main() {
	if err := godotenv.Load("services/catalog/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := catalogcfg.Load()

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

	svc := &service.CatalogService{
		Repo:   gormRepo,
		Events: events.NewPublisher(cfg.KafkaBrokers),
	}

	if cfg.Elastic.Enabled() {
		esCtx, esCancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := search.NewClient(logging.IntoContext(esCtx, logger), cfg.Elastic)
		esCancel()
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "error", err)
		} else {
			svc.Index = search.NewIndex(client, cfg.Elastic.Index)
		}
	}

	redisClient := cache.NewClient(cfg.Redis)
	if redisClient != nil {
		svc.Cache = cache.New(redisClient, "catalog:", cfg.CacheTTL)
	}

	handler := &httpserver.CatalogHTTP{Svc: svc}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: handler,
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
		log.Printf("catalog listening on %s", srv.Addr)
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
	if redisClient != nil {
		_ = redisClient.Close()
	}
	pkgdb.Close(db)

	log.Println("catalog stopped")
}
