package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/ratelimit"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(ctx, gdb)
	}
	cancel()
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	appCtx, stopApp := context.WithCancel(logging.IntoContext(context.Background(), logger))
	defer stopApp()

	store := &repo.GormRepo{DB: gdb}

	images, uploads, err := newImageStore(appCtx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var events mykafka.Publisher = mykafka.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer := mykafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		events = producer
	}

	index, searcher := newSearch(appCtx, cfg, logger)
	notifier := newNotifier(appCtx, cfg, store, logger)

	issuer := tokens.NewIssuer(string(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
	orderSvc := &service.OrderService{
		Repo:           store,
		Notifier:       notifier,
		Events:         events,
		RecomputeTotal: cfg.OrderRecomputeTotal,
		Retry:          db.DefaultRetryConfig(),
		TxOptions:      &sql.TxOptions{Isolation: sql.LevelReadCommitted},
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(metrics.Middleware)
	e.Use(echomw.BodyLimit("6M"))

	if local, ok := images.(*storage.LocalStore); ok {
		e.Static(storage.URLPrefix, local.Dir())
	}

	deps := &httpserver.Deps{
		DB:             gdb,
		AuthHandler:    &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: store, Tokens: issuer, Events: events, AdminEmails: cfg.AdminEmails}},
		UserHandler:    &httpserver.UserHTTP{Svc: &service.UserService{Repo: store, Images: images, Events: events}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.ProductService{Repo: store, Images: images, Events: events, Index: index}},
		LikeHandler:    &httpserver.LikeHTTP{Svc: &service.LikeService{Repo: store}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: orderSvc},
		SearchHandler:  &httpserver.SearchHTTP{Search: searcher},
		UploadsHandler: uploads,
		Tokens:         issuer,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	if cfg.RedisAddr != "" {
		client, err := ratelimit.NewRedisClient(appCtx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("rate_limit_disabled", "error", err)
		} else {
			defer client.Close()
			limiter, err := ratelimit.NewFixedWindowLimiter(client, cfg.ServiceName+":ratelimit", cfg.AuthRateLimit, cfg.AuthRateWindow)
			if err != nil {
				logger.Warn("rate_limit_disabled", "error", err)
			} else {
				deps.AuthLimiter = limiter.Middleware("auth")
			}
		}
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}

	stopApp()
	orderSvc.Wait()
	closeDB(gdb)
	logger.Info("stopped")
}

func newImageStore(ctx context.Context, cfg config.Config) (storage.ImageStore, *httpserver.UploadsHTTP, error) {
	if cfg.StorageDriver == "minio" {
		m, err := storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, nil, err
		}
		return m, &httpserver.UploadsHTTP{Store: m}, nil
	}
	local, err := storage.NewLocalStore(cfg.StorageRoot)
	if err != nil {
		return nil, nil, err
	}
	return local, nil, nil
}

func newSearch(ctx context.Context, cfg config.Config, logger *slog.Logger) (service.ProductIndexer, httpserver.Searcher) {
	if cfg.ESURL == "" {
		return search.Disabled{}, search.Disabled{}
	}
	client, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword, search.DefaultIndex)
	if err != nil {
		logger.Warn("search_disabled", "error", err)
		return search.Disabled{}, search.Disabled{}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		logger.Warn("search_unreachable", "url", cfg.ESURL, "error", err)
	}
	return client, client
}

func newNotifier(ctx context.Context, cfg config.Config, store notify.ChatStore, logger *slog.Logger) notify.Notifier {
	if cfg.TelegramBotToken == "" {
		logger.Warn("telegram_disabled", "reason", "TELEGRAM_BOT_TOKEN is empty")
		return notify.Noop{}
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Error("telegram_disabled", "error", err)
		return notify.Noop{}
	}
	bot := notify.NewTelegramBot(api, store)
	go bot.StartListening(ctx)
	logger.Info("telegram_started", "bot", api.Self.UserName)
	return bot
}

func closeDB(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
