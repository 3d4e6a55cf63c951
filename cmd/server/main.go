package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	marketcfg "github.com/Skotchmaster/local_market/internal/config"
	"github.com/Skotchmaster/local_market/internal/events"
	"github.com/Skotchmaster/local_market/internal/httpserver"
	"github.com/Skotchmaster/local_market/internal/metrics"
	"github.com/Skotchmaster/local_market/internal/middleware/ratelimit"
	"github.com/Skotchmaster/local_market/internal/middleware/timeout"
	"github.com/Skotchmaster/local_market/internal/repo"
	"github.com/Skotchmaster/local_market/internal/search"
	"github.com/Skotchmaster/local_market/internal/service"
	"github.com/Skotchmaster/local_market/internal/telemetry"
	"github.com/Skotchmaster/local_market/pkg/config"
	pkgdb "github.com/Skotchmaster/local_market/pkg/db"
	"github.com/Skotchmaster/local_market/pkg/logging"
	loggingmw "github.com/Skotchmaster/local_market/pkg/middleware/logging"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	if err := config.ApplyFile(os.Getenv("CONFIG_FILE")); err != nil {
		log.Fatalf("config file: %v", err)
	}

	cfg, err := marketcfg.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Env).With("service", cfg.ServiceName)
	zap.ReplaceGlobals(logger.Desugar())
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := telemetry.Setup(cfg.ServiceName, version, cfg.OTelEnabled, os.Stdout)
	if err != nil {
		logger.Fatalw("telemetry_setup_error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Fatalw("db_open_error", "error", err)
	}
	if err := repo.Migrate(db); err != nil {
		logger.Fatalw("db_migrate_error", "error", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Infow("order_events_enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	var index search.Index = search.Nop{}
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Fatalw("es_client_error", "error", err)
		}
		elastic := search.NewElastic(es, cfg.ESIndex)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := elastic.EnsureIndex(ctx); err != nil {
			logger.Warnw("es_ensure_index_error", "reason", "search falls back to database", "error", err)
		}
		cancel()
		index = elastic
	}

	r := &repo.GormRepo{DB: db}
	authHandler := &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: r, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.JWTTTL}}
	shopHandler := &httpserver.ShopHTTP{Svc: &service.ShopService{Repo: r}}
	productHandler := &httpserver.ProductHTTP{Svc: &service.ProductService{Repo: r, Index: index}}
	orderHandler := &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: publisher}}

	limiter := ratelimit.New(cfg.AuthRateLimit, cfg.AuthRateBurst)
	stopLimiter := make(chan struct{})
	go limiter.Run(stopLimiter)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpserver.NewValidator()
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.IPExtractor = echo.ExtractIPDirect()
	if cfg.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware(cfg.ServiceName))
	e.Use(echomw.CORS())
	e.Use(timeout.Store(cfg.StoreTimeout))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    authHandler,
		ShopHandler:    shopHandler,
		ProductHandler: productHandler,
		OrderHandler:   orderHandler,
		JWTSecret:      cfg.JWTSecret,
		AuthLimiter:    limiter.Middleware(),
		Ready:          r.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           telemetry.Handler(e, cfg.ServiceName),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Infow("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("listen_error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	close(stopLimiter)

	if err := publisher.Close(); err != nil {
		logger.Warnw("events_close_error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warnw("telemetry_shutdown_error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Infow("server_stopped")
}
