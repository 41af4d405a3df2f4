package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"tradehook/internal/cache"
	"tradehook/internal/config"
	"tradehook/internal/domain"
	"tradehook/internal/exchange"
	"tradehook/internal/handler"
	"tradehook/internal/notify"
	"tradehook/internal/registry"
	"tradehook/internal/service"
	"tradehook/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	loadRegistryFunc       = registry.Load
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newNotifierFunc        = func() service.Notifier { return notify.NewTelegramNotifier() }
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("REDIS_URL", cfg.RedisURL)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	reg, err := loadRegistryFunc(cfg.TenantsFile)
	if err != nil {
		log.Fatalf("failed to load tenants: %v", err)
	}
	log.Printf("loaded %d tenants from %s", reg.Len(), cfg.TenantsFile)

	// One HTTP client shared by every tenant-scoped exchange handle.
	httpClient := &http.Client{Timeout: 10 * time.Second}
	exchanges := func(t *domain.TenantConfig) service.Exchange {
		opts := []exchange.Option{exchange.WithHTTPClient(httpClient)}
		if cfg.BinanceBaseURL != "" {
			opts = append(opts, exchange.WithBaseURL(cfg.BinanceBaseURL))
		}
		return exchange.NewClient(t.BinanceAPIKey, t.BinanceSecretKey, opts...)
	}

	webhookService := service.NewWebhookService(tracer, reg, exchanges, newNotifierFunc())
	statusService := service.NewStatusService(tracer, reg, exchanges, cache.Client,
		time.Duration(cfg.SnapshotTTLSecs)*time.Second)

	h := handler.New(tracer, webhookService, statusService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("tradehook"))
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
