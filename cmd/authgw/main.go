package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/petadopt/authgw/internal/auth"
	"github.com/petadopt/authgw/internal/config"
	"github.com/petadopt/authgw/internal/profile"
	"github.com/petadopt/authgw/internal/supabase"
	"github.com/petadopt/authgw/pkg/database"
	"github.com/petadopt/authgw/pkg/logger"
	"github.com/petadopt/authgw/pkg/middleware"
	"github.com/petadopt/authgw/pkg/observability"
)

const serviceName = "authgw"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
	}, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	db, err := database.NewConnection(cfg.DatabaseDSN)
	if err != nil {
		zlog.Fatal("failed to connect to profiles database", zap.Error(err))
	}
	defer db.Close()

	provider := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.RequestTimeout, zlog)
	profiles := profile.NewSQLStore(db)
	handler := auth.NewHTTPHandler(provider, profiles, cfg, zlog)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zlog))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))
	router.Use(observability.PrometheusMiddleware(observability.NewMetrics()))
	router.Use(otelgin.Middleware(serviceName))
	router.Use(cors.Default())

	router.GET("/metrics", gin.WrapH(observability.PrometheusHandler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		zlog.Info("HTTP server starting", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
