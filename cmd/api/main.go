package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/zentrya/ingest/internal/catalog"
	"github.com/zentrya/ingest/internal/config"
	"github.com/zentrya/ingest/internal/jobstatus"
	"github.com/zentrya/ingest/internal/logging"
	"github.com/zentrya/ingest/internal/metrics"
	"github.com/zentrya/ingest/internal/middleware"
	"github.com/zentrya/ingest/internal/queue"
	"github.com/zentrya/ingest/internal/storage"
	"github.com/zentrya/ingest/internal/tracing"

	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewDefaultLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName+"-api", cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatalf("failed to init tracer: %v", err)
		}
		defer closer.Close()
	}

	middleware.SetJWTSecret(cfg.Auth.JWTSecret)

	db, err := catalog.NewDB(cfg.Database)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	repo := catalog.NewRepository(db)

	store, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	jobs := jobstatus.NewRedisStore(redisClient, cfg.Pipeline.JobTTL)

	q, err := queue.New(cfg.Queue)
	if err != nil {
		logger.Fatalf("failed to connect to queue: %v", err)
	}
	defer q.Close()

	api := NewAPI(q, jobs, store, repo, logger)
	router := setupRouter(api, db, logger)

	metricsServer := metrics.NewServer(cfg.Metrics.Port, logger)
	go func() {
		if err := metricsServer.Start(); err != nil {
			logger.ErrorWithErr("metrics server stopped", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("forced shutdown: %v", err)
	}
	metricsServer.Shutdown(ctx)
	logger.Info("stopped")
}

func setupRouter(api *API, db *catalog.DB, logger *logging.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	limiter := middleware.NewRateLimiter(5, 10)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/ingest", middleware.JWTAuth(), middleware.RateLimit(limiter), api.createIngest)
		v1.GET("/jobs/:id", api.getJob)
		v1.GET("/renditions/:kind/:id", api.getRendition)
		v1.DELETE("/renditions/:kind/:id", middleware.JWTAuth(), api.deleteRendition)
	}

	return router
}
